// Package metrics wires bbolt bucket-level statistics into Prometheus,
// the way the teacher repo pairs go.etcd.io/bbolt with
// prysmaticlabs/prombbolt for its own KV stores.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prysmaticlabs/prombbolt"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

// boltCollector adapts prombbolt's Describe/Collect functions, which take
// a *bolt.DB directly rather than implementing prometheus.Collector
// themselves, into a registrable Collector.
type boltCollector struct {
	db *bolt.DB
}

// NewBoltCollector returns a prometheus.Collector reporting per-bucket
// key counts and page usage for db.
func NewBoltCollector(db *bolt.DB) prometheus.Collector {
	return &boltCollector{db: db}
}

func (c *boltCollector) Describe(ch chan<- *prometheus.Desc) {
	prombbolt.Describe(c.db, ch)
}

func (c *boltCollector) Collect(ch chan<- prometheus.Metric) {
	prombbolt.Collect(c.db, ch)
}

// Serve starts a /metrics HTTP endpoint on addr, registering collector
// alongside the default process/Go runtime collectors. It runs until ctx
// is canceled; the listener error (other than http.ErrServerClosed) is
// logged, not returned, since a metrics-endpoint failure should never
// take down sync itself.
func Serve(ctx context.Context, addr string, collector prometheus.Collector) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	if collector != nil {
		registry.MustRegister(collector)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.WithField("addr", addr).Info("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Warn("metrics server stopped")
	}
}
