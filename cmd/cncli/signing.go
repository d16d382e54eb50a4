package main

import (
	"crypto/rand"

	"github.com/minio/blake2b-simd"
	"github.com/urfave/cli/v2"

	"github.com/cardano-community/cncli-go/chain/cerr"
	"github.com/cardano-community/cncli-go/config"
	"github.com/cardano-community/cncli-go/vrf"
)

// buildChallenge reproduces the cip-0022 domain-ownership challenge:
// blake2b-256("cip-0022" || domain || nonce). challenge and sign/verify
// don't hand the hash itself between processes, only domain and nonce,
// so each side recomputes the same 32-byte challenge independently.
func buildChallenge(domain string, nonce []byte) [32]byte {
	h := blake2b.New256()
	h.Write([]byte("cip-0022"))
	h.Write([]byte(domain))
	h.Write(nonce)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func challengeCommand() *cli.Command {
	return &cli.Command{
		Name:  "challenge",
		Usage: "generate a domain-ownership challenge nonce",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "domain", Required: true, Usage: "validating domain, e.g. pooltool.io"},
		},
		Action: runChallenge,
	}
}

func runChallenge(c *cli.Context) error {
	nonce := make([]byte, 64)
	if _, err := rand.Read(nonce); err != nil {
		printError(cerr.Wrap(cerr.IoError, err, "generate challenge nonce"))
		return nil
	}
	challenge := buildChallenge(c.String("domain"), nonce)
	printJSON(struct {
		Status    string `json:"status"`
		Challenge string `json:"challenge"`
		Nonce     string `json:"nonce"`
	}{Status: "ok", Challenge: hexEncode(challenge[:]), Nonce: hexEncode(nonce)})
	return nil
}

func signCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "sign a domain-ownership challenge with a pool's VRF key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pool-vrf-skey", Required: true, Usage: "pool's vrf.skey file"},
			&cli.StringFlag{Name: "domain", Required: true, Usage: "validating domain, e.g. pooltool.io"},
			&cli.StringFlag{Name: "nonce", Required: true, Usage: "nonce value in hex, as returned by challenge"},
		},
		Action: runSign,
	}
}

func runSign(c *cli.Context) error {
	if err := requireExists(c.String("pool-vrf-skey"), "pool-vrf-skey"); err != nil {
		printError(err)
		return nil
	}
	nonce, err := decodeHexBytes(c.String("nonce"))
	if err != nil {
		printError(err)
		return nil
	}
	vrfKey, err := config.LoadVRFKey(c.String("pool-vrf-skey"))
	if err != nil {
		printError(err)
		return nil
	}
	if vrfKey.KeyType != "VrfSigningKey_PraosVRF" {
		printError(cerr.New(cerr.BadInput, "pool vrf skey must be of type VrfSigningKey_PraosVRF", nil))
		return nil
	}

	challenge := buildChallenge(c.String("domain"), nonce)
	proof, err := vrf.Prove(vrfKey.Key, challenge[:])
	if err != nil {
		printError(cerr.Wrap(cerr.VrfError, err, "sign challenge"))
		return nil
	}
	printJSON(struct {
		Status    string `json:"status"`
		Signature string `json:"signature"`
	}{Status: "ok", Signature: hexEncode(proof[:])})
	return nil
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "verify a domain-ownership challenge signature against a pool's VRF key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pool-vrf-vkey", Required: true, Usage: "pool's vrf.vkey file"},
			&cli.StringFlag{Name: "pool-vrf-vkey-hash", Required: true, Usage: "pool's vrf key hash in hex, from cardano-cli query pool-params"},
			&cli.StringFlag{Name: "domain", Required: true, Usage: "validating domain, e.g. pooltool.io"},
			&cli.StringFlag{Name: "nonce", Required: true, Usage: "nonce value in hex, as returned by challenge"},
			&cli.StringFlag{Name: "signature", Required: true, Usage: "signature to verify in hex"},
		},
		Action: runVerify,
	}
}

func runVerify(c *cli.Context) error {
	if err := requireExists(c.String("pool-vrf-vkey"), "pool-vrf-vkey"); err != nil {
		printError(err)
		return nil
	}
	nonce, err := decodeHexBytes(c.String("nonce"))
	if err != nil {
		printError(err)
		return nil
	}
	signature, err := decodeHexBytes(c.String("signature"))
	if err != nil {
		printError(err)
		return nil
	}

	vrfKey, err := config.LoadVRFKey(c.String("pool-vrf-vkey"))
	if err != nil {
		printError(err)
		return nil
	}
	if vrfKey.KeyType != "VrfVerificationKey_PraosVRF" {
		printError(cerr.New(cerr.BadInput, "pool vrf vkey must be of type VrfVerificationKey_PraosVRF", nil))
		return nil
	}

	vkeyHash := blake2b.Sum256(vrfKey.Key)
	if hexEncode(vkeyHash[:]) != c.String("pool-vrf-vkey-hash") {
		printError(cerr.New(cerr.BadInput, "pool-vrf-vkey-hash does not match pool-vrf-vkey", nil))
		return nil
	}

	challenge := buildChallenge(c.String("domain"), nonce)
	if _, err := vrf.Verify(vrfKey.Key, signature, challenge[:]); err != nil {
		printError(cerr.Wrap(cerr.VrfError, err, "verify challenge signature"))
		return nil
	}
	printOK()
	return nil
}
