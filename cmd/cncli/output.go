package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// printJSON writes v to stdout as pretty-printed JSON followed by a
// newline, the JSON-object-per-invocation convention every subcommand
// follows regardless of success or failure.
func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stdout, "{\n  \"status\": \"error\",\n  \"errorMessage\": %q\n}\n", err.Error())
		return
	}
	fmt.Fprintln(os.Stdout, string(out))
}

type errorResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}

// printError renders err as the standard failure envelope. Every
// subcommand's cli.ActionFunc calls this and then returns nil: a
// failure here is reported in the JSON body, never through the
// process's exit code.
func printError(err error) {
	printJSON(errorResponse{Status: "error", ErrorMessage: err.Error()})
}

type okResponse struct {
	Status string `json:"status"`
}

func printOK() {
	printJSON(okResponse{Status: "ok"})
}
