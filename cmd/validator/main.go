// Copyright 2025 StakeShield
//
// Command validator is the thin stdin-to-stdout wrapper around the core
// request envelope (spec §6's CLI surface): read one JSON request from
// standard input, invoke the core validator, write one newline-terminated
// JSON response to standard output. All of the actual decision-making
// lives in pkg/envelope and the packages it calls; this file owns only
// process I/O and exit codes.

package main

import (
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/stakeshield/txvalidator/pkg/config"
	"github.com/stakeshield/txvalidator/pkg/envelope"
	"github.com/stakeshield/txvalidator/pkg/registry"
)

func main() {
	logger := log.New(os.Stderr, "[validator] ", log.LstdFlags)
	os.Exit(run(os.Stdin, os.Stdout, logger))
}

// run performs the full CLI flow and returns the process exit code: 0 on
// any well-formed response (including a Blocked validation outcome or an
// envelope error response), 1 only when the process cannot even emit a
// valid response.
func run(in io.Reader, out io.Writer, logger *log.Logger) int {
	settings := config.Load()
	reg, err := registry.Build(settings.VaultRegistryPath)
	if err != nil {
		logger.Printf("failed to build validator registry: %v", err)
		writeCatastrophicFailure(out, "validator registry failed to initialize")
		return 1
	}

	// Cap the read at MaxRequestBytes+1 while streaming, the same way the
	// envelope's own size check rejects oversized input — this just
	// bounds memory use on the way in rather than buffering an unbounded
	// stream before the envelope gets a chance to reject it.
	raw, err := io.ReadAll(io.LimitReader(in, int64(config.MaxRequestBytes)+1))
	if err != nil {
		logger.Printf("failed to read request from stdin: %v", err)
		writeCatastrophicFailure(out, "failed to read request")
		return 1
	}

	resp := envelope.Handle(raw, reg)
	if err := writeResponse(out, resp); err != nil {
		logger.Printf("failed to write response: %v", err)
		return 1
	}
	return 0
}

func writeResponse(out io.Writer, resp *envelope.Response) error {
	enc := json.NewEncoder(out)
	return enc.Encode(resp)
}

// writeCatastrophicFailure emits a best-effort INTERNAL_ERROR response
// when something fails before the envelope pipeline can even run (e.g.
// the registry failed to build). The request hash is empty since there
// is no reliable input to hash at that point.
func writeCatastrophicFailure(out io.Writer, message string) {
	resp := envelope.InternalErrorResponse(message)
	_ = writeResponse(out, resp)
}
