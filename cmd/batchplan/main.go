// batchplan schedules a set of print jobs read from a YAML or JSON file.
//
//	batchplan [-batches] [file]
//
// With no file the request is read from standard input.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/devadigapratham/printbatch/scheduler"
	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{Name: "batchplan", Output: os.Stderr})
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if err == flag.ErrHelp {
			return
		}
		logger.Error("scheduling failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("batchplan", flag.ContinueOnError)
	showBatches := fs.Bool("batches", false, "print the batch breakdown instead of the flat order")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	req, err := decodeRequest(in)
	if err != nil {
		return err
	}
	jobs, constraints, err := req.Resolve()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	if *showBatches {
		batches, err := scheduler.Plan(jobs, constraints)
		if err != nil {
			return err
		}
		if batches == nil {
			batches = []scheduler.Batch{}
		}
		return enc.Encode(batches)
	}

	res, err := scheduler.Schedule(jobs, constraints)
	if err != nil {
		return err
	}
	return enc.Encode(res)
}

// decodeRequest accepts YAML, and therefore JSON as well
func decodeRequest(r io.Reader) (*scheduler.Request, error) {
	var req scheduler.Request
	if err := yaml.NewDecoder(r).Decode(&req); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty request")
		}
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &req, nil
}
