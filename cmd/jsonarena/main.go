// Command jsonarena is a thin driver over the arenajson package: it parses
// one or more files, optionally re-serializes them, and optionally emulates
// a chunked network feed instead of a single whole-file Feed call.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"charm.land/log/v2"
	"github.com/klauspost/cpuid/v2"
	"github.com/spf13/cobra"

	"github.com/arenajson/arenajson"
)

const (
	minChunk = 8
	maxChunk = 4096

	defaultNodeCap  = 1 << 20
	defaultStackCap = 1 << 12
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dump    bool
		network bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "jsonarena [flags] file...",
		Short: "Parse JSON files into a flat node arena and optionally re-emit them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(os.Stderr)
			if verbose {
				logger.SetLevel(log.DebugLevel)
				logger.Info("cpu features", "avx2", cpuid.CPU.Supports(cpuid.AVX2), "sse42", cpuid.CPU.Supports(cpuid.SSE42))
			}
			var failed bool
			for _, name := range args {
				if err := runOne(name, dump, network, verbose, logger); err != nil {
					logger.Error("parse failed", "file", name, "err", err)
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("one or more files failed to parse")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&dump, "dump", "d", false, "pretty-print the document after parsing")
	flags.BoolVarP(&network, "network", "n", false, "feed the file in random chunk sizes, emulating a network stream")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log per-file stats and detected CPU features")

	return cmd
}

func runOne(name string, dump, network, verbose bool, logger *log.Logger) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	p := arenajson.New(estimateNodeCap(len(data)), defaultStackCap)

	if network {
		if err := feedChunked(p, data); err != nil {
			return err
		}
	} else {
		if !p.Feed(data) {
			return parseError(p)
		}
	}
	if !p.Finish() {
		return parseError(p)
	}

	if verbose {
		logger.Info("parsed", "file", name, "nodes", p.Len(), "lines", p.Line())
	}

	if dump {
		sink := arenajson.NewByteSink(len(data))
		if err := p.Serialize(p.Root(), arenajson.Pretty, sink, data); err != nil {
			return fmt.Errorf("serialize %s: %w", name, err)
		}
		os.Stdout.Write(sink.Data())
		os.Stdout.Write([]byte("\n"))
	}
	return nil
}

func parseError(p *arenajson.Parser) error {
	return fmt.Errorf("%s at byte %d (line %d)", p.ErrorKind(), p.ErrorPos(), p.Line())
}

// feedChunked feeds data in pseudo-random chunk sizes between minChunk and
// maxChunk bytes, the way a caller reading off a socket would see it.
func feedChunked(p *arenajson.Parser, data []byte) error {
	pos := 0
	for pos < len(data) {
		n := minChunk + rand.Intn(maxChunk-minChunk+1)
		if pos+n > len(data) {
			n = len(data) - pos
		}
		if !p.Feed(data[pos : pos+n]) {
			return parseError(p)
		}
		pos += n
	}
	return nil
}

// estimateNodeCap guesses a generous arena size from input length, the same
// role the teacher's node-count pre-estimation heuristics play (spec.md §1
// marks that estimator itself as an external collaborator, not part of the
// core parser).
func estimateNodeCap(inputLen int) int {
	estimate := inputLen / 2
	if estimate < 64 {
		estimate = 64
	}
	if estimate > defaultNodeCap {
		return estimate
	}
	return defaultNodeCap
}
