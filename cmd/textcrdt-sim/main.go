// Command textcrdt-sim is a small demo and exercise harness for the
// textcrdt module: it is not part of the core, which intentionally stays
// free of any UI, logging, or benchmark harness.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"reflect"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/cshekharsharma/textcrdt"
	"github.com/cshekharsharma/textcrdt/internal/trace"
)

func main() {
	app := &cli.App{
		Name:  "textcrdt-sim",
		Usage: "drive the textcrdt reference runtime from the command line",
		Commands: []*cli.Command{
			simCommand(),
			replayCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("textcrdt-sim: %v", err)
	}
}

func simCommand() *cli.Command {
	return &cli.Command{
		Name:  "sim",
		Usage: "spin up N replicas, have each insert concurrently, and report convergence",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "replicas", Value: 3, Usage: "number of replicas"},
			&cli.IntFlag{Name: "chars", Value: 5, Usage: "characters each replica inserts at its local end"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "random seed for per-replica alphabets"},
			&cli.BoolFlag{Name: "wire", Usage: "exercise message.go's MarshalOp/UnmarshalOp byte round-trip before simulating"},
		},
		Action: func(c *cli.Context) error {
			n := c.Int("replicas")
			chars := c.Int("chars")
			if n < 1 {
				return fmt.Errorf("--replicas must be at least 1")
			}
			if c.Bool("wire") {
				if err := demonstrateWireRoundTrip(); err != nil {
					return err
				}
			}
			rng := rand.New(rand.NewSource(c.Int64("seed")))

			net := textcrdt.NewNetwork()
			replicas := make([]*textcrdt.Replica, n)
			for i := 0; i < n; i++ {
				name := fmt.Sprintf("site-%d", i)
				r := textcrdt.NewReplica(net.Attach(name))
				r.OnInsert(func(e textcrdt.InsertEvent) {
					log.Printf("[%s] insert at %d (origin %s)", name, e.StartIndex, e.Meta.Origin)
				})
				replicas[i] = r
			}

			for i, r := range replicas {
				letter := rune('a' + rng.Intn(26))
				text := strings.Repeat(string(letter), chars)
				insertAt := r.Length()
				if err := r.Insert(insertAt, text); err != nil {
					return fmt.Errorf("replica %d insert: %w", i, err)
				}
			}

			first := replicas[0].String()
			converged := true
			for i, r := range replicas {
				s := r.String()
				log.Printf("[site-%d] %q (len=%d)", i, s, r.Length())
				if s != first {
					converged = false
				}
			}
			if !converged {
				return fmt.Errorf("replicas failed to converge")
			}
			fmt.Printf("converged: %q\n", first)
			return nil
		},
	}
}

// demonstrateWireRoundTrip marshals and unmarshals a handful of sample ops
// through message.go's wire codec directly, independent of the automatic
// encode/decode every Insert/Delete call already goes through via the
// Network, and fails loudly on any byte-level or structural mismatch. It
// exists so --wire gives operators an explicit, isolated check of the wire
// format itself rather than relying on the simulation converging to prove
// the codec is byte-faithful.
func demonstrateWireRoundTrip() error {
	sample := []textcrdt.Op{
		&textcrdt.InsertOp{ID: "wire-demo-1", ParentID: "", IsLeftChild: true, Value: 'a'},
		&textcrdt.InsertOp{ID: "wire-demo-2", ParentID: "wire-demo-1", IsLeftChild: false, Value: 'é'},
		&textcrdt.DeleteOp{ID: "wire-demo-1"},
	}
	for _, op := range sample {
		data, err := textcrdt.MarshalOp(op)
		if err != nil {
			return fmt.Errorf("wire demo: marshal %T: %w", op, err)
		}
		decoded, err := textcrdt.UnmarshalOp(data)
		if err != nil {
			return fmt.Errorf("wire demo: unmarshal %T: %w", op, err)
		}
		if !reflect.DeepEqual(op, decoded) {
			return fmt.Errorf("wire demo: round-trip mismatch: sent %+v, got %+v", op, decoded)
		}
		log.Printf("[wire] %T round-tripped cleanly (%d bytes)", op, len(data))
	}
	return nil
}

func replayCommand() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "replay a YAML trace scenario against a fresh replica",
		ArgsUsage: "<scenario.yaml>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("replay requires exactly one scenario path")
			}
			path := c.Args().First()
			scenario, err := trace.Load(path)
			if err != nil {
				return err
			}
			net := textcrdt.NewNetwork()
			r := textcrdt.NewReplica(net.Attach("replay"))
			if err := scenario.Replay(r); err != nil {
				return err
			}
			fmt.Printf("ok: %q\n", r.String())
			return nil
		},
	}
}
