// Package trace loads and replays reference-trace scenarios: small YAML
// documents describing a sequence of inserts and deletes against a fresh
// replica, plus the text the replica is expected to converge to. It is a
// reusable, file-driven format for cmd/textcrdt-sim and for regression
// tests that want to pin down a tricky interleaving.
package trace

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cshekharsharma/textcrdt"
)

// InsertStep inserts Text at Index.
type InsertStep struct {
	Index int    `yaml:"index"`
	Text  string `yaml:"text"`
}

// DeleteStep deletes Count characters starting at Index (Count defaults
// to 1 when omitted, for the common single-character-delete case).
type DeleteStep struct {
	Index int `yaml:"index"`
	Count int `yaml:"count"`
}

// Op is exactly one of Insert or Delete; YAML unmarshaling fills in
// whichever key the document used.
type Op struct {
	Insert *InsertStep `yaml:"insert,omitempty"`
	Delete *DeleteStep `yaml:"delete,omitempty"`
}

// Scenario is a loaded trace document.
type Scenario struct {
	FinalText string `yaml:"final_text"`
	Ops       []Op   `yaml:"ops"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trace: reading %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("trace: parsing %s: %w", path, err)
	}
	return &s, nil
}

// Replay applies every op in the scenario to r in order, then checks
// r.String() against FinalText. It returns an error rather than calling
// t.Fatal/etc so callers outside of tests -- notably cmd/textcrdt-sim's
// replay subcommand -- can report the mismatch themselves.
func (s *Scenario) Replay(r *textcrdt.Replica) error {
	for i, op := range s.Ops {
		switch {
		case op.Insert != nil:
			if err := r.Insert(op.Insert.Index, op.Insert.Text); err != nil {
				return fmt.Errorf("trace: op %d (insert): %w", i, err)
			}
		case op.Delete != nil:
			count := op.Delete.Count
			if count == 0 {
				count = 1
			}
			if err := r.Delete(op.Delete.Index, count); err != nil {
				return fmt.Errorf("trace: op %d (delete): %w", i, err)
			}
		default:
			return fmt.Errorf("trace: op %d has neither insert nor delete", i)
		}
	}
	if got := r.String(); got != s.FinalText {
		return fmt.Errorf("trace: replay produced %q, want %q", got, s.FinalText)
	}
	return nil
}
