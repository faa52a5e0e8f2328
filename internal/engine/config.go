package engine

import (
	"fmt"
	"time"
)

// Mode selects which providers source changes and which receive writes in
// a cycle.
type Mode string

const (
	// ModeBidirectional makes every healthy provider both source and target.
	ModeBidirectional Mode = "bidirectional"
	// ModeAToBOnly sources only the first configured provider; the others
	// are write-only targets and the first provider is never written to.
	ModeAToBOnly Mode = "a-to-b-only"
	// ModeMirror treats the first configured provider as authoritative:
	// only its state is sourced and propagated, and it is never written to.
	ModeMirror Mode = "mirror"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBidirectional, ModeAToBOnly, ModeMirror:
		return Mode(s), nil
	case "":
		return ModeBidirectional, nil
	}
	return "", fmt.Errorf("unknown sync mode %q (want bidirectional, a-to-b-only, or mirror)", s)
}

// DefaultTombstoneTTLDays is how long tombstones suppress recreation.
const DefaultTombstoneTTLDays = 30

// Config is the explicit per-engine configuration. The CLI materializes
// it from viper; the engine itself reads no environment.
type Config struct {
	StateDir         string
	Mode             Mode
	TombstoneTTLDays int
	DryRun           bool

	// Now is the cycle clock, overridable in tests. Nil means time.Now.
	Now func() time.Time
}

func (c *Config) fill() {
	if c.Mode == "" {
		c.Mode = ModeBidirectional
	}
	if c.TombstoneTTLDays <= 0 {
		c.TombstoneTTLDays = DefaultTombstoneTTLDays
	}
	if c.Now == nil {
		c.Now = func() time.Time { return time.Now().UTC() }
	}
}
