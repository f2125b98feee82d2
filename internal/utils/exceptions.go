package utils

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

type Exception interface {
	Error() string
	Message() string
}

// Skip describes one record the pipeline left out without aborting the run.
type Skip struct {
	Stage string
	Item  string
	Err   error
}

func (s Skip) Error() string {
	if s.Err == nil {
		return s.Message()
	}
	return fmt.Sprintf("%s: %s: %v", s.Stage, s.Item, s.Err)
}

func (s Skip) Message() string { return fmt.Sprintf("%s: skipped %s", s.Stage, s.Item) }

func (s Skip) Unwrap() error { return s.Err }

var _ Exception = Skip{}

// Diagnostics collects the non-fatal skips of a run in the order they happened.
type Diagnostics []Skip

// Add records a skip and logs it right away.
func (d *Diagnostics) Add(stage, item string, err error) {
	*d = append(*d, Skip{Stage: stage, Item: item, Err: err})
	log.Warn().Err(err).Str("Stage", stage).Str("Item", RightWrap(item, 100)).Msg("Item skipped")
}

// Stage returns the skips reported by one stage.
func (d Diagnostics) Stage(stage string) Diagnostics {
	var out Diagnostics
	for _, s := range d {
		if s.Stage == stage {
			out = append(out, s)
		}
	}
	return out
}
