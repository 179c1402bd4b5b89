/*
PURPOSE:
  Defines the token-counting capability interface and the backend
  registry. A backend converts a text string into a token count for a
  named tokenizer/model.

REQUIREMENTS:
  User-specified:
  - Selecting an unavailable backend must fail with a clear
    "tokenizer unavailable" error, never silently fall back. Reported
    numbers must never come from the wrong tokenizer.

  Implementation-discovered:
  - Backends are constructed lazily: initializing one can be expensive
    (BPE vocabulary load) and a run must not pay for backends it never
    selected. Selection still fails before any measurement.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli
  - Uses: internal/config

ERROR HANDLING:
  - ErrUnavailable wraps the backend name and the probe failure reason.
  - Unknown names list the known backends.

IMPLEMENTATION RULES:
  - One method does the work: Count(ctx, text) (int, error).
  - Backends are strategies selected by configuration at startup.

USAGE:
  reg := tokenizer.NewRegistry(cfg)
  counters, err := reg.Select([]string{"heuristic", "gpt4"})

SELF-HEALING INSTRUCTIONS:
  - New backends add a factory in NewRegistry; nothing else changes.

RELATED FILES:
  - internal/tokenizer/heuristic.go
  - internal/tokenizer/tiktoken.go
  - internal/tokenizer/anthropic.go

MAINTENANCE:
  - Update when adding new tokenizer backends.
*/

package tokenizer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aicac-project/tokenmeter/internal/config"
)

// Counter converts text into a token count for one backend.
type Counter interface {
	// Name identifies the backend ("heuristic", "gpt4", "claude").
	Name() string
	// Count returns the number of tokens text occupies in the
	// backend's vocabulary. Non-negative; >0 for non-empty text.
	Count(ctx context.Context, text string) (int, error)
}

// ErrUnavailable marks a backend that cannot be reached or initialized.
var ErrUnavailable = errors.New("tokenizer unavailable")

// Info describes one known backend and its probed availability.
type Info struct {
	Name      string
	Available bool
	// Reason explains unavailability; empty when Available.
	Reason string
}

type factory func() (Counter, error)

// Registry knows how to construct every backend by name.
type Registry struct {
	factories map[string]factory
}

// NewRegistry wires all known backends against the configuration.
// Nothing is constructed until a backend is selected or probed.
func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{
		factories: map[string]factory{
			// Heuristic estimator: no dependencies, always available.
			HeuristicName: func() (Counter, error) { return NewHeuristic(), nil },
			// GPT BPE via tiktoken: unavailable if the encoding cannot load.
			TiktokenName: func() (Counter, error) { return NewTiktoken() },
			// Anthropic count-tokens API: unavailable without credentials.
			AnthropicName: func() (Counter, error) { return NewAnthropic(cfg) },
		},
	}
}

// Select resolves backend names into constructed counters. Any unknown
// or unavailable name is a hard error; there is no fallback.
func (r *Registry) Select(names []string) ([]Counter, error) {
	counters := make([]Counter, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		f, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown tokenizer %q (known: %s)", name, strings.Join(r.knownNames(), ", "))
		}
		c, err := f()
		if err != nil {
			return nil, fmt.Errorf("%w: %s (%v)", ErrUnavailable, name, err)
		}
		counters = append(counters, c)
	}
	if len(counters) == 0 {
		return nil, fmt.Errorf("%w: no tokenizer backend selected", ErrUnavailable)
	}
	return counters, nil
}

// Known probes every backend and reports availability, sorted by name.
func (r *Registry) Known() []Info {
	infos := make([]Info, 0, len(r.factories))
	for name, f := range r.factories {
		info := Info{Name: name}
		if _, err := f(); err != nil {
			info.Reason = err.Error()
		} else {
			info.Available = true
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Available returns the names of usable backends, sorted.
func (r *Registry) Available() []string {
	var names []string
	for _, info := range r.Known() {
		if info.Available {
			names = append(names, info.Name)
		}
	}
	return names
}

func (r *Registry) knownNames() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
