// Package modelcatalog is C8: a read-mostly, process-wide registry of
// upstream models and their capabilities, loaded once at startup and
// refreshable on demand. Grounded in structure on pkg/registry.Registry's
// RWMutex-guarded singleton map, generalized from "provider -> LanguageModel"
// lookups to "model ID -> capabilities/supported_endpoints".
package modelcatalog

import (
	"context"
	"fmt"
	"sync"
)

// Model is one catalog entry, matching spec §6's external model-catalog
// interface shape.
type Model struct {
	ID                 string       `json:"id"`
	Capabilities       Capabilities `json:"capabilities"`
	SupportedEndpoints []string     `json:"supported_endpoints"`
}

// Capabilities carries per-model limits the routing/translation layer may
// need.
type Capabilities struct {
	Limits Limits `json:"limits"`
}

// Limits carries a model's output-token ceiling.
type Limits struct {
	MaxOutputTokens int `json:"max_output_tokens"`
}

// SupportsEndpoint reports whether the model exposes the given endpoint path
// (e.g. "/responses").
func (m Model) SupportsEndpoint(endpoint string) bool {
	for _, e := range m.SupportedEndpoints {
		if e == endpoint {
			return true
		}
	}
	return false
}

// Fetcher loads the current model list from the upstream, e.g. its /models
// endpoint via C7.
type Fetcher interface {
	FetchModels(ctx context.Context) ([]Model, error)
}

// Catalog is the process-wide model registry.
type Catalog struct {
	mu      sync.RWMutex
	byID    map[string]Model
	fetcher Fetcher
}

// New constructs an empty catalog backed by fetcher. Call Refresh before
// serving traffic.
func New(fetcher Fetcher) *Catalog {
	return &Catalog{byID: make(map[string]Model), fetcher: fetcher}
}

// Refresh re-fetches the model list and atomically replaces the catalog
// contents. Intended for startup and periodic background calls, never the
// request hot path.
func (c *Catalog) Refresh(ctx context.Context) error {
	models, err := c.fetcher.FetchModels(ctx)
	if err != nil {
		return fmt.Errorf("modelcatalog: refresh: %w", err)
	}

	byID := make(map[string]Model, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}

	c.mu.Lock()
	c.byID = byID
	c.mu.Unlock()
	return nil
}

// Lookup returns the model entry for id, if known.
func (c *Catalog) Lookup(id string) (Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byID[id]
	return m, ok
}

// SupportsResponses implements the routing.Catalog interface C5 consumes.
func (c *Catalog) SupportsResponses(id string) bool {
	m, ok := c.Lookup(id)
	if !ok {
		return false
	}
	return m.SupportsEndpoint("/responses")
}

// List returns a snapshot of every known model, sorted by ID for stable
// `models` CLI output.
func (c *Catalog) List() []Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Model, 0, len(c.byID))
	for _, m := range c.byID {
		out = append(out, m)
	}
	sortModelsByID(out)
	return out
}

func sortModelsByID(models []Model) {
	for i := 1; i < len(models); i++ {
		for j := i; j > 0 && models[j].ID < models[j-1].ID; j-- {
			models[j], models[j-1] = models[j-1], models[j]
		}
	}
}
