// Package modelcfg holds the model catalog and the persisted selection of
// the model the analyzer should use.
package modelcfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Profile describes one selectable model.
type Profile struct {
	ID              string  `json:"id"`
	DisplayName     string  `json:"name"`
	TokensPerSecond float64 `json:"-"`
}

// DefaultCatalog lists the models the service knows how to drive.
func DefaultCatalog() []Profile {
	return []Profile{
		{ID: "gpt-4o-mini", DisplayName: "GPT-4o Mini", TokensPerSecond: 1000},
		{ID: "gpt-5-nano", DisplayName: "GPT-5 Nano", TokensPerSecond: 600},
	}
}

const selectionFile = "model_config.json"

var ErrUnknownModel = errors.New("modelcfg: model is not in the catalog")

// Provider resolves and persists the current model selection. It is loaded
// once per construction and safe for concurrent use; tests create their own
// instance over a temp directory.
type Provider struct {
	mu       sync.Mutex
	path     string
	fallback string
	catalog  map[string]Profile
	current  string
}

type selection struct {
	CurrentModel string `json:"current_model"`
}

// NewProvider creates a provider persisting its selection under dataDir.
// defaultModel is used when no valid selection is stored; if empty, the last
// catalog entry is the default.
func NewProvider(dataDir, defaultModel string, catalog []Profile) *Provider {
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	byID := make(map[string]Profile, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	if _, ok := byID[defaultModel]; !ok {
		defaultModel = catalog[len(catalog)-1].ID
	}
	p := &Provider{
		path:     filepath.Join(dataDir, selectionFile),
		fallback: defaultModel,
		catalog:  byID,
	}
	p.current = p.load()
	return p
}

func (p *Provider) load() string {
	b, err := os.ReadFile(p.path)
	if err != nil {
		return p.fallback
	}
	var sel selection
	if err := json.Unmarshal(b, &sel); err != nil {
		return p.fallback
	}
	if _, ok := p.catalog[sel.CurrentModel]; !ok {
		return p.fallback
	}
	return sel.CurrentModel
}

// Current returns the id of the model in use.
func (p *Provider) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// SetCurrent switches the model in use and persists the choice.
func (p *Provider) SetCurrent(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.catalog[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	b, err := json.MarshalIndent(selection{CurrentModel: id}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(p.path, b, 0o644); err != nil {
		return err
	}
	p.current = id
	return nil
}

// Profile returns the catalog entry for id.
func (p *Provider) Profile(id string) (Profile, bool) {
	prof, ok := p.catalog[id]
	return prof, ok
}

// Available lists the catalog in a stable order for the API.
func (p *Provider) Available() []Profile {
	out := make([]Profile, 0, len(p.catalog))
	for _, prof := range DefaultCatalog() {
		if got, ok := p.catalog[prof.ID]; ok {
			out = append(out, got)
		}
	}
	if len(out) == len(p.catalog) {
		return out
	}
	// Custom catalog: order is unspecified.
	out = out[:0]
	for _, prof := range p.catalog {
		out = append(out, prof)
	}
	return out
}

// EstimateSeconds predicts how long a completion of the given token count
// takes on the model id, using the catalog throughput. Zero when unknown.
func (p *Provider) EstimateSeconds(tokens int, id string) float64 {
	prof, ok := p.catalog[id]
	if !ok || prof.TokensPerSecond <= 0 || tokens <= 0 {
		return 0
	}
	return float64(tokens) / prof.TokensPerSecond
}
