// Package prefs persists UserPreferences as a JSON (comments allowed) file,
// validated against an embedded JSON schema on every read and write.
package prefs

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/muhammadmuzzammil1998/jsonc"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	appLog "lifeplan/internal/log"
	"lifeplan/internal/model"
	"lifeplan/internal/store"
)

//go:embed preferences.schema.json
var schemaJSON []byte

const schemaURL = "mem://schemas/preferences.schema.json"

// Store reads and writes the preferences file at a fixed path.
type Store struct {
	path   string
	schema *jsonschema.Schema
	mu     sync.Mutex
}

// New compiles the schema and returns a Store for path. The file itself is
// not touched until Get or Save.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("preferences path is empty")
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Store{path: path, schema: schema}, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("decode preferences schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("register preferences schema: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile preferences schema: %w", err)
	}
	return s, nil
}

// Validate checks a JSON document against the preferences schema.
func (s *Store) Validate(doc []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("parse preferences: %w", err)
	}
	if err := s.schema.Validate(inst); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	return nil
}

// readDocument returns the stored document as plain JSON, or nil when the
// file does not exist yet.
func (s *Store) readDocument() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return jsonc.ToJSON(data), nil
}

// decode overlays doc on the defaults: absent fields keep default values.
// Lists are never merged element-wise; a list present in doc replaces the
// default list whole.
func decode(doc []byte) (model.UserPreferences, error) {
	defaults := model.DefaultPreferences()
	if len(bytes.TrimSpace(doc)) == 0 {
		return defaults, nil
	}

	// json.Unmarshal decodes array elements into the existing backing array,
	// so start from nil lists and restore the defaults for absent ones.
	p := model.DefaultPreferences()
	p.EnergyPatterns.HighEnergy = nil
	p.EnergyPatterns.MediumEnergy = nil
	p.EnergyPatterns.LowEnergy = nil
	p.LifeAreas = nil
	p.SchedulingRules.ProtectedBlocks = nil
	if err := json.Unmarshal(doc, &p); err != nil {
		return model.UserPreferences{}, fmt.Errorf("decode preferences: %w", err)
	}

	if p.EnergyPatterns.HighEnergy == nil {
		p.EnergyPatterns.HighEnergy = defaults.EnergyPatterns.HighEnergy
	}
	if p.EnergyPatterns.MediumEnergy == nil {
		p.EnergyPatterns.MediumEnergy = defaults.EnergyPatterns.MediumEnergy
	}
	if p.EnergyPatterns.LowEnergy == nil {
		p.EnergyPatterns.LowEnergy = defaults.EnergyPatterns.LowEnergy
	}
	if p.LifeAreas == nil {
		p.LifeAreas = defaults.LifeAreas
	}
	if p.SchedulingRules.ProtectedBlocks == nil {
		p.SchedulingRules.ProtectedBlocks = defaults.SchedulingRules.ProtectedBlocks
	}
	return p, nil
}

// Get returns the stored preferences. A missing file is the normal first-run
// state and yields DefaultPreferences.
func (s *Store) Get(_ context.Context) (model.UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return model.UserPreferences{}, err
	}
	if doc == nil {
		return model.DefaultPreferences(), nil
	}
	if err := s.Validate(doc); err != nil {
		return model.UserPreferences{}, err
	}
	return decode(doc)
}

// Save deep-merges patch (a JSON or JSONC object) into the stored document
// and writes the result. Objects merge key by key; arrays are replaced.
func (s *Store) Save(_ context.Context, patch []byte) (model.UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readDocument()
	if err != nil {
		return model.UserPreferences{}, err
	}
	if current == nil {
		current, err = json.Marshal(model.DefaultPreferences())
		if err != nil {
			return model.UserPreferences{}, err
		}
	}

	cleanPatch := jsonc.ToJSON(patch)
	if _, isObj, err := objectMembers(cleanPatch); err != nil || !isObj {
		return model.UserPreferences{}, model.Invalidf("preferences patch must be a JSON object")
	}

	merged, err := Merge(current, cleanPatch)
	if err != nil {
		return model.UserPreferences{}, model.Invalidf("merge preferences: %w", err)
	}
	if err := s.Validate(merged); err != nil {
		return model.UserPreferences{}, model.Invalidf("%w", err)
	}
	p, err := decode(merged)
	if err != nil {
		return model.UserPreferences{}, err
	}

	// Persist the merged document itself so omitted fields stay omitted.
	var out bytes.Buffer
	if err := json.Indent(&out, merged, "", "  "); err != nil {
		return model.UserPreferences{}, err
	}
	if err := store.WriteFileAtomic(s.path, out.Bytes()); err != nil {
		return model.UserPreferences{}, fmt.Errorf("write preferences: %w", err)
	}
	appLog.Info("preferences saved", "path", s.path, "life_areas", len(p.LifeAreas))
	return p, nil
}

// Replace overwrites the stored preferences with p.
func (s *Store) Replace(_ context.Context, p model.UserPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := s.Validate(out); err != nil {
		return err
	}
	return store.WriteFileAtomic(s.path, out)
}

// AreaPriority maps each configured life area to its priority rank.
func (s *Store) AreaPriority(ctx context.Context) (map[string]int, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return PriorityMap(p), nil
}

// PriorityMap maps life area names to their priority. Areas without a
// priority are left out and sort as unlisted.
func PriorityMap(p model.UserPreferences) map[string]int {
	out := make(map[string]int, len(p.LifeAreas))
	for _, la := range p.LifeAreas {
		if la.Priority <= 0 {
			continue
		}
		out[la.Name] = la.Priority
	}
	return out
}
