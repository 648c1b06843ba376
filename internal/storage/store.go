// Package storage organises the artifacts of every run in a data
// directory: simstate and siminteg files plus a JSON metadata sidecar.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/orbitsim/internal/artifact"
	"github.com/san-kum/orbitsim/internal/siminteg"
	"github.com/san-kum/orbitsim/internal/simstate"
)

const metadataExt = ".json"

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator,omitempty"`
	Kernel     string             `json:"kernel,omitempty"`
	Epoch      string             `json:"epoch,omitempty"`
	Source     string             `json:"source,omitempty"`
	Bodies     []string           `json:"bodies"`
	Mu         []float64          `json:"mu"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Key returns the artifact key the metadata describes.
func (m *RunMetadata) Key() artifact.Key {
	return artifact.Key{Name: m.Name, Dt: m.Dt, Steps: m.Steps}
}

// ID returns the identifier of a run, its filename without extension.
func ID(key artifact.Key) string {
	return key.Filename("")
}

func (s *Store) SimstatePath(key artifact.Key) string {
	return key.Path(s.baseDir, simstate.Ext)
}

func (s *Store) SimintegPath(key artifact.Key) string {
	return key.Path(s.baseDir, siminteg.Ext)
}

func (s *Store) metadataPath(id string) string {
	return filepath.Join(s.baseDir, id+metadataExt)
}

// Exists reports whether the trajectory of key is present.
func (s *Store) Exists(key artifact.Key) bool {
	_, err := os.Stat(s.SimstatePath(key))
	return err == nil
}

// Cache returns the invariant cache of a run.
func (s *Store) Cache(key artifact.Key) (*siminteg.Cache, error) {
	return siminteg.NewCache(s.baseDir, key.Name, key.Dt, key.Steps)
}

// Save writes the metadata sidecar of a run, replacing any previous one.
func (s *Store) Save(meta *RunMetadata) error {
	if meta.ID == "" {
		meta.ID = ID(meta.Key())
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	metaFile, err := os.Create(s.metadataPath(meta.ID))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// Load reads the metadata sidecar of a run.
func (s *Store) Load(id string) (*RunMetadata, error) {
	data, err := os.ReadFile(s.metadataPath(id))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata %s: %w", id, err)
	}
	return &meta, nil
}

// UpdateMetrics merges values into the metrics of a run.
func (s *Store) UpdateMetrics(id string, values map[string]float64) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	if meta.Metrics == nil {
		meta.Metrics = make(map[string]float64, len(values))
	}
	for k, v := range values {
		meta.Metrics[k] = v
	}
	return s.Save(meta)
}

// List returns every trajectory in the store, with its metadata when a
// sidecar exists, sorted by ID.
func (s *Store) List() ([]RunMetadata, error) {
	keys, err := artifact.Glob(s.baseDir, simstate.Ext)
	if err != nil {
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(keys))
	for _, key := range keys {
		id := ID(key)
		meta, err := s.Load(id)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
			meta = &RunMetadata{ID: id, Name: key.Name, Dt: key.Dt, Steps: key.Steps}
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}
