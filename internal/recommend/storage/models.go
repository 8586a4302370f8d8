// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package storage persists trained recommendation models on local disk.
//
// A model is written as three independent blobs inside one directory:
//
//	user-factors.bin  user factor matrix
//	item-factors.bin  item factor matrix
//	mappings.bin      user and item id->index tables plus model identity
//
// Each blob is a gob-encoded value wrapped in gzip. Blobs carry no version
// or checksum; whether a loaded model is still usable is decided by the
// coordinator's staleness check, not by the store.
//
// # Thread Safety
//
// Save and Load are serialized by a store-wide lock. Each blob is written to
// a temporary file and renamed into place, so a reader never observes a
// half-written blob.
package storage

import (
	"compress/gzip"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tomtom215/platewise/internal/recommend"
)

// ErrModelNotFound is returned by Load when a blob is missing.
var ErrModelNotFound = errors.New("model not found")

// factorBlob is the on-disk form of one factor matrix.
type factorBlob struct {
	K    int
	Rows [][]float64
}

// mappingBlob is the on-disk form of the index mapping.
type mappingBlob struct {
	ModelID   string
	TrainedAt time.Time
	UserIndex map[string]int
	ItemIndex map[int64]int
}

// ModelMetadata describes a persisted model without loading its factors.
type ModelMetadata struct {
	ModelID   string    `json:"model_id"`
	TrainedAt time.Time `json:"trained_at"`
	UserCount int       `json:"user_count"`
	ItemCount int       `json:"item_count"`
	SizeBytes int64     `json:"size_bytes"`
}

// Store manages model persistence.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a model store rooted at baseDir. The directory is created
// on the first Save, not here.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Dir returns the model directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// Exists reports whether the named blob is present.
func (s *Store) Exists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(s.path(name))
	return err == nil && info.Mode().IsRegular()
}

// Save writes all three blobs for model. The mapping is written last so that
// a crash mid-save leaves either the previous mapping (and a dimension check
// failure on Load) or a complete new model.
func (s *Store) Save(ctx context.Context, model *recommend.TrainedModel) error {
	if model == nil || model.Factors == nil || model.Mapping == nil {
		return errors.New("save model: incomplete model")
	}
	if err := checkWidth("user", model.Factors.User, model.Factors.K); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := checkWidth("item", model.Factors.Item, model.Factors.K); err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return fmt.Errorf("create model directory: %w", err)
	}

	blobs := []struct {
		name  string
		value any
	}{
		{recommend.UserFactorsBlob, factorBlob{K: model.Factors.K, Rows: model.Factors.User}},
		{recommend.ItemFactorsBlob, factorBlob{K: model.Factors.K, Rows: model.Factors.Item}},
		{recommend.MappingsBlob, mappingBlob{
			ModelID:   model.ID,
			TrainedAt: model.TrainedAt,
			UserIndex: model.Mapping.UserTable(),
			ItemIndex: model.Mapping.ItemTable(),
		}},
	}

	for _, b := range blobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writeBlob(b.name, b.value); err != nil {
			return fmt.Errorf("save %s: %w", b.name, err)
		}
	}
	return nil
}

// Load reads all three blobs and reassembles the model. It returns
// ErrModelNotFound if any blob is missing.
func (s *Store) Load(ctx context.Context) (*recommend.TrainedModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users, items factorBlob
	var mb mappingBlob

	for _, b := range []struct {
		name   string
		target any
	}{
		{recommend.UserFactorsBlob, &users},
		{recommend.ItemFactorsBlob, &items},
		{recommend.MappingsBlob, &mb},
	} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.readBlob(b.name, b.target); err != nil {
			return nil, fmt.Errorf("load %s: %w", b.name, err)
		}
	}

	mapping, err := recommend.MappingFromTables(mb.UserIndex, mb.ItemIndex)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", recommend.MappingsBlob, err)
	}

	if len(users.Rows) != mapping.NumUsers() || len(items.Rows) != mapping.NumItems() {
		return nil, fmt.Errorf("load model: factor shape %dx%d does not match mapping %dx%d",
			len(users.Rows), len(items.Rows), mapping.NumUsers(), mapping.NumItems())
	}
	if users.K != items.K {
		return nil, fmt.Errorf("load model: user K=%d, item K=%d", users.K, items.K)
	}
	if err := checkWidth("user", users.Rows, users.K); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if err := checkWidth("item", items.Rows, items.K); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	return &recommend.TrainedModel{
		ID:        mb.ModelID,
		TrainedAt: mb.TrainedAt,
		Factors: &recommend.FactorMatrices{
			User: users.Rows,
			Item: items.Rows,
			K:    users.K,
		},
		Mapping: mapping,
	}, nil
}

// checkWidth reports the first row of rows whose length is not k.
func checkWidth(side string, rows [][]float64, k int) error {
	if k <= 0 {
		return fmt.Errorf("%s factors: K=%d", side, k)
	}
	for i, row := range rows {
		if len(row) != k {
			return fmt.Errorf("%s factor row %d has width %d, want K=%d", side, i, len(row), k)
		}
	}
	return nil
}

// Inspect reads only the mapping blob and reports what is on disk.
func (s *Store) Inspect(ctx context.Context) (*ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var mb mappingBlob
	if err := s.readBlob(recommend.MappingsBlob, &mb); err != nil {
		return nil, fmt.Errorf("inspect model: %w", err)
	}

	meta := &ModelMetadata{
		ModelID:   mb.ModelID,
		TrainedAt: mb.TrainedAt,
		UserCount: len(mb.UserIndex),
		ItemCount: len(mb.ItemIndex),
	}
	for _, name := range []string{recommend.UserFactorsBlob, recommend.ItemFactorsBlob, recommend.MappingsBlob} {
		if info, err := os.Stat(s.path(name)); err == nil {
			meta.SizeBytes += info.Size()
		}
	}
	return meta, ctx.Err()
}

func (s *Store) path(name string) string {
	return filepath.Join(s.baseDir, filepath.Base(name))
}

// writeBlob encodes value into a temporary file and renames it over name.
func (s *Store) writeBlob(name string, value any) (err error) {
	tmp, err := os.CreateTemp(s.baseDir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()           //nolint:errcheck // already failing
			_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		}
	}()

	gzw := gzip.NewWriter(tmp)
	if err = gob.NewEncoder(gzw).Encode(value); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err = gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *Store) readBlob(name string, target any) error {
	f, err := os.Open(s.path(name)) //nolint:gosec // name is one of the fixed blob names
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrModelNotFound
		}
		return fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	if err := gob.NewDecoder(gzr).Decode(target); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// Ensure interface compliance.
var _ recommend.ModelStore = (*Store)(nil)
