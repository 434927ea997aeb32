// Package cache persists compose plans between invocations so a reviewed
// plan can be executed without a second model call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Metadata describes a cached plan.
type Metadata struct {
	ContextHash string    `json:"context_hash"`
	GeneratedAt time.Time `json:"generated_at"`
	Model       string    `json:"model"`
	NumCommits  int       `json:"num_commits"`
}

// Store reads and writes cached plans under a single directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) planPath() string     { return filepath.Join(s.dir, "compose_plan.json") }
func (s *Store) metadataPath() string { return filepath.Join(s.dir, "compose_metadata.json") }

// ContextHash derives the cache key from everything that influences a plan:
// the staged diff, the style profile, and the commit limit.
func ContextHash(diff, style string, maxCommits int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|style=%s|max_commits=%d", diff, style, maxCommits)))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether a cached plan exists for the given context hash.
func (s *Store) Valid(contextHash string) bool {
	md, err := s.LoadMetadata()
	if err != nil || md == nil {
		return false
	}
	if md.ContextHash != contextHash {
		return false
	}
	_, err = os.Stat(s.planPath())
	return err == nil
}

// Save stores the raw plan JSON and its metadata.
func (s *Store) Save(planJSON, contextHash, model string, numCommits int) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.planPath(), []byte(planJSON), 0o644); err != nil {
		return err
	}
	md := Metadata{
		ContextHash: contextHash,
		GeneratedAt: time.Now().UTC(),
		Model:       model,
		NumCommits:  numCommits,
	}
	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.metadataPath(), data, 0o644)
}

// LoadPlan returns the cached plan JSON, or empty string when none exists.
func (s *Store) LoadPlan() (string, error) {
	data, err := os.ReadFile(s.planPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// LoadMetadata returns the cached metadata, or nil when none exists.
func (s *Store) LoadMetadata() (*Metadata, error) {
	data, err := os.ReadFile(s.metadataPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("corrupt cache metadata: %w", err)
	}
	return &md, nil
}

// Invalidate removes any cached plan. Called after a plan is executed, since
// its hunks no longer exist in the staged diff.
func (s *Store) Invalidate() {
	os.Remove(s.planPath())
	os.Remove(s.metadataPath())
}
