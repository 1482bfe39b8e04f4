package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record describes one photo the disk accepted for upload
type Record struct {
	FileName string `json:"file_name"`
	SizeTag  string `json:"size_tag"`
}

// Manifest accumulates accepted uploads for a run and persists them as a
// JSON array.
type Manifest struct {
	path    string
	records []Record
	mu      sync.RWMutex
}

// NewManifest creates an empty manifest that will be saved to path
func NewManifest(path string) *Manifest {
	return &Manifest{
		path:    path,
		records: []Record{},
	}
}

// LoadManifest reads a manifest previously written by Save
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m := NewManifest(path)
	if err := json.Unmarshal(data, &m.records); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if m.records == nil {
		m.records = []Record{}
	}

	return m, nil
}

// Path returns the file the manifest is saved to
func (m *Manifest) Path() string {
	return m.path
}

// Append adds a record after all previously appended ones
func (m *Manifest) Append(r Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
}

// Records returns a copy of the records in append order
func (m *Manifest) Records() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Len returns the number of records
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Save writes the records as UTF-8 JSON indented with four spaces. An empty
// manifest is written as []. The file is replaced atomically.
func (m *Manifest) Save() error {
	data, err := m.encode()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}

	// Write to a temporary file first
	tempFile := m.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempFile, m.path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func (m *Manifest) encode() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m.records); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
