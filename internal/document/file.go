// Package document persists a record collection as a single YAML file.
//
// The file holds a top-level YAML sequence of mappings. A missing or empty
// file reads as an empty collection. Writes are atomic: the new content is
// written to a temporary file in the same directory and renamed over the
// existing file. Read and Write are serialized per File value.
package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/roach88/autoedit/internal/record"
)

// File is a YAML-file-backed collection store.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a store for the document at path. The file need not exist.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the document location.
func (f *File) Path() string {
	return f.path
}

// Read loads the full collection from disk.
func (f *File) Read(ctx context.Context) (record.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return record.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	c, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return c, nil
}

// Write atomically replaces the document with c.
func (f *File) Write(ctx context.Context, c record.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(c)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// Decode parses YAML document bytes into a collection.
// The document root must be a sequence; null and empty documents are empty collections.
func Decode(data []byte) (record.Collection, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return record.Collection{}, nil
	}

	top := root.Content[0]
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		return record.Collection{}, nil
	}
	if top.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: document root must be a list of records", top.Line)
	}

	c := make(record.Collection, 0, len(top.Content))
	for i, item := range top.Content {
		r := record.New()
		if err := item.Decode(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		c = append(c, r)
	}
	return c, nil
}

// Encode renders a collection as YAML with two-space indentation.
func Encode(c record.Collection) ([]byte, error) {
	if c == nil {
		c = record.Collection{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
