package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/termtree/pkg/core/term"
	"github.com/matzehuels/termtree/pkg/errors"
)

// DecodeSnapshot reads a snapshot document. format is "json" or "yaml".
func DecodeSnapshot(r io.Reader, format string) (Snapshot, error) {
	var s Snapshot
	if err := decode(r, format, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// DecodeTerms reads a bare list of terms. format is "json" or "yaml".
func DecodeTerms(r io.Reader, format string) ([]term.Term, error) {
	var ts []term.Term
	if err := decode(r, format, &ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func decode(r io.Reader, format string, v any) error {
	var err error
	switch format {
	case "json":
		err = json.NewDecoder(r).Decode(v)
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(v)
		if err == io.EOF {
			err = nil
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot format %q", format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", format)
	}
	return nil
}

func snapshotFormat(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// LoadSnapshot reads a snapshot file; the format follows the extension.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := readFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	return DecodeSnapshot(bytes.NewReader(data), snapshotFormat(path))
}

// LoadTerms reads a term list file; the format follows the extension.
func LoadTerms(path string) ([]term.Term, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeTerms(bytes.NewReader(data), snapshotFormat(path))
}

// FileSource reads dependency and derived terms from files. Snapshot names a
// full snapshot document; Dependencies and Derived name bare term lists that
// are appended to it. Empty paths are skipped. Labels are ignored.
type FileSource struct {
	Snapshot     string
	Dependencies string
	Derived      string
}

// Name returns "file".
func (FileSource) Name() string { return "file" }

// Key covers each path together with the size and modification time of the
// file, so an edited file gets a fresh key.
func (s FileSource) Key() string {
	var parts []string
	for _, path := range []string{s.Snapshot, s.Dependencies, s.Derived} {
		part := path
		if fi, err := os.Stat(path); path != "" && err == nil {
			part = fmt.Sprintf("%s@%d:%d", path, fi.ModTime().UnixNano(), fi.Size())
		}
		parts = append(parts, part)
	}
	return identity("file", parts...)
}

// Fetch reads the snapshot file, then appends the dependency and derived
// term lists. A missing or undecodable file fails the whole fetch.
func (s FileSource) Fetch(ctx context.Context, _ []string) (Snapshot, error) {
	var out Snapshot
	if s.Snapshot != "" {
		snap, err := LoadSnapshot(s.Snapshot)
		if err != nil {
			return Snapshot{}, err
		}
		out = snap
	}
	if s.Dependencies != "" {
		ts, err := LoadTerms(s.Dependencies)
		if err != nil {
			return Snapshot{}, err
		}
		out = out.Merge(Snapshot{Dependencies: ts})
	}
	if s.Derived != "" {
		ts, err := LoadTerms(s.Derived)
		if err != nil {
			return Snapshot{}, err
		}
		out = out.Merge(Snapshot{Derived: ts})
	}
	return out, ctx.Err()
}
