package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/install-release/ir/internal/fileutil"
	"github.com/install-release/ir/internal/logging"
)

// Store is the in-memory state document bound to its file.
// It is not safe for concurrent mutation.
type Store struct {
	path    string
	records Document
	logger  logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for skipped entries.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		s.logger = logging.OrNop(l)
	}
}

// Open binds a Store to path and loads it. A missing or empty file gives an
// empty store. An unparseable file returns ErrCorruptState.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, records: Document{}, logger: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory records with the file contents.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.records = Document{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}

	doc, err := decode(data, s.logger)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptState, s.path, err)
	}
	s.records = doc
	return nil
}

// Save rewrites the whole state file.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Get returns the record stored under k.
func (s *Store) Get(k Key) (ToolRecord, bool) {
	rec, ok := s.records[k.String()]
	return rec, ok
}

// Has reports whether a record is stored under the raw key.
func (s *Store) Has(key string) bool {
	_, ok := s.records[key]
	return ok
}

// Set stores rec under k. The key is authoritative for URL and name.
func (s *Store) Set(k Key, rec ToolRecord) {
	rec.URL = k.URL
	rec.Name = k.Name
	if rec.InstallMethod == "" {
		rec.InstallMethod = MethodBinary
	}
	s.records[k.String()] = rec
}

// Delete removes k and reports whether it was present.
func (s *Store) Delete(k Key) bool {
	key := k.String()
	if _, ok := s.records[key]; !ok {
		return false
	}
	delete(s.records, key)
	return true
}

// All returns a copy of every record.
func (s *Store) All() Document {
	out := make(Document, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// Keys returns the stored keys in sorted order; it is the enumeration order
// used everywhere tools are processed one by one.
func (s *Store) Keys() []Key {
	raw := make([]string, 0, len(s.records))
	for k := range s.records {
		raw = append(raw, k)
	}
	sort.Strings(raw)

	keys := make([]Key, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, NewKey(s.records[k].URL, s.records[k].Name))
	}
	return keys
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// FindByName returns the keys of every record with the given tool name.
func (s *Store) FindByName(name string) []Key {
	var out []Key
	for _, k := range s.Keys() {
		if k.Name == name {
			out = append(out, k)
		}
	}
	return out
}

// Lookup resolves a tool name to exactly one key.
func (s *Store) Lookup(name string) (Key, ToolRecord, error) {
	keys := s.FindByName(name)
	switch len(keys) {
	case 0:
		return Key{}, ToolRecord{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	case 1:
		rec, _ := s.Get(keys[0])
		return keys[0], rec, nil
	default:
		return Key{}, ToolRecord{}, fmt.Errorf("%q matches %d tools, remove duplicates from %s", name, len(keys), s.path)
	}
}
