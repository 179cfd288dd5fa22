package jsonstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tada/internal/model"
)

// JSON-backed storage. Single file, human-readable, portable.
// Every operation re-reads the whole file; nothing is cached between calls.

// DefaultFileName is the document name inside the data directory.
const DefaultFileName = "todos.json"

// ErrWrite wraps any failure to persist the collection.
var ErrWrite = errors.New("write todos")

//go:embed schema.json
var schemaSource string

var documentSchema = jsonschema.MustCompileString("https://github.com/Makepad-fr/tada/todos.schema.json", schemaSource)

// Store owns one JSON array of items on disk.
type Store struct {
	path   string
	atomic bool
	now    func() time.Time
	log    *log.Logger

	// mu serialises read-modify-write cycles.
	mu sync.Mutex
}

// Option tunes a Store.
type Option func(*Store)

// WithClock overrides the time source used for ids and createdAt.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithLogger sets the logger used for swallowed read and parse failures.
func WithLogger(l *log.Logger) Option { return func(s *Store) { s.log = l } }

// WithAtomicWrites selects temp-file-and-rename (true) or in-place writes.
func WithAtomicWrites(on bool) Option { return func(s *Store) { s.atomic = on } }

// New returns a Store for the document at path. The file need not exist.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		atomic: true,
		now:    time.Now,
		log:    log.New(io.Discard),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// List returns the persisted collection. A missing, unreadable or malformed
// file yields an empty collection; the failure is logged, not returned.
func (s *Store) List(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// ReplaceAll overwrites the collection with items, verbatim.
func (s *Store) ReplaceAll(ctx context.Context, items []model.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if items == nil {
		items = []model.Item{}
	}
	return s.save(items)
}

// Add appends a new item carrying text as given. Trimming is the caller's job.
// On ErrWrite the returned item is still the one that was built.
func (s *Store) Add(ctx context.Context, text string) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()
	now := s.now().UTC()
	it := model.Item{
		ID:        nextID(items, now),
		Text:      text,
		CreatedAt: now.Truncate(time.Millisecond),
	}
	items = append(items, it)
	return it, s.save(items)
}

// Update merges p over the item with the given id. found is false, and
// nothing is written, when no item has that id.
func (s *Store) Update(ctx context.Context, id string, p model.Patch) (it model.Item, found bool, err error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()
	for i := range items {
		if items[i].ID != id {
			continue
		}
		items[i] = p.Apply(items[i])
		return items[i], true, s.save(items)
	}
	return model.Item{}, false, nil
}

// Delete removes the item with the given id. A missing id is not an error;
// the collection is rewritten either way.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	return s.save(kept)
}

func (s *Store) load() []model.Item {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Error("loading todos", "path", s.path, "err", err)
		}
		return []model.Item{}
	}
	items, err := decode(b)
	if err != nil {
		s.log.Error("loading todos", "path", s.path, "err", err)
		return []model.Item{}
	}
	return items
}

func decode(b []byte) ([]model.Item, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := documentSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	var items []model.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func (s *Store) save(items []model.Item) error {
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: json marshal: %v", ErrWrite, err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: mkdir: %v", ErrWrite, err)
	}
	if !s.atomic {
		if err := os.WriteFile(s.path, b, 0o644); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
		return nil
	}

	tmp, err := os.CreateTemp(dir, ".todos-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// nextID derives an id from the creation time in milliseconds, bumped past
// any id already in use.
func nextID(items []model.Item, now time.Time) string {
	used := make(map[string]struct{}, len(items))
	for _, it := range items {
		used[it.ID] = struct{}{}
	}
	n := now.UnixMilli()
	for {
		id := strconv.FormatInt(n, 10)
		if _, taken := used[id]; !taken {
			return id
		}
		n++
	}
}
