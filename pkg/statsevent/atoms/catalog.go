package atoms

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog is a thread-safe set of schemas indexed by atom id and name.
// It is designed for read-heavy use: load once, look up per event.
type Catalog struct {
	mu     sync.RWMutex
	byID   map[int32]Schema
	byName map[string]int32
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byID:   make(map[int32]Schema),
		byName: make(map[string]int32),
	}
}

// catalogFile is the YAML document layout.
type catalogFile struct {
	Atoms []Schema `yaml:"atoms"`
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse atom catalog: %w", err)
	}
	c := NewCatalog()
	for _, s := range f.Atoms {
		if err := c.Register(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadFile reads and parses a YAML catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read atom catalog: %w", err)
	}
	return Parse(data)
}

// Register validates and adds a schema. Ids and names must be unique.
func (c *Catalog) Register(s Schema) error {
	if err := s.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[s.ID]; ok {
		return fmt.Errorf("%w: duplicate atom id %d", ErrInvalidSchema, s.ID)
	}
	if _, ok := c.byName[s.Name]; ok {
		return fmt.Errorf("%w: duplicate atom name %q", ErrInvalidSchema, s.Name)
	}
	c.byID[s.ID] = s
	c.byName[s.Name] = s.ID
	return nil
}

// Get returns the schema for an atom id.
func (c *Catalog) Get(id int32) (Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byID[id]
	return s, ok
}

// Lookup returns the schema for an atom name.
func (c *Catalog) Lookup(name string) (Schema, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byName[name]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownAtom, name)
	}
	return c.byID[id], nil
}

// Resolve finds a schema by name or, failing that, by decimal atom id.
func (c *Catalog) Resolve(ref string) (Schema, error) {
	if s, err := c.Lookup(ref); err == nil {
		return s, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 32); err == nil {
		if s, ok := c.Get(int32(id)); ok {
			return s, nil
		}
	}
	return Schema{}, fmt.Errorf("%w: %q", ErrUnknownAtom, ref)
}

// IDs returns all atom ids in ascending order.
func (c *Catalog) IDs() []int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]int32, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of schemas.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
