package catalog

import "strings"

// Entry is one institution in the reference catalog. Name is the canonical
// key; there is no other identifier.
type Entry struct {
	Name    string `json:"NAME" parquet:"name"`
	City    string `json:"CITY" parquet:"city,optional"`
	State   string `json:"STATE" parquet:"state,optional"`
	Alias   string `json:"ALIAS,omitempty" parquet:"alias,optional"`
	Website string `json:"WEBSITE,omitempty" parquet:"website,optional"`
}

func (e *Entry) normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.City = strings.TrimSpace(e.City)
	e.State = strings.TrimSpace(e.State)
	e.Alias = strings.TrimSpace(e.Alias)
	e.Website = strings.TrimSpace(e.Website)
}

// Catalog is the ordered, immutable reference dataset.
type Catalog struct {
	entries []Entry
	byName  map[string]int
	dropped int
}

// New builds a catalog from entries in their given order. Fields are trimmed
// and entries without a name are dropped. When names repeat, every entry is
// kept for matching but Lookup resolves to the first.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		entry.normalize()
		if entry.Name == "" {
			c.dropped++
			continue
		}
		if _, exists := c.byName[entry.Name]; !exists {
			c.byName[entry.Name] = len(c.entries)
		}
		c.entries = append(c.entries, entry)
	}
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Dropped reports how many input entries were discarded for having no name.
func (c *Catalog) Dropped() int {
	if c == nil {
		return 0
	}
	return c.dropped
}

// Duplicates reports how many entries share a name with an earlier entry.
func (c *Catalog) Duplicates() int {
	if c == nil {
		return 0
	}
	return len(c.entries) - len(c.byName)
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// At returns the entry at position i.
func (c *Catalog) At(i int) Entry {
	return c.entries[i]
}

// Lookup returns the first entry whose name equals name after trimming.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	idx, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// Contains reports whether name is a canonical name in the catalog.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}
