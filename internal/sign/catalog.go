package sign

import (
	"errors"
	"fmt"
	"strings"

	"github.com/satriahrh/isyarat/domain/entities"
)

// Entry binds a normalized catalog key to its gesture
type Entry struct {
	Key     string                     `json:"key"`
	Gesture entities.GestureDescriptor `json:"gesture"`
}

// MatchKind says which rule selected a gesture
type MatchKind string

const (
	MatchExact     MatchKind = "exact"
	MatchSubstring MatchKind = "substring"
	MatchUnknown   MatchKind = "unknown"
)

// Match is the result of looking up free text in the catalog
type Match struct {
	Key     string                     `json:"key,omitempty"`
	Kind    MatchKind                  `json:"kind"`
	Gesture entities.GestureDescriptor `json:"gesture"`
}

// Catalog is an immutable, ordered gesture table. The enumeration order is
// fixed at construction and decides ties between substring matches.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog builds a catalog from entries in enumeration order
func NewCatalog(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("catalog needs at least one entry")
	}

	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Key))
		if key == "" {
			return nil, errors.New("catalog key cannot be empty")
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("duplicate catalog key %q", key)
		}
		if err := e.Gesture.Validate(); err != nil {
			return nil, fmt.Errorf("catalog key %q: %w", key, err)
		}
		c.index[key] = len(c.entries)
		c.entries = append(c.entries, Entry{Key: key, Gesture: e.Gesture.Clone()})
	}
	return c, nil
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Keys returns catalog keys in enumeration order
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of every entry in enumeration order
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = Entry{Key: e.Key, Gesture: e.Gesture.Clone()}
	}
	return out
}

// Lookup returns the gesture stored under an exact key
func (c *Catalog) Lookup(key string) (entities.GestureDescriptor, bool) {
	i, ok := c.index[strings.ToLower(key)]
	if !ok {
		return entities.GestureDescriptor{}, false
	}
	return c.entries[i].Gesture.Clone(), true
}

// Match finds the gesture for free text. The whole lower-cased input is
// tried as a key first, then keys are scanned in enumeration order and the
// first one contained in the input wins. Anything else maps to the Unknown
// gesture, so Match never fails.
func (c *Catalog) Match(text string) Match {
	lower := strings.ToLower(text)

	if i, ok := c.index[lower]; ok {
		return Match{Key: c.entries[i].Key, Kind: MatchExact, Gesture: c.entries[i].Gesture.Clone()}
	}

	for _, e := range c.entries {
		if strings.Contains(lower, e.Key) {
			return Match{Key: e.Key, Kind: MatchSubstring, Gesture: e.Gesture.Clone()}
		}
	}

	return Match{Kind: MatchUnknown, Gesture: UnknownGesture()}
}

// FindGesture returns only the descriptor selected by Match
func (c *Catalog) FindGesture(text string) entities.GestureDescriptor {
	return c.Match(text).Gesture
}

// UnknownGesture is the neutral pose returned when nothing matches
func UnknownGesture() entities.GestureDescriptor {
	return entities.GestureDescriptor{
		Name:            "Unknown",
		Description:     "Gesture not found in database",
		PoseKeyframes:   []entities.Point3D{{X: 0.5, Y: 0.5, Z: 0.1}},
		FingerExtension: allFingers,
		DurationMs:      2000,
	}
}
