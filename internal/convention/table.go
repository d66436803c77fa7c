package convention

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingComponent is returned when an entry has a blank Component.
	ErrMissingComponent = errors.New("component is required")
	// ErrDuplicateComponent is returned when two entries share a Component,
	// compared case-insensitively.
	ErrDuplicateComponent = errors.New("component must be unique")
	// ErrNotFound is returned when no entry has the requested Component.
	ErrNotFound = errors.New("component not found")
)

// Column names shared by the JSON sidecar and spreadsheets.
const (
	ColComponent      = "Component"
	ColFace1          = "Face_1"
	ColFace2          = "Face_2"
	ColEdge0          = "Edge_0"
	ColEdge1          = "Edge_1"
	ColEdge2NoConnect = "Edge_2_no_connect"
	ColEdge2Connect   = "Edge_2_connect"
	ColEdge3          = "Edge_3"
	ColEdge4          = "Edge_4"
)

// Columns lists the table columns in file order.
var Columns = []string{
	ColComponent,
	ColFace1,
	ColFace2,
	ColEdge0,
	ColEdge1,
	ColEdge2NoConnect,
	ColEdge2Connect,
	ColEdge3,
	ColEdge4,
}

// Entry is one row of the convention table.
type Entry struct {
	Component      string `json:"Component"`
	Face1          string `json:"Face_1"`
	Face2          string `json:"Face_2"`
	Edge0          string `json:"Edge_0"`
	Edge1          string `json:"Edge_1"`
	Edge2NoConnect string `json:"Edge_2_no_connect"`
	Edge2Connect   string `json:"Edge_2_connect"`
	Edge3          string `json:"Edge_3"`
	Edge4          string `json:"Edge_4"`
}

// Get returns the value of a column by name.
func (e Entry) Get(column string) (string, bool) {
	switch column {
	case ColComponent:
		return e.Component, true
	case ColFace1:
		return e.Face1, true
	case ColFace2:
		return e.Face2, true
	case ColEdge0:
		return e.Edge0, true
	case ColEdge1:
		return e.Edge1, true
	case ColEdge2NoConnect:
		return e.Edge2NoConnect, true
	case ColEdge2Connect:
		return e.Edge2Connect, true
	case ColEdge3:
		return e.Edge3, true
	case ColEdge4:
		return e.Edge4, true
	default:
		return "", false
	}
}

// Set assigns a column by name; unknown columns report false.
func (e *Entry) Set(column, value string) bool {
	value = strings.TrimSpace(value)
	switch column {
	case ColComponent:
		e.Component = value
	case ColFace1:
		e.Face1 = value
	case ColFace2:
		e.Face2 = value
	case ColEdge0:
		e.Edge0 = value
	case ColEdge1:
		e.Edge1 = value
	case ColEdge2NoConnect:
		e.Edge2NoConnect = value
	case ColEdge2Connect:
		e.Edge2Connect = value
	case ColEdge3:
		e.Edge3 = value
	case ColEdge4:
		e.Edge4 = value
	default:
		return false
	}
	return true
}

// Values returns the entry's values in column order.
func (e Entry) Values() []string {
	out := make([]string, len(Columns))
	for i, col := range Columns {
		out[i], _ = e.Get(col)
	}
	return out
}

// Face returns the face name for face number "1" or "2".
func (e Entry) Face(number string) string {
	switch strings.TrimSpace(number) {
	case "1":
		return e.Face1
	case "2":
		return e.Face2
	default:
		return ""
	}
}

// Table is the ordered convention table.
type Table struct {
	entries []Entry
}

// New builds a table from entries, validating Component values.
func New(entries ...Entry) (*Table, error) {
	t := &Table{}
	for _, e := range entries {
		if err := t.Add(e); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns a copy of the entries in order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Components returns the Component values in order.
func (t *Table) Components() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Component
	}
	return out
}

// Lookup returns the entry whose Component equals name exactly.
func (t *Table) Lookup(name string) (Entry, bool) {
	for _, e := range t.entries {
		if e.Component == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Find returns the entry whose Component matches name case-insensitively.
func (t *Table) Find(name string) (Entry, bool) {
	idx := t.index(name)
	if idx < 0 {
		return Entry{}, false
	}
	return t.entries[idx], true
}

func (t *Table) index(name string) int {
	key := strings.ToUpper(strings.TrimSpace(name))
	for i, e := range t.entries {
		if strings.ToUpper(strings.TrimSpace(e.Component)) == key {
			return i
		}
	}
	return -1
}

// Add appends a new entry.
func (t *Table) Add(e Entry) error {
	e.Component = strings.TrimSpace(e.Component)
	if e.Component == "" {
		return ErrMissingComponent
	}
	if t.index(e.Component) >= 0 {
		return fmt.Errorf("%q: %w", e.Component, ErrDuplicateComponent)
	}
	t.entries = append(t.entries, e)
	return nil
}

// Update replaces the entry named current with e. Renaming is allowed as long
// as the new Component stays unique.
func (t *Table) Update(current string, e Entry) error {
	idx := t.index(current)
	if idx < 0 {
		return fmt.Errorf("%q: %w", current, ErrNotFound)
	}
	e.Component = strings.TrimSpace(e.Component)
	if e.Component == "" {
		return ErrMissingComponent
	}
	if other := t.index(e.Component); other >= 0 && other != idx {
		return fmt.Errorf("%q: %w", e.Component, ErrDuplicateComponent)
	}
	t.entries[idx] = e
	return nil
}

// Delete removes the entry named name.
func (t *Table) Delete(name string) error {
	idx := t.index(name)
	if idx < 0 {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	t.entries = append(t.entries[:idx], t.entries[idx+1:]...)
	return nil
}

// Replace swaps the whole table content, as done by a spreadsheet import.
func (t *Table) Replace(other *Table) {
	t.entries = other.Entries()
}

// Validate checks that every Component is present and unique.
func (t *Table) Validate() error {
	seen := make(map[string]struct{}, len(t.entries))
	for i, e := range t.entries {
		key := strings.ToUpper(strings.TrimSpace(e.Component))
		if key == "" {
			return fmt.Errorf("row %d: %w", i+1, ErrMissingComponent)
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("row %d %q: %w", i+1, e.Component, ErrDuplicateComponent)
		}
		seen[key] = struct{}{}
	}
	return nil
}
