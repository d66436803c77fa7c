package mpr

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed reference.json
var referenceJSON []byte

// Command describes one MPR macro in the static reference.
type Command struct {
	Number      int      `json:"number"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
}

// FullName renders the block header, e.g. `<109 \Nuten\`.
func (c Command) FullName() string {
	return fmt.Sprintf(`<%d \%s\`, c.Number, c.Name)
}

// Code describes an edge or geometry keyword.
type Code struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Reference is the read-only command, edge and geometry table.
type Reference struct {
	Commands []Command `json:"commands"`
	Edges    []Code    `json:"edges"`
	Geometry []Code    `json:"geometry"`
}

var (
	referenceOnce sync.Once
	reference     Reference
	referenceErr  error
)

// LoadReference returns the embedded reference table, sorted by command
// number.
func LoadReference() (Reference, error) {
	referenceOnce.Do(func() {
		if err := json.Unmarshal(referenceJSON, &reference); err != nil {
			referenceErr = fmt.Errorf("decode mpr reference: %w", err)
			return
		}
		sort.Slice(reference.Commands, func(i, j int) bool {
			return reference.Commands[i].Number < reference.Commands[j].Number
		})
	})
	return reference, referenceErr
}

// Lookup returns the command with the given number.
func (r Reference) Lookup(number int) (Command, bool) {
	for _, c := range r.Commands {
		if c.Number == number {
			return c, true
		}
	}
	return Command{}, false
}

// Search returns commands whose number, name or description contains query,
// case-insensitively. An empty query returns every command.
func (r Reference) Search(query string) []Command {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Command(nil), r.Commands...)
	}
	var out []Command
	for _, c := range r.Commands {
		hay := strings.ToLower(fmt.Sprintf("%d %s %s", c.Number, c.Name, c.Description))
		if strings.Contains(hay, q) {
			out = append(out, c)
		}
	}
	return out
}
