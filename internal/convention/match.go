package convention

import (
	"regexp"
	"strings"
)

var indexSuffix = regexp.MustCompile(`\s*\[\d+\]`)

// Match maps a cutlist Reference to a Component in the table. Rules are
// tried in order:
//
//  1. "L SIDE DRAWER" / "R SIDE DRAWER" → "Drawers Side"
//  2. "DRAWER" without "SIDE DRAWER" → "Drawers (Frontage)"
//  3. "DOOR" and "DOUBLE" → "Doors (Double)"
//  4. "DOOR" and "SINGLE" → "Single Doors (Open Side)" when the reference
//     mentions "OPEN", otherwise "Single Doors (Fitting Side)"
//  5. exact match
//  6. match after removing "[n]" suffixes, then containment either way
//  7. case-insensitive containment either way
//
// Rules 1-4 only apply when the named Component exists in the table.
func (t *Table) Match(reference string) (string, bool) {
	upper := strings.ToUpper(reference)

	named := func(target string) (string, bool) {
		if _, ok := t.Lookup(target); ok {
			return target, true
		}
		return "", false
	}

	if strings.Contains(upper, "L SIDE DRAWER") || strings.Contains(upper, "R SIDE DRAWER") {
		if c, ok := named("Drawers Side"); ok {
			return c, true
		}
	}
	if strings.Contains(upper, "DRAWER") && !strings.Contains(upper, "SIDE DRAWER") {
		if c, ok := named("Drawers (Frontage)"); ok {
			return c, true
		}
	}
	if strings.Contains(upper, "DOOR") && strings.Contains(upper, "DOUBLE") {
		if c, ok := named("Doors (Double)"); ok {
			return c, true
		}
	}
	if strings.Contains(upper, "DOOR") && strings.Contains(upper, "SINGLE") {
		target := "Single Doors (Fitting Side)"
		if strings.Contains(upper, "OPEN") {
			target = "Single Doors (Open Side)"
		}
		if c, ok := named(target); ok {
			return c, true
		}
	}

	for _, e := range t.entries {
		if e.Component == reference {
			return e.Component, true
		}
	}

	cleaned := strings.TrimSpace(indexSuffix.ReplaceAllString(reference, ""))
	for _, e := range t.entries {
		if cleaned == e.Component {
			return e.Component, true
		}
		if cleaned != "" && (strings.Contains(cleaned, e.Component) || strings.Contains(e.Component, cleaned)) {
			return e.Component, true
		}
	}

	if upper == "" {
		return "", false
	}
	for _, e := range t.entries {
		comp := strings.ToUpper(e.Component)
		if strings.Contains(upper, comp) || strings.Contains(comp, upper) {
			return e.Component, true
		}
	}
	return "", false
}
