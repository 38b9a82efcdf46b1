package asset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PropKind is the rendering/serialization kind of a dynamic asset property,
// as declared by the remote asset-type schema. It drives both form widget
// choice and value serialization.
type PropKind string

// Known property kinds.
const (
	PropText PropKind = "Text"
	PropDate PropKind = "Date"
)

// PropDef describes one dynamic property of an asset type.
type PropDef struct {
	Label string   `json:"label"`
	Kind  PropKind `json:"type"`
}

// TypeInfo is one entry of the remote asset-type list.
type TypeInfo struct {
	ID   int    `json:"key"`
	Name string `json:"text"`
}

// Schema maps an asset type name to its dynamic property definitions.
type Schema map[string][]PropDef

// KindOf returns the kind of a property, defaulting to Text for properties
// the schema does not know — the implicit typing the backend has always
// assumed, made explicit.
func (s Schema) KindOf(typ, label string) PropKind {
	for _, def := range s[typ] {
		if def.Label == label {
			return def.Kind
		}
	}
	return PropText
}

// FormatDate renders a time in the backend's d/m/yyyy property format.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// ParseDate parses a d/m/yyyy property value.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date value %q", s)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date value %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid date value %q", s)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date value %q", s)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}
