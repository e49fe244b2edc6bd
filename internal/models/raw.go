package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

type rawKind uint8

const (
	rawAbsent rawKind = iota
	rawString
	rawNumber
	rawBool
)

// RawValue is one cell of a tale-of-the-tape table: a string, a number, a
// boolean, or absent.
type RawValue struct {
	kind   rawKind
	text   string
	number float64
	truth  bool
}

// StringValue wraps a scraped string cell.
func StringValue(s string) RawValue {
	return RawValue{kind: rawString, text: s}
}

// NumberValue wraps a numeric cell.
func NumberValue(f float64) RawValue {
	return RawValue{kind: rawNumber, number: f}
}

// BoolValue wraps a boolean cell.
func BoolValue(b bool) RawValue {
	return RawValue{kind: rawBool, truth: b}
}

// IsAbsent reports whether the cell carries no value.
func (v RawValue) IsAbsent() bool {
	return v.kind == rawAbsent
}

// IsEmpty reports whether the cell is absent or falsy: a blank string, zero or false.
func (v RawValue) IsEmpty() bool {
	switch v.kind {
	case rawString:
		return v.text == ""
	case rawNumber:
		return v.number == 0
	case rawBool:
		return !v.truth
	default:
		return true
	}
}

// Text returns the cell rendered as a string. Numbers use their shortest decimal form.
func (v RawValue) Text() (string, bool) {
	switch v.kind {
	case rawString:
		return v.text, true
	case rawNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64), true
	case rawBool:
		return strconv.FormatBool(v.truth), true
	default:
		return "", false
	}
}

// Float parses the cell as a float64.
func (v RawValue) Float() (float64, bool) {
	switch v.kind {
	case rawNumber:
		return v.number, true
	case rawString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// UnmarshalJSON accepts strings, numbers, booleans and null. Objects and
// arrays are treated as absent.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*v = RawValue{}
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case 'n', '{', '[':
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("raw value: %w", err)
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return fmt.Errorf("raw value: %w", err)
		}
		*v = BoolValue(b)
	default:
		f, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil {
			*v = StringValue(string(trimmed))
			return nil
		}
		*v = NumberValue(f)
	}
	return nil
}

// MarshalJSON writes the cell back in its original JSON kind.
func (v RawValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case rawString:
		return json.Marshal(v.text)
	case rawNumber:
		if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.number, 'f', -1, 64)), nil
	case rawBool:
		return []byte(strconv.FormatBool(v.truth)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML event files.
func (v *RawValue) UnmarshalYAML(node *yaml.Node) error {
	*v = RawValue{}
	if node.Kind != yaml.ScalarNode {
		return nil
	}

	switch node.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			*v = BoolValue(b)
			return nil
		}
	case "!!int", "!!float":
		if f, err := strconv.ParseFloat(node.Value, 64); err == nil {
			*v = NumberValue(f)
			return nil
		}
	}
	*v = StringValue(node.Value)
	return nil
}

// FighterValues maps a fighter name to the raw cell for one attribute.
type FighterValues struct {
	m *orderedmap.OrderedMap[string, RawValue]
}

// Get returns the cell for a fighter, absent when missing.
func (f FighterValues) Get(fighter string) RawValue {
	if f.m == nil {
		return RawValue{}
	}
	return f.m.Value(fighter)
}

// Set stores a cell for a fighter.
func (f *FighterValues) Set(fighter string, value RawValue) {
	if f.m == nil {
		f.m = orderedmap.New[string, RawValue]()
	}
	f.m.Set(fighter, value)
}

// UnmarshalJSON decodes an object of fighter cells; any other JSON kind yields no cells.
func (f *FighterValues) UnmarshalJSON(data []byte) error {
	f.m = orderedmap.New[string, RawValue]()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	return f.m.UnmarshalJSON(trimmed)
}

// MarshalJSON keeps fighter order.
func (f FighterValues) MarshalJSON() ([]byte, error) {
	if f.m == nil {
		return []byte("{}"), nil
	}
	return f.m.MarshalJSON()
}

// UnmarshalYAML decodes a mapping of fighter cells; other node kinds yield no cells.
func (f *FighterValues) UnmarshalYAML(node *yaml.Node) error {
	f.m = orderedmap.New[string, RawValue]()
	if node.Kind != yaml.MappingNode {
		return nil
	}
	return f.m.UnmarshalYAML(node)
}

// RawMatchupTable is the wide tale-of-the-tape table: attribute name, then
// fighter name, then raw cell. Attribute order follows the source document.
type RawMatchupTable struct {
	attrs *orderedmap.OrderedMap[string, FighterValues]
}

// NewRawMatchupTable returns an empty table.
func NewRawMatchupTable() RawMatchupTable {
	return RawMatchupTable{attrs: orderedmap.New[string, FighterValues]()}
}

// Set stores one cell, creating the attribute row when needed.
func (t *RawMatchupTable) Set(attribute, fighter string, value RawValue) {
	if t.attrs == nil {
		t.attrs = orderedmap.New[string, FighterValues]()
	}
	row := t.attrs.Value(attribute)
	row.Set(fighter, value)
	t.attrs.Set(attribute, row)
}

// Value looks up one cell; missing attributes and fighters are absent.
func (t RawMatchupTable) Value(attribute, fighter string) RawValue {
	if t.attrs == nil {
		return RawValue{}
	}
	row, ok := t.attrs.Get(attribute)
	if !ok {
		return RawValue{}
	}
	return row.Get(fighter)
}

// Attributes lists attribute names in source order.
func (t RawMatchupTable) Attributes() []string {
	if t.attrs == nil {
		return nil
	}
	keys := make([]string, 0, t.attrs.Len())
	for pair := t.attrs.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of attribute rows.
func (t RawMatchupTable) Len() int {
	if t.attrs == nil {
		return 0
	}
	return t.attrs.Len()
}

// UnmarshalJSON decodes the table, treating a non-object as empty.
func (t *RawMatchupTable) UnmarshalJSON(data []byte) error {
	t.attrs = orderedmap.New[string, FighterValues]()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	if err := t.attrs.UnmarshalJSON(trimmed); err != nil {
		return fmt.Errorf("tale of the tape: %w", err)
	}
	return nil
}

// MarshalJSON keeps attribute order.
func (t RawMatchupTable) MarshalJSON() ([]byte, error) {
	if t.attrs == nil {
		return []byte("{}"), nil
	}
	return t.attrs.MarshalJSON()
}

// UnmarshalYAML decodes the table from a YAML mapping.
func (t *RawMatchupTable) UnmarshalYAML(node *yaml.Node) error {
	t.attrs = orderedmap.New[string, FighterValues]()
	if node.Kind != yaml.MappingNode {
		return nil
	}
	if err := t.attrs.UnmarshalYAML(node); err != nil {
		return fmt.Errorf("tale of the tape: %w", err)
	}
	return nil
}

// RawFightEntry is one bout as delivered by the scraper.
type RawFightEntry struct {
	Matchup       []string        `json:"matchup" yaml:"matchup"`
	TaleOfTheTape RawMatchupTable `json:"tale_of_the_tape" yaml:"tale_of_the_tape"`
}
