package blueprint

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValueKind discriminates the shapes a metadata field can take.
type ValueKind int

const (
	// ValueAbsent means the field is missing or null.
	ValueAbsent ValueKind = iota
	// ValueString holds a single scalar rendered as text.
	ValueString
	// ValueList holds an ordered list of text items.
	ValueList
)

// Value is one metadata field from the blueprint's JSON block. Scalars
// (strings, numbers, booleans) become ValueString; arrays become ValueList
// with each item rendered as text. Nested objects are treated as absent.
type Value struct {
	kind ValueKind
	str  string
	list []string
}

// Kind returns the value's shape.
func (v Value) Kind() ValueKind { return v.kind }

// IsSet reports whether the field carried usable content.
func (v Value) IsSet() bool {
	switch v.kind {
	case ValueString:
		return v.str != ""
	case ValueList:
		return len(v.list) > 0
	default:
		return false
	}
}

// Text renders the value as a single string; list items are joined with
// the given separator.
func (v Value) Text(sep string) string {
	if v.kind == ValueList {
		return strings.Join(v.list, sep)
	}
	return v.str
}

// Items returns the value as a list. A scalar becomes a one-item list.
func (v Value) Items() []string {
	switch v.kind {
	case ValueList:
		return v.list
	case ValueString:
		if v.str == "" {
			return nil
		}
		return []string{v.str}
	default:
		return nil
	}
}

// Metadata is the parsed JSON front block of a blueprint.
type Metadata struct {
	fields map[string]Value
}

// Get returns the named field, or an absent Value.
func (m Metadata) Get(key string) Value { return m.fields[key] }

// First returns the first set field among the given keys.
func (m Metadata) First(keys ...string) Value {
	for _, key := range keys {
		if v := m.fields[key]; v.IsSet() {
			return v
		}
	}
	return Value{}
}

// Tags normalizes the "tags" field: a comma-separated string or a list,
// trimmed, with empty items dropped.
func (m Metadata) Tags() []string {
	v := m.Get("tags")
	var candidates []string
	if v.kind == ValueString {
		candidates = strings.Split(v.str, ",")
	} else {
		candidates = v.list
	}
	var tags []string
	for _, item := range candidates {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// newMetadata converts a decoded JSON object into tagged values.
func newMetadata(raw map[string]json.RawMessage) Metadata {
	fields := make(map[string]Value, len(raw))
	for key, msg := range raw {
		fields[key] = decodeValue(msg)
	}
	return Metadata{fields: fields}
}

func decodeValue(msg json.RawMessage) Value {
	var decoded interface{}
	if err := json.Unmarshal(msg, &decoded); err != nil {
		return Value{}
	}
	return valueOf(decoded)
}

func valueOf(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case string:
		return Value{kind: ValueString, str: strings.TrimSpace(t)}
	case bool:
		return Value{kind: ValueString, str: fmt.Sprintf("%t", t)}
	case float64:
		return Value{kind: ValueString, str: fmt.Sprintf("%v", t)}
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if iv := valueOf(item); iv.kind == ValueString && iv.str != "" {
				items = append(items, iv.str)
			}
		}
		return Value{kind: ValueList, list: items}
	default:
		// Nested objects have no scalar rendering.
		return Value{}
	}
}
