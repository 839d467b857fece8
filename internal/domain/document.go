package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// RevisionKey holds the optimistic-concurrency counter of every persisted document.
const RevisionKey = "revision"

type DocumentKind string

const (
	DocumentUser    DocumentKind = "user"
	DocumentSystem  DocumentKind = "system"
	DocumentBackend DocumentKind = "backend"
)

func (k DocumentKind) Validate() error {
	switch k {
	case DocumentUser, DocumentSystem, DocumentBackend:
		return nil
	default:
		return fmt.Errorf("unknown document kind %q", k)
	}
}

type Document map[string]any

func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}

	return cloneMap(d)
}

func (d Document) Revision() int64 {
	switch v := d[RevisionKey].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func (d Document) SetRevision(rev int64) {
	d[RevisionKey] = rev
}

// Merge deep-merges partial into d. Nested objects merge key by key; any other
// value, lists included, replaces what was there.
func (d Document) Merge(partial Document) {
	for key, value := range partial {
		if incoming, ok := asMap(value); ok {
			if existing, ok := asMap(d[key]); ok {
				Document(existing).Merge(incoming)
				continue
			}
		}
		d[key] = cloneValue(value)
	}
}

func (d Document) Get(path []string) (any, bool) {
	if len(path) == 0 {
		return map[string]any(d), true
	}

	var current any = map[string]any(d)
	for _, segment := range path {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// SetPath assigns value at path, creating missing intermediate objects. An
// intermediate segment that exists but is not an object is a conflict.
func (d Document) SetPath(path []string, value any) error {
	parent, last, err := d.parentFor(path, true)
	if err != nil {
		return err
	}

	parent[last] = cloneValue(value)
	return nil
}

func (d Document) AppendToList(path []string, value any) error {
	parent, last, err := d.parentFor(path, true)
	if err != nil {
		return err
	}

	existing, ok := parent[last]
	if !ok || existing == nil {
		parent[last] = []any{cloneValue(value)}
		return nil
	}

	list, ok := normalizeJSON(existing).([]any)
	if !ok {
		return fmt.Errorf("%w: %s is %s, not a list", ErrPathConflict, strings.Join(path, "."), kindOf(existing))
	}

	parent[last] = append(list, cloneValue(value))
	return nil
}

// RemoveFromList drops every element equal to value and reports whether any matched.
func (d Document) RemoveFromList(path []string, value any) (bool, error) {
	parent, last, err := d.parentFor(path, false)
	if err != nil {
		if errors.Is(err, errMissingParent) {
			return false, nil
		}
		return false, err
	}

	existing, ok := parent[last]
	if !ok || existing == nil {
		return false, nil
	}

	list, ok := normalizeJSON(existing).([]any)
	if !ok {
		return false, fmt.Errorf("%w: %s is %s, not a list", ErrPathConflict, strings.Join(path, "."), kindOf(existing))
	}

	needle := normalizeJSON(value)
	kept := make([]any, 0, len(list))
	removed := false
	for _, item := range list {
		if reflect.DeepEqual(normalizeJSON(item), needle) {
			removed = true
			continue
		}
		kept = append(kept, item)
	}

	parent[last] = kept
	return removed, nil
}

// Decode unmarshals the value under key into out. A missing key leaves out untouched.
func (d Document) Decode(key string, out any) error {
	value, ok := d[key]
	if !ok || value == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}

	return nil
}

func (d Document) Put(key string, v any) error {
	generic, err := toGeneric(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	d[key] = generic
	return nil
}

func ToDocument(v any) (Document, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}

	m, ok := generic.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("value of type %T is not a JSON object", v)
	}

	return Document(m), nil
}

func SplitPath(dotted string) []string {
	parts := strings.Split(strings.TrimSpace(dotted), ".")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segments = append(segments, part)
	}

	return segments
}

var errMissingParent = errors.New("missing parent")

func (d Document) parentFor(path []string, create bool) (map[string]any, string, error) {
	if len(path) == 0 {
		return nil, "", ErrEmptyPath
	}

	current := map[string]any(d)
	for i, segment := range path[:len(path)-1] {
		next, ok := current[segment]
		if !ok || next == nil {
			if !create {
				return nil, "", errMissingParent
			}
			created := map[string]any{}
			current[segment] = created
			current = created
			continue
		}

		m, ok := asMap(next)
		if !ok {
			return nil, "", fmt.Errorf("%w: %s is %s, not an object", ErrPathConflict, strings.Join(path[:i+1], "."), kindOf(next))
		}
		current = m
	}

	return current, path[len(path)-1], nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return cloneMap(value)
	case Document:
		return cloneMap(value)
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}

	return generic, nil
}

func normalizeJSON(v any) any {
	generic, err := toGeneric(v)
	if err != nil {
		return v
	}
	return generic
}

func kindOf(v any) string {
	switch v.(type) {
	case []any:
		return "a list"
	case string:
		return "a string"
	case float64, int, int64:
		return "a number"
	case bool:
		return "a boolean"
	default:
		if _, ok := asMap(v); ok {
			return "an object"
		}
		return fmt.Sprintf("%T", v)
	}
}
