package content

import (
	"sort"
	"strings"
)

// Document is the wording payload for a single locale. It is a nested map of
// sections and message strings as decoded from a wording file.
//
// Documents are mergeable: Merge overlays another document underneath the
// receiver, filling gaps without ever replacing a value the receiver already
// carries. The operation is not commutative, the receiver always wins.
type Document map[string]any

// Merge applies other's fields onto the receiver as fallback defaults.
// A key already present on the receiver is kept as is; nested tables are
// merged recursively.
func (d Document) Merge(other Document) {
	for key, fallbackVal := range other {
		existing, ok := d[key]
		if !ok {
			d[key] = deepCopyValue(fallbackVal)
			continue
		}

		existingTable, existingIsTable := toDocument(existing)
		fallbackTable, fallbackIsTable := toDocument(fallbackVal)
		if existingIsTable && fallbackIsTable {
			existingTable.Merge(fallbackTable)
			d[key] = existingTable
		}
	}
}

// Clone returns a deep copy of the document. Mutating the copy never affects
// the original.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}

	out := make(Document, len(d))
	for key, val := range d {
		out[key] = deepCopyValue(val)
	}
	return out
}

// Flatten collapses the document into dot separated keys mapping to their
// string values. Non string leaves are skipped.
func (d Document) Flatten() map[string]string {
	out := make(map[string]string)
	d.flattenInto(out, "")
	return out
}

// Keys returns the sorted flattened key set, mostly useful in tests and logs.
func (d Document) Keys() []string {
	flat := d.Flatten()
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (d Document) flattenInto(out map[string]string, prefix string) {
	for key, val := range d {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if table, ok := toDocument(val); ok {
			table.flattenInto(out, fullKey)
			continue
		}

		if s, ok := val.(string); ok {
			out[fullKey] = s
		}
	}
}

// Lookup resolves a dot separated key against the document.
func (d Document) Lookup(key string) (string, bool) {
	parts := strings.Split(key, ".")
	current := d
	for i, part := range parts {
		val, ok := current[part]
		if !ok {
			return "", false
		}

		if i == len(parts)-1 {
			s, isString := val.(string)
			return s, isString
		}

		current, ok = toDocument(val)
		if !ok {
			return "", false
		}
	}
	return "", false
}

func toDocument(val any) (Document, bool) {
	switch v := val.(type) {
	case Document:
		return v, true
	case map[string]any:
		return Document(v), true
	default:
		return nil, false
	}
}

func deepCopyValue(val any) any {
	if table, ok := toDocument(val); ok {
		return table.Clone()
	}

	// TOML array-of-tables decodes to slices; copy them element by element so
	// a clone never shares mutable state with the original.
	switch v := val.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = deepCopyValue(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, item := range v {
			out[i] = Document(item).Clone()
		}
		return out
	case []Document:
		out := make([]Document, len(v))
		for i, item := range v {
			out[i] = item.Clone()
		}
		return out
	}

	return val
}
