package record

import "fmt"

// IDKey is the identifying field of every record.
const IDKey = "id"

// Record is an insertion-ordered mapping from field name to value.
//
// Set on an existing key keeps the key's position; new keys are appended.
// Nested mappings are held as *Record so order survives at every depth.
// The zero value is an empty record ready to use.
type Record struct {
	keys   []string
	values map[string]any
}

// New returns an empty record.
func New() *Record {
	return &Record{values: make(map[string]any)}
}

// Of builds a record from alternating key/value arguments.
//
// Example:
//
//	r := record.Of("id", "abc", "alias", "Morning")
//
// Panics if a key is not a string or the argument count is odd.
func Of(kv ...any) *Record {
	if len(kv)%2 != 0 {
		panic("record.Of: odd number of arguments")
	}
	r := New()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("record.Of: key at position %d is %T, not string", i, kv[i]))
		}
		r.Set(key, kv[i+1])
	}
	return r
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the field names in emission order.
func (r *Record) Keys() []string {
	if r == nil || len(r.keys) == 0 {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set stores value under key. An existing key keeps its position.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// ID returns the identifier when it is a non-empty string.
func (r *Record) ID() (string, bool) {
	v, ok := r.Get(IDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// HasID reports whether the identifying field holds a value.
// Non-string identifiers count as present even though they never match a lookup.
func (r *Record) HasID() bool {
	v, ok := r.Get(IDKey)
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && s == "" {
		return false
	}
	return true
}

// Clone returns a deep copy. Nested records and lists are copied; scalars are shared.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{values: make(map[string]any, len(r.values))}
	if len(r.keys) > 0 {
		out.keys = make([]string, len(r.keys))
		copy(out.keys, r.keys)
	}
	for k, v := range r.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

// ToMap converts the record to plain Go maps, dropping key order.
// Used at boundaries that only understand map[string]any.
func (r *Record) ToMap() map[string]any {
	out := make(map[string]any, r.Len())
	if r == nil {
		return out
	}
	for _, k := range r.keys {
		out[k] = plainValue(r.values[k])
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case *Record:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}

func plainValue(v any) any {
	switch val := v.(type) {
	case *Record:
		return val.ToMap()
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = plainValue(elem)
		}
		return out
	default:
		return v
	}
}
