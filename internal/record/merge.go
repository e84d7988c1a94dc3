package record

// PreferredKeys lists the fields emitted first, in this order, by Merge.
var PreferredKeys = []string{"id", "alias", "description", "trigger", "condition", "action"}

// Collection is the ordered list of records backing one document.
type Collection []*Record

// Find returns the index of the first record whose id equals id, or -1.
func (c Collection) Find(id string) int {
	for i, r := range c {
		if got, ok := r.ID(); ok && got == id {
			return i
		}
	}
	return -1
}

// IDs returns the string identifiers present in the collection, in order.
func (c Collection) IDs() []string {
	var ids []string
	for _, r := range c {
		if id, ok := r.ID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Backfill returns a copy of c in which every record without an id has been
// assigned one from gen, along with the number of ids assigned.
//
// Generated ids are checked against ids already in the collection and against
// ids generated earlier in the same pass; a collision draws a new token.
// Records that already have an id are shared, not copied.
func Backfill(c Collection, gen IDGenerator) (Collection, int) {
	out := make(Collection, len(c))

	taken := make(map[string]struct{}, len(c))
	for _, r := range c {
		if id, ok := r.ID(); ok {
			taken[id] = struct{}{}
		}
	}

	assigned := 0
	for i, r := range c {
		if r.HasID() {
			out[i] = r
			continue
		}

		id := gen.Generate()
		for {
			if _, dup := taken[id]; !dup {
				break
			}
			id = gen.Generate()
		}
		taken[id] = struct{}{}

		fixed := r.Clone()
		if fixed == nil {
			fixed = New()
		}
		fixed.Set(IDKey, id)
		out[i] = fixed
		assigned++
	}
	return out, assigned
}

// Merge combines current and incoming into a new record.
//
// Preferred keys come first in PreferredKeys order, then the remaining keys
// of current, then those of incoming. Incoming values win on every conflict.
// Neither input is modified.
func Merge(current, incoming *Record) *Record {
	merged := New()

	for _, key := range PreferredKeys {
		if v, ok := current.Get(key); ok {
			merged.Set(key, cloneValue(v))
		}
		if v, ok := incoming.Get(key); ok {
			merged.Set(key, cloneValue(v))
		}
	}

	for _, key := range current.Keys() {
		v, _ := current.Get(key)
		merged.Set(key, cloneValue(v))
	}
	for _, key := range incoming.Keys() {
		v, _ := incoming.Get(key)
		merged.Set(key, cloneValue(v))
	}

	return merged
}

// Upsert merges fields into the record identified by id and returns the new
// collection along with the record's index.
//
// The input collection is not modified. When no record matches, a new record
// {id: id} is appended before merging. fields may be nil.
func Upsert(c Collection, id string, fields *Record, gen IDGenerator) (Collection, int) {
	out, _ := Backfill(c, gen)

	index := out.Find(id)
	var current *Record
	if index < 0 {
		current = New()
		current.Set(IDKey, id)
		index = len(out)
		out = append(out, nil)
	} else {
		current = out[index]
	}

	out[index] = Merge(current, fields)
	return out, index
}

// Remove returns a copy of c without the first record whose id equals id.
// The boolean is false when no record matched.
func Remove(c Collection, id string) (Collection, bool) {
	index := c.Find(id)
	if index < 0 {
		return c, false
	}
	out := make(Collection, 0, len(c)-1)
	out = append(out, c[:index]...)
	out = append(out, c[index+1:]...)
	return out, true
}
