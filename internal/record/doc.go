// Package record implements the ordered configuration record and the
// identity-based merge engine for a collection of automation records.
//
// A Record is an insertion-ordered field bag. A Collection is the ordered
// list of records persisted as one YAML document.
//
// # Merge Semantics
//
// Upsert edits one record, addressed by its "id" field:
//
//   - Backfill: every record without an id receives a random 32-hex token.
//     The pass never mutates its input; backfilled records are clones.
//   - Lookup: the first record whose id equals the target is merged in place.
//     When none matches, a new record {id: target} is appended.
//   - Merge: preferred fields (id, alias, description, trigger, condition,
//     action) come first in that fixed order, followed by the remaining fields
//     of the current record, then of the incoming fields. Incoming values win.
//
// All functions here are pure with respect to their inputs. Persistence and
// writer exclusion belong to the document collaborator.
package record
