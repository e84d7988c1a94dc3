// Package bus connects the editor to the rest of the system through Redis.
//
// It carries two things: reload service calls, published as JSON on a
// Pub/Sub channel, and the entity registry, stored as hashes mapping each
// (domain, platform, unique id) to an entity id. All keys and channels are
// namespaced by instance name so several installations can share one Redis
// server:
//
//	autoedit:{instance}:service_calls                       Pub/Sub channel
//	autoedit:{instance}:registry:{domain}:{platform}        hash unique_id -> entity_id
//	autoedit:{instance}:entity:{entity_id}                  hash domain, platform, unique_id
package bus
