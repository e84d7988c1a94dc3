package bus

import "fmt"

// ServiceCallsChannel returns the Pub/Sub channel for service calls.
// Pattern: autoedit:{instance_name}:service_calls
func ServiceCallsChannel(instanceName string) string {
	return fmt.Sprintf("autoedit:%s:service_calls", instanceName)
}

// RegistryKey returns the hash holding unique_id -> entity_id for one
// domain and platform.
// Pattern: autoedit:{instance_name}:registry:{domain}:{platform}
func RegistryKey(instanceName, domain, platform string) string {
	return fmt.Sprintf("autoedit:%s:registry:%s:%s", instanceName, domain, platform)
}

// EntityKey returns the reverse index entry for an entity.
// Pattern: autoedit:{instance_name}:entity:{entity_id}
func EntityKey(instanceName, entityID string) string {
	return fmt.Sprintf("autoedit:%s:entity:%s", instanceName, entityID)
}
