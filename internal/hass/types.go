package hass

import "context"

// DomainConversation is the assistant domain entities are exposed to
const DomainConversation = "conversation"

// State is the current state of an entity
type State struct {
	EntityID string `json:"entity_id" yaml:"entity_id"`
	Name     string `json:"name" yaml:"name"`
	State    string `json:"state" yaml:"state"`
}

// EntityEntry is an entity registry record
type EntityEntry struct {
	EntityID string   `json:"entity_id" yaml:"entity_id"`
	DeviceID string   `json:"device_id,omitempty" yaml:"device_id,omitempty"`
	AreaID   string   `json:"area_id,omitempty" yaml:"area_id,omitempty"`
	Aliases  []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// DeviceEntry is a device registry record
type DeviceEntry struct {
	ID     string `json:"id" yaml:"id"`
	AreaID string `json:"area_id,omitempty" yaml:"area_id,omitempty"`
}

// Area is an area registry record
type Area struct {
	ID   string `json:"area_id" yaml:"area_id"`
	Name string `json:"name" yaml:"name"`
}

// Registry is the read-only view of host state the bridge needs.
// Lookups return nil without error when a record does not exist.
type Registry interface {
	// States returns all entity states in the host's enumeration order
	States(ctx context.Context) ([]State, error)

	// ShouldExpose reports whether the entity is exposed to the given assistant domain
	ShouldExpose(ctx context.Context, domain, entityID string) (bool, error)

	Entity(ctx context.Context, entityID string) (*EntityEntry, error)
	Device(ctx context.Context, deviceID string) (*DeviceEntry, error)
	Area(ctx context.Context, areaID string) (*Area, error)
}
