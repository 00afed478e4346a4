package hass

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Snapshot is an in-memory Registry, loaded from a YAML file or built in code
type Snapshot struct {
	StateList []State                `yaml:"states"`
	Exposed   map[string][]string    `yaml:"exposed"` // domain -> entity ids
	Entities  map[string]EntityEntry `yaml:"entities"`
	Devices   map[string]DeviceEntry `yaml:"devices"`
	Areas     map[string]Area        `yaml:"areas"`
}

var _ Registry = (*Snapshot)(nil)

// LoadSnapshot reads a registry snapshot from a YAML file
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}

func (s *Snapshot) States(_ context.Context) ([]State, error) {
	return s.StateList, nil
}

func (s *Snapshot) ShouldExpose(_ context.Context, domain, entityID string) (bool, error) {
	for _, id := range s.Exposed[domain] {
		if id == entityID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Snapshot) Entity(_ context.Context, entityID string) (*EntityEntry, error) {
	entry, ok := s.Entities[entityID]
	if !ok {
		return nil, nil
	}
	if entry.EntityID == "" {
		entry.EntityID = entityID
	}
	return &entry, nil
}

func (s *Snapshot) Device(_ context.Context, deviceID string) (*DeviceEntry, error) {
	entry, ok := s.Devices[deviceID]
	if !ok {
		return nil, nil
	}
	if entry.ID == "" {
		entry.ID = deviceID
	}
	return &entry, nil
}

func (s *Snapshot) Area(_ context.Context, areaID string) (*Area, error) {
	area, ok := s.Areas[areaID]
	if !ok {
		return nil, nil
	}
	if area.ID == "" {
		area.ID = areaID
	}
	return &area, nil
}
