// Package exposure collects the entities a user has exposed to conversation agents.
package exposure

import (
	"context"
	"fmt"

	"github.com/avvvet/n8n-conversation/internal/hass"
	"github.com/avvvet/n8n-conversation/internal/models"
)

// Collector builds the exposed entity list from the host registries
type Collector struct {
	registry hass.Registry
	domain   string
}

// NewCollector creates a collector for entities exposed to the conversation domain
func NewCollector(registry hass.Registry) *Collector {
	return &Collector{
		registry: registry,
		domain:   hass.DomainConversation,
	}
}

// Collect returns one record per exposed state, in the registry's state order.
// Missing registry records produce empty aliases and a null area.
func (c *Collector) Collect(ctx context.Context) ([]models.ExposedEntity, error) {
	states, err := c.registry.States(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	exposed := make([]models.ExposedEntity, 0, len(states))
	for _, state := range states {
		ok, err := c.registry.ShouldExpose(ctx, c.domain, state.EntityID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		entity, err := c.describe(ctx, state)
		if err != nil {
			return nil, err
		}
		exposed = append(exposed, entity)
	}

	return exposed, nil
}

func (c *Collector) describe(ctx context.Context, state hass.State) (models.ExposedEntity, error) {
	entity := models.ExposedEntity{
		EntityID: state.EntityID,
		Name:     state.Name,
		State:    state.State,
		Aliases:  []string{},
	}

	entry, err := c.registry.Entity(ctx, state.EntityID)
	if err != nil {
		return entity, err
	}
	if entry == nil {
		return entity, nil
	}

	if len(entry.Aliases) > 0 {
		entity.Aliases = entry.Aliases
	}

	areaID := entry.AreaID
	if areaID == "" && entry.DeviceID != "" {
		device, err := c.registry.Device(ctx, entry.DeviceID)
		if err != nil {
			return entity, err
		}
		if device != nil {
			areaID = device.AreaID
		}
	}
	if areaID == "" {
		return entity, nil
	}

	entity.AreaID = &areaID
	area, err := c.registry.Area(ctx, areaID)
	if err != nil {
		return entity, err
	}
	if area != nil {
		name := area.Name
		entity.AreaName = &name
	}

	return entity, nil
}
