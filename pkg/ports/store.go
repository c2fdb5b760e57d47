package ports

import (
	"context"

	"github.com/aretw0/provision/pkg/domain"
)

// StateStore defines the interface for persisting simulated device state.
type StateStore interface {
	// Save persists the state for a given device ID.
	Save(ctx context.Context, deviceID string, state *domain.DeviceState) error

	// Load retrieves the state for a given device ID.
	// Returns domain.ErrNotFound if the device has no stored state.
	Load(ctx context.Context, deviceID string) (*domain.DeviceState, error)

	// Delete removes the state for a given device ID.
	Delete(ctx context.Context, deviceID string) error

	// List returns the IDs of devices with stored state.
	List(ctx context.Context) ([]string, error)
}
