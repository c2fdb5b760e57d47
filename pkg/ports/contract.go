package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/provision/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	deviceID := "contract-device-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := &domain.DeviceState{
			ID:          deviceID,
			Credentials: domain.Credentials{SSID: "home", Password: "secret"},
			Ble:         domain.DefaultBleConfig("C0FFEE"),
		}

		err := store.Save(ctx, deviceID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, deviceID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "home", loaded.Credentials.SSID)
		assert.Equal(t, "secret", loaded.Credentials.Password)
		assert.Equal(t, state.Ble.Chars, loaded.Ble.Chars)
	})

	t.Run("Load Isolation", func(t *testing.T) {
		loaded, err := store.Load(ctx, deviceID)
		require.NoError(t, err)
		loaded.Credentials.SSID = "mutated"
		loaded.Ble.Chars[0].UUID = "mutated"

		again, err := store.Load(ctx, deviceID)
		require.NoError(t, err)
		assert.Equal(t, "home", again.Credentials.SSID)
		assert.NotEqual(t, "mutated", again.Ble.Chars[0].UUID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+deviceID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, deviceID, &domain.DeviceState{ID: deviceID})
		require.NoError(t, err)

		err = store.Delete(ctx, deviceID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, deviceID)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Load after Delete should return ErrNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := deviceID + "-1"
		id2 := deviceID + "-2"
		_ = store.Save(ctx, id1, &domain.DeviceState{ID: id1})
		_ = store.Save(ctx, id2, &domain.DeviceState{ID: id2})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
