package console_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/provision/pkg/domain"
	"github.com/aretw0/provision/pkg/ports"
	"github.com/stretchr/testify/mock"
)

var _ ports.Device = (*MockDevice)(nil)

// MockDevice records collaborator calls.
type MockDevice struct {
	mock.Mock
}

func (m *MockDevice) WifiStatus(ctx context.Context) (domain.WifiStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.WifiStatus), args.Error(1)
}

func (m *MockDevice) ScanWifi(ctx context.Context) ([]domain.WifiNetwork, error) {
	args := m.Called(ctx)
	networks, _ := args.Get(0).([]domain.WifiNetwork)
	return networks, args.Error(1)
}

func (m *MockDevice) SetWifiCredentials(ctx context.Context, ssid, password string) (domain.WifiStatus, error) {
	args := m.Called(ctx, ssid, password)
	return args.Get(0).(domain.WifiStatus), args.Error(1)
}

func (m *MockDevice) ClearWifiCredentials(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDevice) BleStatus(ctx context.Context) (domain.BleConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.BleConfig), args.Error(1)
}

func (m *MockDevice) ScanBle(ctx context.Context) ([]domain.BleDevice, error) {
	args := m.Called(ctx)
	devices, _ := args.Get(0).([]domain.BleDevice)
	return devices, args.Error(1)
}

func (m *MockDevice) SetBleField(ctx context.Context, field domain.BleField, value string) error {
	return m.Called(ctx, field, value).Error(0)
}

func (m *MockDevice) ScanI2C(ctx context.Context) ([]uint16, error) {
	args := m.Called(ctx)
	addrs, _ := args.Get(0).([]uint16)
	return addrs, args.Error(1)
}

// waitingBle blocks BLE scans until their context ends.
type waitingBle struct {
	*MockDevice
}

func (w waitingBle) ScanBle(ctx context.Context) ([]domain.BleDevice, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// drainCtx bounds Drain in tests.
func drainCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}
