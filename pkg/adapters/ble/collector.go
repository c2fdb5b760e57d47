package ble

import (
	"sort"

	"github.com/aretw0/provision/pkg/domain"
)

// sighting is one advertisement reduced to what the console reports.
type sighting struct {
	address string
	name    string
	rssi    int
	service string
}

// collector de-duplicates sightings by address, keeping the latest RSSI and
// the first non-empty name.
type collector struct {
	index map[string]int
	list  []domain.BleDevice
}

func (c *collector) add(s sighting) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[s.address]; ok {
		d := &c.list[i]
		d.RSSI = s.rssi
		if d.Name == "" {
			d.Name = s.name
		}
		return
	}
	c.index[s.address] = len(c.list)
	c.list = append(c.list, domain.BleDevice{
		Name:        s.name,
		Address:     s.address,
		RSSI:        s.rssi,
		ServiceUUID: s.service,
	})
}

// devices returns the collected list, strongest signal first.
func (c *collector) devices() []domain.BleDevice {
	out := append([]domain.BleDevice(nil), c.list...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RSSI > out[j].RSSI })
	return out
}
