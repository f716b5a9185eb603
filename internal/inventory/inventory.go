// Package inventory loads the devices a console knows about at startup.
package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"coherence-console/internal/state"
)

// File is the on-disk layout of an inventory file:
//
//	devices:
//	  - usn: uuid:7a1c...::urn:schemas-upnp-org:device:MediaServer:1
//	    friendly_name: Living Room
//	    device_type: urn:schemas-upnp-org:device:MediaServer:1
//	    host: 192.168.1.20
type File struct {
	Devices []state.Device `yaml:"devices"`
}

// Load reads and validates the inventory at path.
func Load(path string) ([]state.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	return Parse(data)
}

// Parse decodes an inventory document. Every device needs a USN and USNs
// must be unique.
func Parse(data []byte) ([]state.Device, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}
	seen := make(map[string]bool, len(f.Devices))
	for i, d := range f.Devices {
		if d.USN == "" {
			return nil, fmt.Errorf("inventory device %d: usn is required", i)
		}
		if seen[d.USN] {
			return nil, fmt.Errorf("inventory device %d: duplicate usn %q", i, d.USN)
		}
		seen[d.USN] = true
	}
	return f.Devices, nil
}

// Seed loads path into s. An empty path is a no-op.
func Seed(s *state.AppState, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	devices, err := Load(path)
	if err != nil {
		return 0, err
	}
	for _, d := range devices {
		s.AddDevice(d)
	}
	return len(devices), nil
}
