package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"coherence-console/internal/state"
)

const sample = `
devices:
  - usn: uuid:1::urn:schemas-upnp-org:device:MediaServer:1
    friendly_name: Living Room
    device_type: urn:schemas-upnp-org:device:MediaServer:1
    host: 192.168.1.20
  - usn: uuid:2::urn:schemas-upnp-org:device:MediaRenderer:1
    friendly_name: Kitchen
    device_type: urn:schemas-upnp-org:device:MediaRenderer:1
`

func TestParse(t *testing.T) {
	devices, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, devices, 2)
	require.Equal(t, "Living Room", devices[0].FriendlyName)
	require.Equal(t, "192.168.1.20", devices[0].Host)
	require.Equal(t, "MediaRenderer:1 Kitchen", devices[1].MarkupName())
}

func TestParseRejectsBadDevices(t *testing.T) {
	_, err := Parse([]byte("devices:\n  - friendly_name: nameless\n"))
	require.ErrorContains(t, err, "usn is required")

	_, err = Parse([]byte("devices:\n  - usn: a\n  - usn: a\n"))
	require.ErrorContains(t, err, "duplicate usn")

	_, err = Parse([]byte("devices: [unclosed"))
	require.Error(t, err)
}

func TestSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	s := state.New(10)
	n, err := Seed(s, path)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, s.Devices(), 2)

	n, err = Seed(s, "")
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = Seed(s, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
