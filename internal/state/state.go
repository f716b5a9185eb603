package state

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Device holds information about a UPnP device known to the media server.
type Device struct {
	USN          string `json:"usn" yaml:"usn"`
	FriendlyName string `json:"friendlyName" yaml:"friendly_name"`
	DeviceType   string `json:"deviceType" yaml:"device_type"`
	Host         string `json:"host,omitempty" yaml:"host"`
}

// FriendlyType returns the short type name, e.g. "MediaServer" for
// urn:schemas-upnp-org:device:MediaServer:1.
func (d Device) FriendlyType() string {
	parts := strings.Split(d.DeviceType, ":")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return d.DeviceType
}

// TypeVersion returns the trailing version of the device type.
func (d Device) TypeVersion() string {
	parts := strings.Split(d.DeviceType, ":")
	if len(parts) >= 2 {
		return parts[len(parts)-1]
	}
	return ""
}

// MarkupName is the label shown in the device list.
func (d Device) MarkupName() string {
	if d.DeviceType == "" {
		return d.FriendlyName
	}
	return fmt.Sprintf("%s:%s %s", d.FriendlyType(), d.TypeVersion(), d.FriendlyName)
}

// LogEntry holds a single log entry.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Label     string    `json:"label"`
	Message   string    `json:"message"`
}

// EventKind identifies a state mutation.
type EventKind string

const (
	DeviceAdded   EventKind = "device_added"
	DeviceRemoved EventKind = "device_removed"
	LogAppended   EventKind = "log_appended"
)

// Event describes a single mutation delivered to subscribers.
type Event struct {
	Kind   EventKind `json:"kind"`
	Device *Device   `json:"device,omitempty"`
	USN    string    `json:"usn,omitempty"`
	Log    *LogEntry `json:"log,omitempty"`
}

// subscriberBuffer bounds the events queued for one subscriber.
const subscriberBuffer = 64

// AppState holds the devices and logs shared by every console page.
type AppState struct {
	mu      sync.RWMutex
	devices []Device
	logs    []LogEntry
	maxLogs int
	subs    map[int]chan Event
	nextSub int
}

// New creates a new AppState with a max log buffer size.
func New(maxLogs int) *AppState {
	if maxLogs <= 0 {
		maxLogs = 500
	}
	return &AppState{
		maxLogs: maxLogs,
		devices: []Device{},
		logs:    []LogEntry{},
		subs:    make(map[int]chan Event),
	}
}

// publish fans ev out to subscribers without blocking; a subscriber whose
// buffer is full misses the event. Must be called while holding mu.
func (s *AppState) publish(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a channel receiving every subsequent mutation and a
// cancel func that closes it.
func (s *AppState) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, subscriberBuffer)
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

// AddDevice registers d. A device with the same USN is replaced in place
// and reported as added again so listeners refresh its label.
func (s *AppState) AddDevice(d Device) {
	s.mu.Lock()
	replaced := false
	for i := range s.devices {
		if s.devices[i].USN == d.USN {
			s.devices[i] = d
			replaced = true
			break
		}
	}
	if !replaced {
		s.devices = append(s.devices, d)
	}
	dev := d
	s.publish(Event{Kind: DeviceAdded, Device: &dev})
	s.mu.Unlock()
}

// RemoveDevice drops the device with the given USN. It reports whether the
// device was known.
func (s *AppState) RemoveDevice(usn string) bool {
	s.mu.Lock()
	for i := range s.devices {
		if s.devices[i].USN == usn {
			s.devices = append(s.devices[:i:i], s.devices[i+1:]...)
			s.publish(Event{Kind: DeviceRemoved, USN: usn})
			s.mu.Unlock()
					return true
		}
	}
	s.mu.Unlock()
	return false
}

// Devices returns a copy of the device list in registration order.
func (s *AppState) Devices() []Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Device, len(s.devices))
	copy(out, s.devices)
	return out
}

// AddLog appends a log entry, trimming old entries if needed.
func (s *AppState) AddLog(level, label, message string) {
	s.mu.Lock()
	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Label:     label,
		Message:   message,
	}
	s.logs = append(s.logs, entry)
	if len(s.logs) > s.maxLogs {
		s.logs = s.logs[len(s.logs)-s.maxLogs:]
	}
	s.publish(Event{Kind: LogAppended, Log: &entry})
	s.mu.Unlock()
}

// Logs returns a copy of the buffered log entries, oldest first.
func (s *AppState) Logs() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

// MaxLogs returns the size of the log buffer. It is also the default size
// of the log panel of a web page.
func (s *AppState) MaxLogs() int {
	return s.maxLogs
}
