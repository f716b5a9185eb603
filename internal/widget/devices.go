package widget

import (
	"context"

	"github.com/google/uuid"

	"coherence-console/internal/dom"
	"coherence-console/internal/state"
	"coherence-console/internal/tabs"
)

// DevicesTab is the title of the device list tab.
const DevicesTab = "Devices"

// DeviceClass marks device rows.
const DeviceClass = "coherence_device"

// DeviceElementID returns the id of the row showing the device with the
// given USN. The prefix keeps a USN from colliding with page elements.
func DeviceElementID(usn string) string { return "device-" + usn }

// Devices lists the UPnP devices the media server knows about.
type Devices struct {
	page     *Page
	athenaID string
	listed   bool
	failed   bool
	backlog  []state.Event
	shown    map[string]bool
}

func newDevices(p *Page) *Devices {
	return &Devices{page: p, athenaID: "athenaid:" + uuid.NewString(), shown: make(map[string]bool)}
}

func (d *Devices) panel() string { return tabs.PanelID(DevicesTab) }

func (d *Devices) goLive(ctx context.Context) {
	d.page.menu.AddTab(tabs.Record{Title: DevicesTab, Active: d.page.opts.DevicesActive, AthenaID: d.athenaID})
	callRemote(ctx, d.page, DevicesTab, d.page.backend.Devices, d.list)
}

func (d *Devices) list(devices []state.Device) {
	d.page.logger.Debug("List devices", "count", len(devices))
	for _, dev := range devices {
		d.add(dev)
	}
	d.listed = true
	backlog := d.backlog
	d.backlog = nil
	for _, ev := range backlog {
		d.handle(ev)
	}
}

// handle applies a device event. Events arriving before the initial list
// are held back and replayed after it.
func (d *Devices) handle(ev state.Event) {
	if d.failed {
		return
	}
	if !d.listed {
		d.backlog = append(d.backlog, ev)
		return
	}
	switch ev.Kind {
	case state.DeviceAdded:
		if ev.Device != nil {
			d.add(*ev.Device)
		}
	case state.DeviceRemoved:
		d.remove(ev.USN)
	}
}

// abandon stops the widget after its list call failed. It stays empty.
func (d *Devices) abandon() {
	d.failed = true
	d.backlog = nil
}

func (d *Devices) add(dev state.Device) {
	id := DeviceElementID(dev.USN)
	if d.shown[dev.USN] {
		d.page.surface.Remove(id)
	}
	d.page.surface.Append(d.panel(), dom.Element{ID: id, Class: DeviceClass, Text: dev.MarkupName()})
	d.shown[dev.USN] = true
}

func (d *Devices) remove(usn string) {
	if !d.shown[usn] {
		return
	}
	d.page.logger.Debug("Remove device", "usn", usn)
	d.page.surface.Remove(DeviceElementID(usn))
	delete(d.shown, usn)
}
