// internal/river/status.go
package river

import (
	"fmt"

	"github.com/tamzrod/river-shifttags/internal/wayland"
)

// StatusManager is a bound zriver_status_manager_v1.
type StatusManager struct {
	*wayland.Proxy
}

// NewStatusManager wraps a proxy bound to StatusManagerInterface.
func NewStatusManager(p *wayland.Proxy) *StatusManager {
	return &StatusManager{Proxy: p}
}

// GetOutputStatus subscribes to the status of output.
func (m *StatusManager) GetOutputStatus(output wayland.ObjectID, h func(OutputStatusEvent) error) (*OutputStatus, error) {
	s := &OutputStatus{handler: h}
	s.Proxy = m.Client().NewProxy("zriver_output_status_v1", s)

	var e wayland.Encoder
	e.NewID(s.ID())
	e.Object(output)
	if err := m.Request(statusManagerGetOutputStatus, &e); err != nil {
		return nil, fmt.Errorf("river status: get_river_output_status: %w", err)
	}
	return s, nil
}

// GetSeatStatus subscribes to the status of seat.
func (m *StatusManager) GetSeatStatus(seat wayland.ObjectID, h func(SeatStatusEvent) error) (*SeatStatus, error) {
	s := &SeatStatus{handler: h}
	s.Proxy = m.Client().NewProxy("zriver_seat_status_v1", s)

	var e wayland.Encoder
	e.NewID(s.ID())
	e.Object(seat)
	if err := m.Request(statusManagerGetSeatStatus, &e); err != nil {
		return nil, fmt.Errorf("river status: get_river_seat_status: %w", err)
	}
	return s, nil
}

// Destroy releases the manager. Existing subscriptions stay valid.
func (m *StatusManager) Destroy() error {
	return m.Proxy.Destroy(statusManagerDestroy)
}

// ---- OUTPUT STATUS ----

// OutputStatusEventKind tags an OutputStatusEvent.
type OutputStatusEventKind int

const (
	FocusedTagsChanged OutputStatusEventKind = iota
	ViewTagsChanged
	UrgentTagsChanged
	LayoutNameSet
	LayoutNameCleared
)

func (k OutputStatusEventKind) String() string {
	switch k {
	case FocusedTagsChanged:
		return "focused_tags"
	case ViewTagsChanged:
		return "view_tags"
	case UrgentTagsChanged:
		return "urgent_tags"
	case LayoutNameSet:
		return "layout_name"
	case LayoutNameCleared:
		return "layout_name_clear"
	default:
		return fmt.Sprintf("output_status_event(%d)", int(k))
	}
}

// OutputStatusEvent is one decoded zriver_output_status_v1 event.
// Only the fields of its Kind are set.
type OutputStatusEvent struct {
	Kind OutputStatusEventKind

	// Tags is the mask of FocusedTagsChanged and UrgentTagsChanged.
	Tags uint32
	// ViewTags holds one mask per view for ViewTagsChanged.
	ViewTags []uint32
	// LayoutName is set for LayoutNameSet.
	LayoutName string
}

// OutputStatus is a live zriver_output_status_v1 subscription.
type OutputStatus struct {
	*wayland.Proxy
	handler func(OutputStatusEvent) error
}

// Destroy ends the subscription.
func (s *OutputStatus) Destroy() error {
	return s.Proxy.Destroy(outputStatusDestroy)
}

func (s *OutputStatus) HandleEvent(opcode uint16, d *wayland.Decoder) error {
	var ev OutputStatusEvent

	switch opcode {
	case outputStatusEventFocusedTags:
		ev.Kind = FocusedTagsChanged
		ev.Tags = d.Uint()
	case outputStatusEventViewTags:
		ev.Kind = ViewTagsChanged
		ev.ViewTags = d.Uint32Array()
	case outputStatusEventUrgentTags:
		ev.Kind = UrgentTagsChanged
		ev.Tags = d.Uint()
	case outputStatusEventLayoutName:
		ev.Kind = LayoutNameSet
		ev.LayoutName = d.String()
	case outputStatusEventLayoutNameClear:
		ev.Kind = LayoutNameCleared
	default:
		return nil
	}

	if err := d.Err(); err != nil {
		return fmt.Errorf("river output status: %s: %w", ev.Kind, err)
	}
	if s.handler == nil {
		return nil
	}
	return s.handler(ev)
}

// ---- SEAT STATUS ----

// SeatStatusEventKind tags a SeatStatusEvent.
type SeatStatusEventKind int

const (
	FocusedOutputChanged SeatStatusEventKind = iota
	OutputUnfocused
	FocusedViewChanged
	ModeChanged
)

func (k SeatStatusEventKind) String() string {
	switch k {
	case FocusedOutputChanged:
		return "focused_output"
	case OutputUnfocused:
		return "unfocused_output"
	case FocusedViewChanged:
		return "focused_view"
	case ModeChanged:
		return "mode"
	default:
		return fmt.Sprintf("seat_status_event(%d)", int(k))
	}
}

// SeatStatusEvent is one decoded zriver_seat_status_v1 event.
type SeatStatusEvent struct {
	Kind SeatStatusEventKind

	// Output is set for FocusedOutputChanged and OutputUnfocused.
	Output wayland.ObjectID
	// View is the focused view title for FocusedViewChanged.
	View string
	// Mode is the new mode name for ModeChanged.
	Mode string
}

// SeatStatus is a live zriver_seat_status_v1 subscription.
type SeatStatus struct {
	*wayland.Proxy
	handler func(SeatStatusEvent) error
}

// Destroy ends the subscription.
func (s *SeatStatus) Destroy() error {
	return s.Proxy.Destroy(seatStatusDestroy)
}

func (s *SeatStatus) HandleEvent(opcode uint16, d *wayland.Decoder) error {
	var ev SeatStatusEvent

	switch opcode {
	case seatStatusEventFocusedOutput:
		ev.Kind = FocusedOutputChanged
		ev.Output = d.Object()
	case seatStatusEventUnfocusedOutput:
		ev.Kind = OutputUnfocused
		ev.Output = d.Object()
	case seatStatusEventFocusedView:
		ev.Kind = FocusedViewChanged
		ev.View = d.String()
	case seatStatusEventMode:
		ev.Kind = ModeChanged
		ev.Mode = d.String()
	default:
		return nil
	}

	if err := d.Err(); err != nil {
		return fmt.Errorf("river seat status: %s: %w", ev.Kind, err)
	}
	if s.handler == nil {
		return nil
	}
	return s.handler(ev)
}
