// internal/river/interfaces.go
package river

// Interface names as advertised on wl_registry.
const (
	OutputInterface        = "wl_output"
	SeatInterface          = "wl_seat"
	ControlInterface       = "zriver_control_v1"
	StatusManagerInterface = "zriver_status_manager_v1"
)

// Highest versions this client understands.
const (
	ControlVersion       = 1
	StatusManagerVersion = 4
)

// ---- zriver_control_v1 ----

const (
	controlDestroy     uint16 = 0
	controlAddArgument uint16 = 1
	controlRunCommand  uint16 = 2
)

// ---- zriver_command_callback_v1 ----

const (
	commandEventSuccess uint16 = 0
	commandEventFailure uint16 = 1
)

// ---- zriver_status_manager_v1 ----

const (
	statusManagerDestroy         uint16 = 0
	statusManagerGetOutputStatus uint16 = 1
	statusManagerGetSeatStatus   uint16 = 2
)

// ---- zriver_output_status_v1 ----

const (
	outputStatusDestroy uint16 = 0

	outputStatusEventFocusedTags     uint16 = 0
	outputStatusEventViewTags        uint16 = 1
	outputStatusEventUrgentTags      uint16 = 2 // since 2
	outputStatusEventLayoutName      uint16 = 3 // since 4
	outputStatusEventLayoutNameClear uint16 = 4 // since 4
)

// ---- zriver_seat_status_v1 ----

const (
	seatStatusDestroy uint16 = 0

	seatStatusEventFocusedOutput   uint16 = 0
	seatStatusEventUnfocusedOutput uint16 = 1
	seatStatusEventFocusedView     uint16 = 2
	seatStatusEventMode            uint16 = 3 // since 3
)
