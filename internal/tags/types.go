// internal/tags/types.go
package tags

import (
	"fmt"
	"strconv"
)

// Mask is a tag bitfield: bit i set means tag i is active.
type Mask uint32

// String renders the mask the way river's command parser expects it.
func (m Mask) String() string {
	return strconv.FormatUint(uint64(m), 10)
}

// Full returns the mask with all n tags set.
func Full(n int) Mask {
	if n >= MaxCount {
		return ^Mask(0)
	}
	return Mask(1)<<uint(n) - 1
}

// Direction is the rotation sense.
type Direction int

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection maps a CLI token to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return 0, false
}

// Mode selects what a rotation is applied to.
type Mode int

const (
	// Focus rotates the focused tags of the output only.
	Focus Mode = iota
	// Window rotates the focused view's tags and then follows it.
	Window
)

func (m Mode) String() string {
	switch m {
	case Focus:
		return "focus"
	case Window:
		return "window"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a CLI token to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "focus":
		return Focus, true
	case "window":
		return Window, true
	}
	return 0, false
}
