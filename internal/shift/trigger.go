// internal/shift/trigger.go
package shift

import (
	"github.com/tamzrod/river-shifttags/internal/tags"
)

// Command is one river command with its arguments.
type Command struct {
	Name string
	Args []string
}

// Plan is what a rotation asks the session to do, in order.
type Plan struct {
	Mask tags.Mask
	// Print means Mask goes to stdout before the commands run.
	Print    bool
	Commands []Command
}

// Trigger turns the first focused-tags report into a Plan.
// It fires at most once; the latch is never reset.
type Trigger struct {
	count int
	mode  tags.Mode
	dir   tags.Direction
	fired bool
}

func NewTrigger(count int, mode tags.Mode, dir tags.Direction) *Trigger {
	return &Trigger{count: count, mode: mode, dir: dir}
}

// Fired reports whether the trigger has produced its plan.
func (t *Trigger) Fired() bool { return t.fired }

// Fire rotates mask and returns the plan, or false if it already fired.
// An unknown mode yields a plan with nothing to do.
func (t *Trigger) Fire(mask tags.Mask) (Plan, bool) {
	if t.fired {
		return Plan{}, false
	}
	t.fired = true

	next := tags.Rotate(mask, t.count, t.dir)
	arg := next.String()

	plan := Plan{Mask: next}

	switch t.mode {
	case tags.Window:
		plan.Commands = []Command{
			{Name: tags.CommandSetViewTags, Args: []string{arg}},
			{Name: tags.CommandSetFocusedTags, Args: []string{arg}},
		}
	case tags.Focus:
		plan.Print = true
		plan.Commands = []Command{
			{Name: tags.CommandSetFocusedTags, Args: []string{arg}},
		}
	}

	return plan, true
}
