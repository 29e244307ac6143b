// internal/shift/session.go
package shift

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tamzrod/river-shifttags/internal/tags"
	"github.com/tamzrod/river-shifttags/internal/wayland"
)

// Options is the validated input of one invocation.
type Options struct {
	TagCount  int
	Mode      tags.Mode
	Direction tags.Direction

	// Stdout receives the new mask in focus mode.
	Stdout io.Writer
	Logger *slog.Logger
}

// Session owns everything one invocation creates: bound globals,
// subscriptions and the one-shot trigger.
type Session struct {
	client *wayland.Client
	opts   Options
	log    *slog.Logger

	handles   *Handles
	subs      *Subscriptions
	trigger   *Trigger
	commander Commander

	pending *Plan
}

func NewSession(client *wayland.Client, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	return &Session{
		client:  client,
		opts:    opts,
		log:     log,
		trigger: NewTrigger(opts.TagCount, opts.Mode, opts.Direction),
	}
}

// Run performs one rotation against client.
func Run(ctx context.Context, client *wayland.Client, opts Options) error {
	return NewSession(client, opts).Run(ctx)
}

// Run binds, subscribes, waits for the focused tags, applies the rotation
// and releases its objects. It blocks until the compositor reports the
// focused tags or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	switch s.opts.Mode {
	case tags.Focus, tags.Window:
	default:
		return fmt.Errorf("unknown mode %s", s.opts.Mode)
	}

	h, err := BindGlobals(ctx, s.client)
	if err != nil {
		return err
	}
	s.handles = h
	if s.commander == nil {
		s.commander = NewCommandEncoder(h.Control, h.Seat, s.log)
	}

	s.subs = NewSubscriptions(h.StatusManager, s.onFocusedTags, s.log)
	if err := s.subs.SubscribeSeat(h.Seat.ID()); err != nil {
		return err
	}

	// First round-trip delivers focused_output, whose handler requests the
	// output status; the second makes sure that request was processed.
	if err := s.client.Roundtrip(ctx); err != nil {
		return fmt.Errorf("seat status roundtrip: %w", err)
	}
	if err := s.client.Roundtrip(ctx); err != nil {
		return fmt.Errorf("output status roundtrip: %w", err)
	}

	for s.pending == nil {
		if err := s.client.Dispatch(ctx); err != nil {
			return fmt.Errorf("wait for focused tags: %w", err)
		}
	}

	if err := s.execute(ctx, *s.pending); err != nil {
		return err
	}

	return s.release()
}

// onFocusedTags is the rotation trigger's event entry point.
func (s *Session) onFocusedTags(mask tags.Mask) error {
	plan, ok := s.trigger.Fire(mask)
	if !ok {
		s.log.Debug("focused tags ignored, rotation already fired", "tags", mask)
		return nil
	}

	s.log.Debug("rotating tags", "from", mask, "to", plan.Mask, "mode", s.opts.Mode, "direction", s.opts.Direction)
	s.pending = &plan
	return nil
}

func (s *Session) execute(ctx context.Context, plan Plan) error {
	if plan.Print {
		if _, err := fmt.Fprintf(s.opts.Stdout, "%d\n", uint32(plan.Mask)); err != nil {
			return fmt.Errorf("write mask: %w", err)
		}
	}

	for _, cmd := range plan.Commands {
		if err := s.commander.Run(ctx, cmd.Name, cmd.Args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) release() error {
	return errors.Join(
		s.subs.Close(),
		s.handles.StatusManager.Destroy(),
		s.handles.Control.Destroy(),
	)
}
