// internal/shift/subscription.go
package shift

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tamzrod/river-shifttags/internal/river"
	"github.com/tamzrod/river-shifttags/internal/tags"
	"github.com/tamzrod/river-shifttags/internal/wayland"
)

// Subscriptions follows the seat's focused output and keeps exactly one
// output status subscription, on the output that was focused last.
type Subscriptions struct {
	manager *river.StatusManager
	log     *slog.Logger

	onFocusedTags func(tags.Mask) error

	seat   *river.SeatStatus
	output *river.OutputStatus
}

func NewSubscriptions(manager *river.StatusManager, onFocusedTags func(tags.Mask) error, log *slog.Logger) *Subscriptions {
	if log == nil {
		log = slog.Default()
	}
	return &Subscriptions{
		manager:       manager,
		log:           log,
		onFocusedTags: onFocusedTags,
	}
}

// SubscribeSeat requests seat status events for seat.
// The focused output is announced on the next round-trip.
func (s *Subscriptions) SubscribeSeat(seat wayland.ObjectID) error {
	if s.seat != nil {
		return errors.New("seat status already subscribed")
	}
	st, err := s.manager.GetSeatStatus(seat, s.handleSeatEvent)
	if err != nil {
		return err
	}
	s.seat = st
	return nil
}

func (s *Subscriptions) handleSeatEvent(ev river.SeatStatusEvent) error {
	switch ev.Kind {
	case river.FocusedOutputChanged:
		return s.subscribeOutput(ev.Output)
	default:
		s.log.Debug("seat status event ignored", "event", ev.Kind)
		return nil
	}
}

func (s *Subscriptions) subscribeOutput(output wayland.ObjectID) error {
	if output == 0 {
		s.log.Debug("focused output is not bound by this client")
		return nil
	}

	if s.output != nil {
		if err := s.output.Destroy(); err != nil {
			return fmt.Errorf("release output status: %w", err)
		}
		s.output = nil
	}

	st, err := s.manager.GetOutputStatus(output, s.handleOutputEvent)
	if err != nil {
		return err
	}
	s.output = st

	s.log.Debug("subscribed to output status", "output", output)
	return nil
}

func (s *Subscriptions) handleOutputEvent(ev river.OutputStatusEvent) error {
	switch ev.Kind {
	case river.FocusedTagsChanged:
		return s.onFocusedTags(tags.Mask(ev.Tags))
	default:
		s.log.Debug("output status event ignored", "event", ev.Kind)
		return nil
	}
}

// Close ends both subscriptions.
func (s *Subscriptions) Close() error {
	var errs []error
	if s.output != nil {
		errs = append(errs, s.output.Destroy())
		s.output = nil
	}
	if s.seat != nil {
		errs = append(errs, s.seat.Destroy())
		s.seat = nil
	}
	return errors.Join(errs...)
}
