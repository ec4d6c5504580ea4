package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event types emitted by the core.
const (
	EventActivityCreated = "activity.created"
	EventUserInvited     = "user.invited"
)

// Event is a post-commit message handed to the dispatcher. It carries only
// identifiers and display fields; consumers load anything else themselves.
type Event struct {
	Type      string    `json:"type"`
	ActorID   uuid.UUID `json:"actorId"`
	SubjectID uuid.UUID `json:"subjectId"`
	Title     string    `json:"title"`
	Recipient string    `json:"recipient,omitempty"`
	Token     string    `json:"token,omitempty"`
}

// Dispatcher consumes events emitted after a successful commit. Delivery is
// best effort: a failing dispatcher must never fail the originating request.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event)
}

// LogDispatcher records events in the server log. It stands in for the
// external notification sender (email, chat) in development and tests.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(_ context.Context, ev Event) {
	log.Info().
		Str("event", ev.Type).
		Str("actor_id", ev.ActorID.String()).
		Str("subject_id", ev.SubjectID.String()).
		Str("title", ev.Title).
		Msg("Notification dispatched")
}

// Async wraps a dispatcher so dispatch happens off the request goroutine.
// The wrapped dispatcher's panics are contained.
type Async struct {
	Next Dispatcher
}

func (a Async) Dispatch(ctx context.Context, ev Event) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("event", ev.Type).Msg("Notification dispatcher panicked")
			}
		}()
		a.Next.Dispatch(context.WithoutCancel(ctx), ev)
	}()
}
