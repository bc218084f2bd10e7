//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one connection's inbox for fanned-out events. Consume
// must not block the caller: a sink that cannot accept the event
// returns a DeliveryError and is disconnected by the dispatcher.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	Register(identity domain.UserIdentity, sink EventSink) string
	Unregister(token string)
	Session(token string) (domain.UserIdentity, EventSink, bool)
	SinksForUser(userID string) []EventSink
	OnUnregister(fn func(token string))
}

type IMembership interface {
	Join(token string, channel domain.Channel) error
	Leave(token string, channel domain.Channel)
	Subscribers(channel domain.Channel) []Subscriber
	DropSession(token string)
}

// Subscriber pairs a live sink with the identity it was registered
// under, so the dispatcher can re-check group membership at delivery
// time without going back to the registry.
type Subscriber struct {
	Token  string
	UserID string
	Sink   EventSink
}

type IDispatcher interface {
	Dispatch(ctx context.Context, msg domain.Message)
}

// IIngest is the single send entry point of the routing core. Typed
// sends and the upload bridge both go through it; there is no path
// around validation, persistence and dispatch.
type IIngest interface {
	Send(ctx context.Context, cmd domain.SendCommand) (domain.Message, error)
}
