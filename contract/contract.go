//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"wa-gateway/domain"
	"wa-gateway/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
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

// EventSink receives lifecycle events in publication order.
// Consume must return once ctx is done.
type EventSink interface {
	Consume(ctx context.Context, e event.LifecycleEvent) error
}

// IRegistry tracks the observers attached to the session, keyed by connection handle.
type IRegistry interface {
	Subscribe(handle string, sink EventSink)
	Unsubscribe(handle string) (EventSink, bool)
	Sinks() map[string]EventSink
}

// IBridge is the observer facing side of the lifecycle bridge.
type IBridge interface {
	Attach(ctx context.Context, handle string, sink EventSink)
	Detach(handle string)
}

// ISession is a read only view of the session state.
type ISession interface {
	State() domain.SessionState
	Info() *domain.SessionInfo
}

// Engine is the chat protocol client the gateway drives.
// Signals and Incoming stay open for the lifetime of the engine.
type Engine interface {
	Initialize(ctx context.Context) error
	Destroy(ctx context.Context) error
	Signals() <-chan domain.EngineSignal
	Incoming() <-chan domain.IncomingMessage
	IsRegisteredUser(ctx context.Context, id domain.AddressableID) (bool, error)
	SendMessage(ctx context.Context, to domain.AddressableID, content domain.Content) (domain.SentMessage, error)
	GetChatByID(ctx context.Context, id domain.AddressableID) (domain.Chat, error)
	GetChats(ctx context.Context) ([]domain.Chat, error)
	AddParticipants(ctx context.Context, group domain.AddressableID, participants []domain.AddressableID, comment string) error
	ClearMessages(ctx context.Context, chat domain.AddressableID) (bool, error)
}

// ChallengeRenderer turns a raw pairing challenge into something a human can scan.
type ChallengeRenderer interface {
	Render(challenge string) (string, error)
}

// SignalHandler reacts to one engine lifecycle signal.
type SignalHandler interface {
	Handle(ctx context.Context, sig domain.EngineSignal) error
}

type IncomingHandler interface {
	Handle(ctx context.Context, msg domain.IncomingMessage) error
}

type IDispatcher interface {
	Status() domain.Status
	CheckRegistered(ctx context.Context, rawNumber string) (domain.AddressableID, error)
	SendText(ctx context.Context, rawNumber, text string) (domain.SentMessage, error)
	SendMedia(ctx context.Context, rawNumber string, upload domain.Upload, caption string) (domain.SentMessage, error)
	SendToGroup(ctx context.Context, groupID, groupName, text string) (domain.SentMessage, error)
	AddToGroup(ctx context.Context, rawNumber, groupID string) error
	ClearChat(ctx context.Context, rawNumber string) (bool, error)
	ListGroups(ctx context.Context) ([]domain.Chat, error)
}
