package domain

import "context"

// ArgumentSpec describes one positional argument of a registered command.
// Insertion order in the registration slice is significant: tokens bind to
// specs in order.
type ArgumentSpec struct {
	Name     string
	Required bool
}

// RequiredArg is a convenience constructor for a required ArgumentSpec.
func RequiredArg(name string) ArgumentSpec { return ArgumentSpec{Name: name, Required: true} }

// OptionalArg is a convenience constructor for an optional ArgumentSpec.
func OptionalArg(name string) ArgumentSpec { return ArgumentSpec{Name: name, Required: false} }

// ArgBinding maps an argument name to the token it consumed.
type ArgBinding struct {
	Name  string
	Value string
}

// ParsedCommand is the result of a successful parse: the matched keyword,
// its bound arguments partitioned by the Required flag (order preserved),
// and the handler to invoke. Constructed per inbound message and discarded
// after dispatch.
type ParsedCommand struct {
	Command  string
	Required []ArgBinding
	Optional []ArgBinding
	Handler  Handler
}

// Messenger is the REST surface a command handler uses to reply. The full
// client implements it; tests substitute a fake.
type Messenger interface {
	SendMessage(ctx context.Context, out *MessageOut) (*Message, error)
	GetMessage(ctx context.Context, id string) (*Message, error)
}

// Handler processes one matched command. Handlers run as independent
// goroutines: the dispatch loop does not await completion, so a handler must
// not assume mutual exclusion with other in-flight handlers.
type Handler interface {
	Handle(ctx context.Context, client Messenger, msg Message, required, optional []ArgBinding)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, client Messenger, msg Message, required, optional []ArgBinding)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, client Messenger, msg Message, required, optional []ArgBinding) {
	f(ctx, client, msg, required, optional)
}
