package actor

// Actor is the message handler every actor in the system implements.
type Actor interface {
	Receive(ctx Context)
}

// Producer constructs a fresh Actor instance. The engine calls it exactly
// once per Spawn.
type Producer func() Actor

// Props bundles a Producer so Spawn call sites don't need to know how an
// actor is constructed, only that it can be.
type Props struct {
	Produce Producer
}

// NewProps wraps a Producer in Props.
func NewProps(producer Producer) *Props {
	return &Props{Produce: producer}
}

// System messages delivered to every actor's Receive around its
// user-defined lifetime.
type Started struct{}
type Stopping struct{}
type Stopped struct{}

// ActorFunc adapts a plain function to the Actor interface, for actors
// with no state of their own.
type ActorFunc func(ctx Context)

func (f ActorFunc) Receive(ctx Context) { f(ctx) }
