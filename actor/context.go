package actor

// Context is handed to Actor.Receive for exactly one message. It exposes
// the actor's own address, who sent the message, the message itself, and
// (for request/response exchanges started with Engine.Ask) a way to reply.
type Context interface {
	Self() *PID
	Sender() *PID
	Message() interface{}
	// RequestID is non-empty when the in-flight message originated from
	// Engine.Ask and is awaiting a Reply.
	RequestID() string
	Reply(message interface{})
}

type context struct {
	engine    *Engine
	self      *PID
	sender    *PID
	message   interface{}
	requestID string
}

func (c *context) Self() *PID           { return c.self }
func (c *context) Sender() *PID         { return c.sender }
func (c *context) Message() interface{} { return c.message }
func (c *context) RequestID() string    { return c.requestID }

func (c *context) Reply(message interface{}) {
	if c.requestID == "" {
		return
	}
	c.engine.reply(c.requestID, message)
}
