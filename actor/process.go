package actor

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

const defaultMailboxSize = 1024

// messageEnvelope is what actually travels through a process's mailbox
// channel; it carries routing metadata the Actor implementation never
// sees directly (that's Context's job).
type messageEnvelope struct {
	Sender    *PID
	Message   interface{}
	RequestID string
}

// process is the running instance of an actor: its state, mailbox, and
// goroutine. One process per Spawn; the goroutine is the only thing that
// ever touches the actor's state, which is what makes every actor's
// Receive implicitly single-threaded.
type process struct {
	engine  *Engine
	pid     *PID
	actor   Actor
	mailbox chan *messageEnvelope
	props   *Props
	stopCh  chan struct{}
	stopped bool
	log     *logrus.Entry
}

func newProcess(engine *Engine, pid *PID, props *Props) *process {
	return &process{
		engine:  engine,
		pid:     pid,
		props:   props,
		mailbox: make(chan *messageEnvelope, defaultMailboxSize),
		stopCh:  make(chan struct{}),
		log:     logrus.WithField("pid", pid.ID),
	}
}

func (p *process) sendMessage(message interface{}, sender *PID, requestID string) {
	envelope := &messageEnvelope{Sender: sender, Message: message, RequestID: requestID}
	select {
	case p.mailbox <- envelope:
	default:
		p.log.WithField("message_type", fmt.Sprintf("%T", message)).Warn("mailbox full, dropping message")
	}
}

func (p *process) run() {
	defer func() {
		p.stopped = true
		p.invokeReceive(Stopped{}, nil, "")
		p.engine.remove(p.pid)
	}()

	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("panic", r).WithField("stack", string(debug.Stack())).Error("actor panicked")
			p.stopped = true
		}
	}()

	p.actor = p.props.Produce()
	if p.actor == nil {
		panic(fmt.Sprintf("actor %s producer returned nil actor", p.pid.ID))
	}

	for {
		select {
		case <-p.stopCh:
			return

		case envelope := <-p.mailbox:
			if p.stopped {
				continue
			}

			switch msg := envelope.Message.(type) {
			case Started:
				p.invokeReceive(msg, envelope.Sender, envelope.RequestID)
			case Stopping:
				p.stopped = true
				p.invokeReceive(msg, envelope.Sender, envelope.RequestID)
				close(p.stopCh)
			case Stopped:
				p.stopped = true
				p.invokeReceive(msg, envelope.Sender, envelope.RequestID)
				select {
				case <-p.stopCh:
				default:
					close(p.stopCh)
				}
			default:
				p.invokeReceive(envelope.Message, envelope.Sender, envelope.RequestID)
			}
		}
	}
}

func (p *process) invokeReceive(msg interface{}, sender *PID, requestID string) {
	ctx := &context{
		engine:    p.engine,
		self:      p.pid,
		sender:    sender,
		message:   msg,
		requestID: requestID,
	}
	p.actor.Receive(ctx)
}
