package actor

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrTimeout is returned by Ask when no Reply arrives within the deadline.
var ErrTimeout = errors.New("actor: ask timed out")

// Engine owns the lifecycle of every actor process and routes messages
// between them. It is the single synchronization point C6/C7/C8 rely on:
// a game, a chat channel, and the server registry are each exactly one
// actor, so "per game lock" / "per channel lock" / "registry lock" in the
// concurrency model are just "that actor's mailbox".
type Engine struct {
	pidCounter    uint64
	askCounter    uint64
	actors        map[string]*process
	mu            sync.RWMutex
	stopping      atomic.Bool
	pendingAsks   map[string]chan interface{}
	pendingAsksMu sync.Mutex
}

// NewEngine creates a new actor engine.
func NewEngine() *Engine {
	return &Engine{
		actors:      make(map[string]*process),
		pendingAsks: make(map[string]chan interface{}),
	}
}

func (e *Engine) nextPID(prefix string) *PID {
	id := atomic.AddUint64(&e.pidCounter, 1)
	if prefix == "" {
		prefix = "actor"
	}
	return &PID{ID: fmt.Sprintf("%s-%d", prefix, id)}
}

// Spawn creates and starts a new actor from Props and returns its PID.
func (e *Engine) Spawn(props *Props) *PID {
	return e.SpawnNamed(props, "")
}

// SpawnNamed is Spawn with a human-readable PID prefix (e.g. "game",
// "chat", "conn") for easier log correlation.
func (e *Engine) SpawnNamed(props *Props, namePrefix string) *PID {
	if e.stopping.Load() {
		logrus.Warn("engine is stopping, refusing to spawn new actor")
		return nil
	}

	pid := e.nextPID(namePrefix)
	proc := newProcess(e, pid, props)

	e.mu.Lock()
	e.actors[pid.ID] = proc
	e.mu.Unlock()

	go proc.run()
	e.Send(pid, Started{}, nil)

	return pid
}

// Send delivers a fire-and-forget message to pid. sender may be nil.
func (e *Engine) Send(pid *PID, message interface{}, sender *PID) {
	e.sendWithRequestID(pid, message, sender, "")
}

func (e *Engine) sendWithRequestID(pid *PID, message interface{}, sender *PID, requestID string) {
	if pid == nil {
		return
	}
	if e.stopping.Load() {
		return
	}

	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()

	if ok {
		proc.sendMessage(message, sender, requestID)
	} else {
		logrus.WithField("pid", pid.ID).WithField("message_type", fmt.Sprintf("%T", message)).Debug("actor not found, dropping message")
	}
}

// Ask sends message to pid and blocks until the actor calls ctx.Reply, or
// timeout elapses (returning ErrTimeout).
func (e *Engine) Ask(pid *PID, message interface{}, timeout time.Duration) (interface{}, error) {
	requestID := fmt.Sprintf("ask-%d", atomic.AddUint64(&e.askCounter, 1))
	replyCh := make(chan interface{}, 1)

	e.pendingAsksMu.Lock()
	e.pendingAsks[requestID] = replyCh
	e.pendingAsksMu.Unlock()

	defer func() {
		e.pendingAsksMu.Lock()
		delete(e.pendingAsks, requestID)
		e.pendingAsksMu.Unlock()
	}()

	e.sendWithRequestID(pid, message, nil, requestID)

	select {
	case reply := <-replyCh:
		return reply, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	}
}

func (e *Engine) reply(requestID string, message interface{}) {
	e.pendingAsksMu.Lock()
	ch, ok := e.pendingAsks[requestID]
	e.pendingAsksMu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- message:
	default:
	}
}

// Stop asks pid to shut down: it receives Stopping, finishes in-flight
// work, then Stopped, then is removed from the engine.
func (e *Engine) Stop(pid *PID) {
	if pid == nil {
		return
	}
	e.mu.RLock()
	_, ok := e.actors[pid.ID]
	e.mu.RUnlock()
	if ok {
		e.Send(pid, Stopping{}, nil)
	}
}

func (e *Engine) remove(pid *PID) {
	e.mu.Lock()
	delete(e.actors, pid.ID)
	e.mu.Unlock()
}

// Count returns the number of live actor processes, mostly for tests.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.actors)
}

// Shutdown stops every actor and waits (up to timeout) for them to finish.
func (e *Engine) Shutdown(timeout time.Duration) {
	if !e.stopping.CompareAndSwap(false, true) {
		return
	}

	e.mu.RLock()
	pids := make([]*PID, 0, len(e.actors))
	for _, proc := range e.actors {
		pids = append(pids, proc.pid)
	}
	e.mu.RUnlock()

	for _, pid := range pids {
		e.Stop(pid)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		e.mu.RLock()
		remaining := len(e.actors)
		e.mu.RUnlock()
		if remaining == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	e.mu.Lock()
	if len(e.actors) > 0 {
		logrus.WithField("remaining", len(e.actors)).Warn("engine shutdown timed out, forcing actor map clear")
		e.actors = make(map[string]*process)
	}
	e.mu.Unlock()
}
