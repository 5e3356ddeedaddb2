package actor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type echoActor struct {
	mu       sync.Mutex
	received []interface{}
}

func (a *echoActor) Receive(ctx Context) {
	switch msg := ctx.Message().(type) {
	case Started, Stopping, Stopped:
		return
	case string:
		if msg == "ping" {
			ctx.Reply("pong")
			return
		}
	}
	a.mu.Lock()
	a.received = append(a.received, ctx.Message())
	a.mu.Unlock()
}

func (a *echoActor) all() []interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]interface{}, len(a.received))
	copy(out, a.received)
	return out
}

func waitForCount(t *testing.T, a *echoActor, n int, timeout time.Duration) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(a.all()) >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestSpawnAndSend(t *testing.T) {
	engine := NewEngine()
	defer engine.Shutdown(time.Second)

	act := &echoActor{}
	pid := engine.Spawn(NewProps(func() Actor { return act }))
	assert.NotNil(t, pid)

	engine.Send(pid, "hello", nil)
	assert.True(t, waitForCount(t, act, 1, time.Second))
	assert.Equal(t, "hello", act.all()[0])
}

func TestAskReply(t *testing.T) {
	engine := NewEngine()
	defer engine.Shutdown(time.Second)

	pid := engine.Spawn(NewProps(func() Actor { return &echoActor{} }))

	reply, err := engine.Ask(pid, "ping", time.Second)
	assert.NoError(t, err)
	assert.Equal(t, "pong", reply)
}

func TestAskTimeout(t *testing.T) {
	engine := NewEngine()
	defer engine.Shutdown(time.Second)

	pid := engine.Spawn(NewProps(func() Actor { return &echoActor{} }))

	_, err := engine.Ask(pid, "silence", 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestStopRemovesActor(t *testing.T) {
	engine := NewEngine()
	defer engine.Shutdown(time.Second)

	pid := engine.Spawn(NewProps(func() Actor { return &echoActor{} }))
	assert.Equal(t, 1, engine.Count())

	engine.Stop(pid)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && engine.Count() != 0 {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, engine.Count())
}

func TestSendToUnknownPIDIsNoop(t *testing.T) {
	engine := NewEngine()
	defer engine.Shutdown(time.Second)

	assert.NotPanics(t, func() {
		engine.Send(&PID{ID: "ghost-1"}, "hello", nil)
	})
}

func TestPanicInReceiveStopsTheActor(t *testing.T) {
	engine := NewEngine()
	defer engine.Shutdown(time.Second)

	panicky := NewProps(func() Actor {
		return ActorFunc(func(ctx Context) {
			if _, ok := ctx.Message().(string); ok {
				panic("boom")
			}
		})
	})
	pid := engine.Spawn(panicky)

	engine.Send(pid, "trigger", nil)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && engine.Count() != 0 {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, engine.Count())
}
