package server

import (
	"testing"
	"time"

	"github.com/lguibr/cockatriced/actor"
	"github.com/lguibr/cockatriced/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChatChannel(t *testing.T, engine *actor.Engine) *actor.PID {
	t.Helper()
	pid := engine.Spawn(actor.NewProps(NewChatChannelProducer(engine, "lobby", 20)))
	require.NotNil(t, pid)
	time.Sleep(10 * time.Millisecond)
	return pid
}

func TestChatChannelJoinBroadcastsPlayerList(t *testing.T) {
	engine := actor.NewEngine()
	defer engine.Shutdown(time.Second)
	channel := newTestChatChannel(t, engine)

	alice := newCapturingActor()
	alicePID := engine.Spawn(actor.NewProps(func() actor.Actor { return alice }))

	_, err := engine.Ask(channel, chatJoin{PlayerName: "alice", Conn: alicePID}, time.Second)
	require.NoError(t, err)

	alice.waitFor(t, time.Second, func(m interface{}) bool {
		pushed, ok := m.(pushItem)
		if !ok {
			return false
		}
		_, ok = pushed.Item.(*protocol.EventChatListPlayers)
		return ok
	})
}

func TestChatChannelSayBroadcastsToAllMembers(t *testing.T) {
	engine := actor.NewEngine()
	defer engine.Shutdown(time.Second)
	channel := newTestChatChannel(t, engine)

	alice := newCapturingActor()
	alicePID := engine.Spawn(actor.NewProps(func() actor.Actor { return alice }))
	bob := newCapturingActor()
	bobPID := engine.Spawn(actor.NewProps(func() actor.Actor { return bob }))

	_, err := engine.Ask(channel, chatJoin{PlayerName: "alice", Conn: alicePID}, time.Second)
	require.NoError(t, err)
	_, err = engine.Ask(channel, chatJoin{PlayerName: "bob", Conn: bobPID}, time.Second)
	require.NoError(t, err)

	engine.Send(channel, chatSay{PlayerName: "alice", Message: "hello"}, nil)

	msg := bob.waitFor(t, time.Second, func(m interface{}) bool {
		pushed, ok := m.(pushItem)
		if !ok {
			return false
		}
		_, ok = pushed.Item.(*protocol.EventChatSay)
		return ok
	})
	say := msg.(pushItem).Item.(*protocol.EventChatSay)
	assert.Equal(t, "hello", say.Message())
	assert.Equal(t, "alice", say.Name())
}

func TestChatChannelListPlayers(t *testing.T) {
	engine := actor.NewEngine()
	defer engine.Shutdown(time.Second)
	channel := newTestChatChannel(t, engine)

	alicePID := engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))
	_, err := engine.Ask(channel, chatJoin{PlayerName: "alice", Conn: alicePID}, time.Second)
	require.NoError(t, err)

	reply, err := engine.Ask(channel, chatListPlayers{}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, reply.(chatListPlayersResult).Names)
}
