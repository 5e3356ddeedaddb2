package server

import (
	"testing"
	"time"

	"github.com/lguibr/cockatriced/actor"
	"github.com/lguibr/cockatriced/deck"
	"github.com/lguibr/cockatriced/protocol"
	"github.com/lguibr/cockatriced/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingActor struct {
	received chan interface{}
}

func newCapturingActor() *capturingActor {
	return &capturingActor{received: make(chan interface{}, 64)}
}

func (a *capturingActor) Receive(ctx actor.Context) {
	switch ctx.Message().(type) {
	case actor.Started, actor.Stopping, actor.Stopped:
		return
	}
	select {
	case a.received <- ctx.Message():
	default:
	}
}

func (a *capturingActor) waitFor(t *testing.T, timeout time.Duration, match func(interface{}) bool) interface{} {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-a.received:
			if match(msg) {
				return msg
			}
		case <-deadline:
			t.Fatal("timed out waiting for expected message")
			return nil
		}
	}
}

func newTestGame(t *testing.T, engine *actor.Engine, registry *actor.PID, maxPlayers int, spectatorsAllowed bool) *actor.PID {
	t.Helper()
	pid := engine.Spawn(actor.NewProps(NewGameActorProducer(engine, registry, 1, "test game", "creator", maxPlayers, spectatorsAllowed, "", 42)))
	require.NotNil(t, pid)
	time.Sleep(10 * time.Millisecond)
	return pid
}

func sampleDeckList() *deck.List {
	l := deck.New()
	l.AddCard("main", "Plains", 10)
	return l
}

func TestGameActorJoinBroadcastsToExistingMembers(t *testing.T) {
	engine := actor.NewEngine()
	defer engine.Shutdown(time.Second)
	registry := engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))
	game := newTestGame(t, engine, registry, 2, false)

	alice := newCapturingActor()
	alicePID := engine.Spawn(actor.NewProps(func() actor.Actor { return alice }))

	reply, err := engine.Ask(game, gameJoin{PlayerName: "alice", Conn: alicePID}, time.Second)
	require.NoError(t, err)
	res := reply.(gameJoinResult)
	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.PlayerID)

	bob := newCapturingActor()
	bobPID := engine.Spawn(actor.NewProps(func() actor.Actor { return bob }))

	bobReply, err := engine.Ask(game, gameJoin{PlayerName: "bob", Conn: bobPID}, time.Second)
	require.NoError(t, err)
	bobPlayerID := bobReply.(gameJoinResult).PlayerID

	alice.waitFor(t, time.Second, func(m interface{}) bool {
		pushed, ok := m.(pushItem)
		if !ok {
			return false
		}
		container, ok := pushed.Item.(*protocol.GameEventContainer)
		if !ok || len(container.Events()) != 1 {
			return false
		}
		join, ok := container.Events()[0].(*protocol.EventJoin)
		return ok && join.PlayerID() == bobPlayerID
	})
}

func TestGameActorJoinRejectsWhenFull(t *testing.T) {
	engine := actor.NewEngine()
	defer engine.Shutdown(time.Second)
	registry := engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))
	game := newTestGame(t, engine, registry, 1, false)

	alicePID := engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))
	_, err := engine.Ask(game, gameJoin{PlayerName: "alice", Conn: alicePID}, time.Second)
	require.NoError(t, err)

	bobPID := engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))
	reply, err := engine.Ask(game, gameJoin{PlayerName: "bob", Conn: bobPID}, time.Second)
	require.NoError(t, err)
	assert.ErrorIs(t, reply.(gameJoinResult).Err, table.ErrGameFull)
}

func TestGameActorSetDeckAndDrawCards(t *testing.T) {
	engine := actor.NewEngine()
	defer engine.Shutdown(time.Second)
	registry := engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))
	game := newTestGame(t, engine, registry, 2, false)

	alicePID := engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))
	reply, err := engine.Ask(game, gameJoin{PlayerName: "alice", Conn: alicePID}, time.Second)
	require.NoError(t, err)
	playerID := reply.(gameJoinResult).PlayerID

	setReply, err := engine.Ask(game, gameSetDeck{PlayerID: playerID, Deck: sampleDeckList(), DeckID: 0}, time.Second)
	require.NoError(t, err)
	require.NoError(t, setReply.(gameSetDeckResult).Err)

	cmdReply, err := engine.Ask(game, gameRunCommand{PlayerID: playerID, Command: protocol.NewCommandDrawCards(1, 3)}, time.Second)
	require.NoError(t, err)
	result := cmdReply.(gameCommandResult)
	assert.Equal(t, protocol.RespOk, result.Code)
	require.Len(t, result.Private, 1)
	drawEvent := result.Private[0].(*protocol.EventDrawCards)
	assert.Equal(t, 3, drawEvent.NumberCards())
}

func TestGameActorAdvancePhaseRejectsNonActivePlayer(t *testing.T) {
	engine := actor.NewEngine()
	defer engine.Shutdown(time.Second)
	registry := engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))
	game := newTestGame(t, engine, registry, 2, false)

	aliceReply, err := engine.Ask(game, gameJoin{PlayerName: "alice", Conn: engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))}, time.Second)
	require.NoError(t, err)
	alicePlayerID := aliceReply.(gameJoinResult).PlayerID

	bobReply, err := engine.Ask(game, gameJoin{PlayerName: "bob", Conn: engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))}, time.Second)
	require.NoError(t, err)
	bobPlayerID := bobReply.(gameJoinResult).PlayerID

	// Game is still in the lobby, so advance_phase is rejected regardless
	// of who issues it.
	cmdReply, err := engine.Ask(game, gameRunCommand{PlayerID: alicePlayerID, Command: protocol.NewCommandAdvancePhase(1)}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.RespContextError, cmdReply.(gameCommandResult).Code)

	_, err = engine.Ask(game, gameRunCommand{PlayerID: alicePlayerID, Command: protocol.NewCommandReadyStart(1, true)}, time.Second)
	require.NoError(t, err)
	_, err = engine.Ask(game, gameRunCommand{PlayerID: bobPlayerID, Command: protocol.NewCommandReadyStart(1, true)}, time.Second)
	require.NoError(t, err)

	// Now active; the non-active player (bob, since alice seated first)
	// is rejected, but the active player succeeds.
	rejected, err := engine.Ask(game, gameRunCommand{PlayerID: bobPlayerID, Command: protocol.NewCommandAdvancePhase(1)}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.RespContextError, rejected.(gameCommandResult).Code)

	accepted, err := engine.Ask(game, gameRunCommand{PlayerID: alicePlayerID, Command: protocol.NewCommandAdvancePhase(1)}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.RespOk, accepted.(gameCommandResult).Code)
}

func TestGameActorAdvancePhaseAllowsJudgeOverride(t *testing.T) {
	engine := actor.NewEngine()
	defer engine.Shutdown(time.Second)
	registry := engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))
	game := newTestGame(t, engine, registry, 2, false)

	aliceReply, err := engine.Ask(game, gameJoin{PlayerName: "alice", Conn: engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))}, time.Second)
	require.NoError(t, err)
	alicePlayerID := aliceReply.(gameJoinResult).PlayerID

	bobReply, err := engine.Ask(game, gameJoin{PlayerName: "bob", Conn: engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))}, time.Second)
	require.NoError(t, err)
	bobPlayerID := bobReply.(gameJoinResult).PlayerID

	_, err = engine.Ask(game, gameRunCommand{PlayerID: alicePlayerID, Command: protocol.NewCommandReadyStart(1, true)}, time.Second)
	require.NoError(t, err)
	_, err = engine.Ask(game, gameRunCommand{PlayerID: bobPlayerID, Command: protocol.NewCommandReadyStart(1, true)}, time.Second)
	require.NoError(t, err)

	// bob is not the active player (alice is), but issuing at judge level
	// bypasses the active-player check.
	reply, err := engine.Ask(game, gameRunCommand{PlayerID: bobPlayerID, IssuerLevel: UserLevelJudge, Command: protocol.NewCommandAdvancePhase(1)}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.RespOk, reply.(gameCommandResult).Code)
}

func TestGameActorAdvancePhaseAllowsCreatorOverride(t *testing.T) {
	engine := actor.NewEngine()
	defer engine.Shutdown(time.Second)
	registry := engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))
	// newTestGame sets the game's CreatorName to "creator" without seating
	// anyone. "other" joins first so it becomes the active player, leaving
	// creator non-active.
	game := newTestGame(t, engine, registry, 2, false)

	otherReply, err := engine.Ask(game, gameJoin{PlayerName: "other", Conn: engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))}, time.Second)
	require.NoError(t, err)
	otherPlayerID := otherReply.(gameJoinResult).PlayerID

	creatorReply, err := engine.Ask(game, gameJoin{PlayerName: "creator", Conn: engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))}, time.Second)
	require.NoError(t, err)
	creatorPlayerID := creatorReply.(gameJoinResult).PlayerID

	_, err = engine.Ask(game, gameRunCommand{PlayerID: otherPlayerID, Command: protocol.NewCommandReadyStart(1, true)}, time.Second)
	require.NoError(t, err)
	_, err = engine.Ask(game, gameRunCommand{PlayerID: creatorPlayerID, Command: protocol.NewCommandReadyStart(1, true)}, time.Second)
	require.NoError(t, err)

	// other seated first and is the active player; creator is not, but
	// is the game's creator and so may still force the phase forward.
	accepted, err := engine.Ask(game, gameRunCommand{PlayerID: creatorPlayerID, Command: protocol.NewCommandAdvancePhase(1)}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.RespOk, accepted.(gameCommandResult).Code)
}

func TestGameActorLeaveLastPlayerTerminatesGame(t *testing.T) {
	engine := actor.NewEngine()
	defer engine.Shutdown(time.Second)
	registryActor := newCapturingActor()
	registry := engine.Spawn(actor.NewProps(func() actor.Actor { return registryActor }))
	game := newTestGame(t, engine, registry, 1, false)

	alicePID := engine.Spawn(actor.NewProps(func() actor.Actor { return newCapturingActor() }))
	reply, err := engine.Ask(game, gameJoin{PlayerName: "alice", Conn: alicePID}, time.Second)
	require.NoError(t, err)
	playerID := reply.(gameJoinResult).PlayerID

	leaveReply, err := engine.Ask(game, gameLeave{PlayerID: playerID}, time.Second)
	require.NoError(t, err)
	require.NoError(t, leaveReply.(gameLeaveResult).Err)

	registryActor.waitFor(t, time.Second, func(m interface{}) bool {
		_, ok := m.(gameEmpty)
		return ok
	})
}
