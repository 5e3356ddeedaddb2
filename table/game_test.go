package table

import (
	"testing"

	"github.com/lguibr/cockatriced/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDeck() *deck.List {
	l := deck.New()
	l.AddCard("main", "Plains", 4)
	l.AddCard("side", "Naturalize", 2)
	return l
}

func TestJoinAssignsMonotonicPlayerIDs(t *testing.T) {
	g := NewGame(1, "table", "alice", 2, true, "", 42)

	p1, err := g.Join("alice", false, "")
	require.NoError(t, err)
	p2, err := g.Join("bob", false, "")
	require.NoError(t, err)

	assert.Equal(t, 0, p1.PlayerID)
	assert.Equal(t, 1, p2.PlayerID)
}

func TestJoinRejectsFullGame(t *testing.T) {
	g := NewGame(1, "table", "alice", 1, true, "", 1)

	_, err := g.Join("alice", false, "")
	require.NoError(t, err)

	_, err = g.Join("bob", false, "")
	assert.ErrorIs(t, err, ErrGameFull)
}

func TestJoinRejectsSpectatorsWhenDisallowed(t *testing.T) {
	g := NewGame(1, "table", "alice", 2, false, "", 1)

	_, err := g.Join("eve", true, "")
	assert.ErrorIs(t, err, ErrSpectatorsBarred)
}

func TestSetupZonesMaterializesDeckAndCounters(t *testing.T) {
	g := NewGame(1, "table", "alice", 2, true, "", 7)
	p, err := g.Join("alice", false, "")
	require.NoError(t, err)

	require.NoError(t, g.SetDeck(p.PlayerID, sampleDeck(), 99))

	assert.Len(t, p.Zone("deck").Cards, 4)
	assert.Len(t, p.Zone("sb").Cards, 2)
	assert.Equal(t, 20, p.Counter(0).Value)
	assert.Equal(t, "life", p.Counter(0).Name)
}

func TestReadyStartTransitionsToActiveWhenAllReady(t *testing.T) {
	g := NewGame(1, "table", "alice", 2, true, "", 7)
	p1, _ := g.Join("alice", false, "")
	p2, _ := g.Join("bob", false, "")
	require.NoError(t, g.SetDeck(p1.PlayerID, sampleDeck(), 1))
	require.NoError(t, g.SetDeck(p2.PlayerID, sampleDeck(), 2))

	require.NoError(t, g.ReadyStart(p1.PlayerID, true))
	assert.Equal(t, PhaseLobby, g.Phase)

	require.NoError(t, g.ReadyStart(p2.PlayerID, true))
	assert.Equal(t, PhaseActive, g.Phase)
	assert.Equal(t, p1.PlayerID, g.ActivePlayer)
}

func TestDrawCardsMovesFromDeckToHand(t *testing.T) {
	g := NewGame(1, "table", "alice", 1, true, "", 7)
	p, _ := g.Join("alice", false, "")
	require.NoError(t, g.SetDeck(p.PlayerID, sampleDeck(), 1))

	drawn, err := g.DrawCards(p.PlayerID, 3)
	require.NoError(t, err)
	assert.Len(t, drawn, 3)
	assert.Len(t, p.Zone("deck").Cards, 1)
	assert.Len(t, p.Zone("hand").Cards, 3)
}

func TestDrawCardsRejectsSpectator(t *testing.T) {
	g := NewGame(1, "table", "alice", 2, true, "", 7)
	spec, err := g.Join("eve", true, "")
	require.NoError(t, err)

	_, err = g.DrawCards(spec.PlayerID, 1)
	assert.ErrorIs(t, err, ErrSpectatorAction)
}

func TestCounterAndArrowIDsAreMonotonicAndNeverReused(t *testing.T) {
	g := NewGame(1, "table", "alice", 1, true, "", 7)
	p, _ := g.Join("alice", false, "")
	require.NoError(t, g.SetDeck(p.PlayerID, sampleDeck(), 1))

	c1, err := g.CreateCounter(p.PlayerID, "custom", "#ff0000", 1)
	require.NoError(t, err)
	firstID := c1.ID

	require.True(t, p.DeleteCounter(firstID))

	c2, err := g.CreateCounter(p.PlayerID, "custom2", "#00ff00", 1)
	require.NoError(t, err)
	assert.Greater(t, c2.ID, firstID)
}

func TestLeaveLastPlayerTerminatesGame(t *testing.T) {
	g := NewGame(1, "table", "alice", 1, true, "", 7)
	p, _ := g.Join("alice", false, "")

	require.NoError(t, g.Leave(p.PlayerID))
	assert.Equal(t, PhaseTerminal, g.Phase)
}

func TestAdvancePhaseRejectsNonActivePlayer(t *testing.T) {
	g := NewGame(1, "table", "alice", 2, true, "", 7)
	p1, _ := g.Join("alice", false, "")
	p2, _ := g.Join("bob", false, "")
	require.NoError(t, g.SetDeck(p1.PlayerID, sampleDeck(), 1))
	require.NoError(t, g.SetDeck(p2.PlayerID, sampleDeck(), 2))
	require.NoError(t, g.ReadyStart(p1.PlayerID, true))
	require.NoError(t, g.ReadyStart(p2.PlayerID, true))

	err := g.AdvancePhase(p2.PlayerID, false)
	assert.ErrorIs(t, err, ErrNotActivePlayer)

	require.NoError(t, g.AdvancePhase(p1.PlayerID, false))
}

func TestAdvancePhaseAllowsAdminOverride(t *testing.T) {
	g := NewGame(1, "table", "alice", 2, true, "", 7)
	p1, _ := g.Join("alice", false, "")
	p2, _ := g.Join("bob", false, "")
	require.NoError(t, g.SetDeck(p1.PlayerID, sampleDeck(), 1))
	require.NoError(t, g.SetDeck(p2.PlayerID, sampleDeck(), 2))
	require.NoError(t, g.ReadyStart(p1.PlayerID, true))
	require.NoError(t, g.ReadyStart(p2.PlayerID, true))

	// p2 is not the active player (p1 is), but isAdmin lets it through.
	require.NoError(t, g.AdvancePhase(p2.PlayerID, true))
}
