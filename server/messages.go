package server

import (
	"github.com/lguibr/cockatriced/actor"
	"github.com/lguibr/cockatriced/deck"
	"github.com/lguibr/cockatriced/protocol"
)

// Messages exchanged between the registry, chat channel, game, and
// connection handler actors. None of these ever touch the wire — they
// are the in-process equivalent of the wire commands/events, addressed
// by PID rather than by name.

// --- Registry (C8) ---

type createGame struct {
	Description       string
	CreatorName       string
	MaxPlayers        int
	SpectatorsAllowed bool
	Password          string
	Seed              int64
}

type createGameResult struct {
	GameID int
	PID    *actor.PID
}

type findGame struct {
	GameID int
}

type findGameResult struct {
	PID *actor.PID
	Ok  bool
}

type listGames struct{}

type gameSummary struct {
	GameID            int
	Description       string
	CreatorName       string
	Players           int
	MaxPlayers        int
	SpectatorsAllowed bool
	Started           bool
}

type listGamesResult struct {
	Games []gameSummary
}

// gameEmpty is a fire-and-forget notification from a GameActor reaching
// PhaseTerminal — never a synchronous Ask, so the registry never waits
// on a game and the lock order (registry -> game) can't cycle.
type gameEmpty struct {
	GameID int
}

type getOrCreateChatChannel struct {
	Channel string
}

type getOrCreateChatChannelResult struct {
	PID *actor.PID
}

type listChatChannels struct{}

type listChatChannelsResult struct {
	Channels []string
}

// --- Game (C6) ---

type gameJoin struct {
	PlayerName string
	Spectator  bool
	Password   string
	Conn       *actor.PID
}

type gameJoinResult struct {
	PlayerID int
	Err      error
}

type gameLeave struct {
	PlayerID int
}

type gameLeaveResult struct {
	Err error
}

// gameDisconnect is fire-and-forget: a dropped connection never blocks
// waiting for the game to acknowledge.
type gameDisconnect struct {
	PlayerID int
}

type gameSetDeck struct {
	PlayerID int
	Deck     *deck.List
	DeckID   int
}

type gameSetDeckResult struct {
	Err error
}

type gameRunCommand struct {
	PlayerID    int
	IssuerLevel UserLevel
	Command     protocol.Item
}

type gameCommandResult struct {
	Code    protocol.ResponseCode
	Zone    protocol.Item   // set only for dump_zone
	Private []protocol.Item // events addressed only to the acting player
}

type querySummary struct{}

type querySummaryResult struct {
	Players int
	Started bool
}

// --- Chat channel ---

type chatJoin struct {
	PlayerName string
	Conn       *actor.PID
}

type chatJoinResult struct{}

type chatLeave struct {
	PlayerName string
}

type chatSay struct {
	PlayerName string
	Message    string
}

type chatListPlayers struct{}

type chatListPlayersResult struct {
	Names []string
}

// --- Connection handler ingress/egress ---

type inboundContainer struct {
	Container *protocol.CommandContainer
}

type readLoopErr struct{}

// pushItem asks a connection handler to write item as its own frame,
// outside whatever CommandContainer it may currently be processing. Used
// for game broadcasts and chat fan-out alike — both just need "deliver
// this item to this connection now".
type pushItem struct {
	Item protocol.Item
}
