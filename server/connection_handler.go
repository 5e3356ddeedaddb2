package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lguibr/cockatriced/actor"
	"github.com/lguibr/cockatriced/deck"
	"github.com/lguibr/cockatriced/deckstore"
	"github.com/lguibr/cockatriced/protocol"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/websocket"
)

const (
	askTimeout      = 2 * time.Second
	readTimeout     = 90 * time.Second
	protocolVersion = 6
)

func init() {
	protocol.RegisterGeneric("server_info_game", "", map[string]protocol.AttrKind{
		"game_id": protocol.KindInt, "players": protocol.KindInt, "max_players": protocol.KindInt, "spectators_allowed": protocol.KindBool, "started": protocol.KindBool,
	})
	protocol.RegisterGeneric("deck_directory", "", nil)
	protocol.RegisterGeneric("deck_directory_entry", "", map[string]protocol.AttrKind{"deck_id": protocol.KindInt})
	protocol.RegisterGeneric("server_identification", "", map[string]protocol.AttrKind{"protocol_version": protocol.KindInt})
}

// errActorStopping marks cleanup triggered by Stopping rather than by the
// read loop or a transport error, so cleanup doesn't ask the engine to
// stop an actor that is already stopping.
var errActorStopping = errors.New("server: connection handler actor stopping")

// gameCommandItem is satisfied by every GameCommand-embedding command
// whose handling is fully delegated to the GameActor (ready_start,
// concede, draw_cards, create_counter, create_arrow, dump_zone,
// advance_phase). Commands that need handler-local state first
// (deck_select, join_game, leave_game) are dispatched individually instead.
type gameCommandItem interface {
	protocol.Item
	GameID() int
}

// ConnectionHandler is the per-connection actor (C7): it owns exactly one
// websocket, translates wire CommandContainers into in-process actor
// messages addressed to the registry/game/chat actors it talks to, and
// translates their replies and broadcasts back into wire frames.
type ConnectionHandler struct {
	conn      *websocket.Conn
	engine    *actor.Engine
	registry  *actor.PID
	deckStore deckstore.Store
	auth      Authenticator

	selfPID  *actor.PID
	connAddr string
	log      *logrus.Entry

	playerName string
	identity   Identity

	currentGameID   int
	currentGamePID  *actor.PID
	currentPlayerID int
	deckFiles       []string
	chatChannels    map[string]*actor.PID

	stopReadLoop   chan struct{}
	readLoopExited chan struct{}
	done           chan struct{}
	closeOnce      sync.Once
}

// ConnectionHandlerArgs holds everything needed to construct one
// ConnectionHandler.
type ConnectionHandlerArgs struct {
	Conn       *websocket.Conn
	Engine     *actor.Engine
	Registry   *actor.PID
	DeckStore  deckstore.Store
	Auth       Authenticator
	PlayerName string
	Done       chan struct{}
}

func NewConnectionHandlerProducer(args ConnectionHandlerArgs) actor.Producer {
	return func() actor.Actor {
		addr := "unknown"
		if args.Conn != nil {
			addr = args.Conn.RemoteAddr().String()
		}
		return &ConnectionHandler{
			conn:           args.Conn,
			engine:         args.Engine,
			registry:       args.Registry,
			deckStore:      args.DeckStore,
			auth:           args.Auth,
			connAddr:       addr,
			log:            logrus.WithField("component", "conn").WithField("conn_addr", addr),
			playerName:     args.PlayerName,
			chatChannels:   make(map[string]*actor.PID),
			stopReadLoop:   make(chan struct{}),
			readLoopExited: make(chan struct{}),
			done:           args.Done,
		}
	}
}

func (h *ConnectionHandler) Receive(ctx actor.Context) {
	defer func() {
		if r := recover(); r != nil {
			h.log.WithField("panic", r).Error("connection handler panicked")
			h.cleanup(fmt.Errorf("server: panic in connection handler: %v", r))
		}
	}()

	if h.selfPID == nil {
		h.selfPID = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case actor.Started:
		identity, err := h.auth.Authenticate(context.Background(), h.playerName, "")
		if err != nil {
			h.log.WithError(err).Warn("authentication failed, closing connection")
			h.cleanup(err)
			return
		}
		h.identity = identity
		h.writeItem(h.welcomeItem())
		go h.readLoop(h.engine, h.selfPID)

	case inboundContainer:
		h.processContainer(msg.Container)

	case pushItem:
		h.writeItem(msg.Item)

	case readLoopErr:
		h.cleanup(errors.New("read loop exited"))

	case actor.Stopping:
		h.signalAndWaitForReadLoop()
		h.performCleanupActions(errActorStopping)

	case actor.Stopped:
		h.closeOnce.Do(func() {
			if h.done != nil {
				close(h.done)
			}
		})

	default:
	}
}

func (h *ConnectionHandler) welcomeItem() protocol.Item {
	item := protocol.NewGenericItem("server_identification", "")
	item.Attrs().Set("protocol_version", protocol.IntAttr(protocolVersion))
	item.Attrs().Set("name", protocol.StringAttr(h.identity.Name))
	return item
}

// readLoop reads one websocket frame at a time, decodes it as a single
// protocol.Item, and forwards recognized CommandContainers back to this
// actor's own mailbox. Grounded on the teacher's read loop: a stop
// channel checked before and after each blocking read, a deadline so a
// dead peer doesn't hang the goroutine forever, and a final notification
// sent back to the owning actor when the loop exits for any reason.
func (h *ConnectionHandler) readLoop(engine *actor.Engine, selfPID *actor.PID) {
	defer func() {
		if r := recover(); r != nil {
			h.log.WithField("panic", r).Error("connection handler read loop panicked")
		}
		close(h.readLoopExited)
		if engine != nil && selfPID != nil {
			engine.Send(selfPID, readLoopErr{}, nil)
		}
	}()

	for {
		select {
		case <-h.stopReadLoop:
			return
		default:
		}

		if h.conn == nil {
			return
		}

		var data string
		_ = h.conn.SetReadDeadline(time.Now().Add(readTimeout))
		err := websocket.Message.Receive(h.conn, &data)
		if h.conn != nil {
			_ = h.conn.SetReadDeadline(time.Time{})
		}
		if err != nil {
			return
		}

		item, err := protocol.Decode(protocol.NewXMLFramer(strings.NewReader(data), nil))
		if err != nil {
			h.log.WithError(err).Warn("failed to decode inbound frame")
			continue
		}
		cc, ok := item.(*protocol.CommandContainer)
		if !ok {
			continue
		}
		if engine != nil && selfPID != nil {
			engine.Send(selfPID, inboundContainer{Container: cc}, nil)
		}
	}
}

func (h *ConnectionHandler) signalAndWaitForReadLoop() {
	select {
	case <-h.stopReadLoop:
		return
	default:
		close(h.stopReadLoop)
	}

	if h.conn != nil {
		_ = h.conn.Close()
	}

	select {
	case <-h.readLoopExited:
	case <-time.After(2 * time.Second):
		h.log.Warn("timeout waiting for read loop to exit")
	}
}

func (h *ConnectionHandler) cleanup(reason error) {
	h.signalAndWaitForReadLoop()
	h.performCleanupActions(reason)
	if !errors.Is(reason, errActorStopping) {
		if h.engine != nil && h.selfPID != nil {
			h.engine.Stop(h.selfPID)
		}
	}
}

func (h *ConnectionHandler) performCleanupActions(reason error) {
	if h.currentGamePID != nil {
		h.engine.Send(h.currentGamePID, gameDisconnect{PlayerID: h.currentPlayerID}, h.selfPID)
	}
	for name, pid := range h.chatChannels {
		h.engine.Send(pid, chatLeave{PlayerName: h.identity.Name}, h.selfPID)
		delete(h.chatChannels, name)
	}
	if h.conn != nil {
		_ = h.conn.Close()
		h.conn = nil
	}
}

func (h *ConnectionHandler) writeItem(item protocol.Item) {
	if h.conn == nil {
		return
	}
	var buf bytes.Buffer
	if err := protocol.Encode(protocol.NewXMLFramer(nil, &buf), item); err != nil {
		h.log.WithError(err).Error("failed to encode outbound item")
		return
	}
	if err := websocket.Message.Send(h.conn, buf.String()); err != nil {
		h.log.WithError(err).Warn("failed to write outbound frame")
	}
}

func (h *ConnectionHandler) chatChannel(name string) (*actor.PID, error) {
	if pid, ok := h.chatChannels[name]; ok {
		return pid, nil
	}
	reply, err := h.engine.Ask(h.registry, getOrCreateChatChannel{Channel: name}, askTimeout)
	if err != nil {
		return nil, err
	}
	res, ok := reply.(getOrCreateChatChannelResult)
	if !ok || res.PID == nil {
		return nil, errors.New("server: chat channel unavailable")
	}
	h.engine.Send(res.PID, chatJoin{PlayerName: h.identity.Name, Conn: h.selfPID}, h.selfPID)
	h.chatChannels[name] = res.PID
	return res.PID, nil
}

func (h *ConnectionHandler) processContainer(cc *protocol.CommandContainer) {
	scratch := newContainerScratch(cc.CmdID())
	for _, item := range cc.Commands() {
		h.processCommand(scratch, item)
		if scratch.failed() {
			break
		}
	}

	h.writeItem(scratch.finalResponse())
	for _, item := range scratch.extraItems {
		h.writeItem(item)
	}
	for _, container := range scratch.privateByGame {
		h.writeItem(container)
	}
}

func (h *ConnectionHandler) processCommand(scratch *containerScratch, item protocol.Item) {
	switch cmd := item.(type) {
	case *protocol.CommandSay:
		h.handleSay(scratch, cmd)
	case *protocol.CommandDeckUpload:
		h.handleDeckUpload(scratch, cmd)
	case *protocol.CommandDeckList:
		h.handleDeckList(scratch, cmd)
	case *protocol.CommandDeckSelect:
		h.handleDeckSelect(scratch, cmd)
	case *protocol.CommandListGames:
		h.handleListGames(scratch, cmd)
	case *protocol.CommandCreateGame:
		h.handleCreateGame(scratch, cmd)
	case *protocol.CommandJoinGame:
		h.handleJoinGame(scratch, cmd)
	case *protocol.CommandLeaveGame:
		h.handleLeaveGame(scratch, cmd)
	case *protocol.CommandReadyStart, *protocol.CommandConcede, *protocol.CommandDrawCards,
		*protocol.CommandCreateCounter, *protocol.CommandCreateArrow, *protocol.CommandDumpZone,
		*protocol.CommandAdvancePhase:
		h.handleGameCommand(scratch, item.(gameCommandItem))
	default:
		scratch.setCode(protocol.RespInvalid)
	}
}

func (h *ConnectionHandler) handleSay(scratch *containerScratch, cmd *protocol.CommandSay) {
	pid, err := h.chatChannel(cmd.Channel())
	if err != nil {
		scratch.setCode(protocol.RespContextError)
		return
	}
	h.engine.Send(pid, chatSay{PlayerName: h.identity.Name, Message: cmd.Message()}, h.selfPID)
	scratch.setCode(protocol.RespOk)
}

func (h *ConnectionHandler) handleDeckUpload(scratch *containerScratch, cmd *protocol.CommandDeckUpload) {
	d := deck.FromItem(cmd.Deck())
	fileID, err := h.deckStore.Put(h.identity.Name, cmd.Path(), d)
	if err != nil {
		h.log.WithError(err).Warn("deck upload failed")
		scratch.setCode(protocol.RespInvalid)
		return
	}
	index := len(h.deckFiles)
	h.deckFiles = append(h.deckFiles, fileID)
	scratch.setResponse(protocol.NewResponseDeckUpload(scratch.cmdID, protocol.RespOk, strconv.Itoa(index), cmd.Path()))
}

// handleDeckList refreshes deckFiles from the store and reports the
// directory addressed by the session-local indices the client will use
// in a subsequent deck_select.
func (h *ConnectionHandler) handleDeckList(scratch *containerScratch, cmd *protocol.CommandDeckList) {
	dir, err := h.deckStore.List(h.identity.Name)
	if err != nil {
		scratch.setCode(protocol.RespInvalid)
		return
	}
	h.deckFiles = h.deckFiles[:0]
	root := protocol.NewGenericItem("deck_directory", "")
	for _, f := range dir.Files {
		index := len(h.deckFiles)
		h.deckFiles = append(h.deckFiles, f.FileID)
		entry := protocol.NewGenericItem("deck_directory_entry", "")
		entry.Attrs().Set("deck_id", protocol.IntAttr(index))
		entry.Attrs().Set("file_name", protocol.StringAttr(f.FileName))
		root.AddChild(entry)
	}
	scratch.setResponse(protocol.NewResponseDeckList(scratch.cmdID, protocol.RespOk, root))
}

func (h *ConnectionHandler) handleDeckSelect(scratch *containerScratch, cmd *protocol.CommandDeckSelect) {
	if h.currentGamePID == nil || cmd.GameID() != h.currentGameID {
		scratch.setCode(protocol.RespContextError)
		return
	}
	index := cmd.DeckID()
	if index < 0 || index >= len(h.deckFiles) {
		scratch.setCode(protocol.RespInvalid)
		return
	}

	d, err := h.deckStore.Get(h.identity.Name, h.deckFiles[index])
	if err != nil {
		scratch.setCode(protocol.RespInvalid)
		return
	}

	reply, err := h.engine.Ask(h.currentGamePID, gameSetDeck{PlayerID: h.currentPlayerID, Deck: d, DeckID: index}, askTimeout)
	if err != nil {
		scratch.setCode(protocol.RespContextError)
		return
	}
	res, _ := reply.(gameSetDeckResult)
	if res.Err != nil {
		scratch.setCode(mapGameError(res.Err))
		return
	}
	scratch.setCode(protocol.RespOk)
}

func (h *ConnectionHandler) handleListGames(scratch *containerScratch, cmd *protocol.CommandListGames) {
	reply, err := h.engine.Ask(h.registry, listGames{}, askTimeout)
	if err != nil {
		scratch.setCode(protocol.RespContextError)
		return
	}
	res, _ := reply.(listGamesResult)
	items := make([]protocol.Item, 0, len(res.Games))
	for _, g := range res.Games {
		item := protocol.NewGenericItem("server_info_game", "")
		item.Attrs().Set("game_id", protocol.IntAttr(g.GameID))
		item.Attrs().Set("description", protocol.StringAttr(g.Description))
		item.Attrs().Set("creator_name", protocol.StringAttr(g.CreatorName))
		item.Attrs().Set("players", protocol.IntAttr(g.Players))
		item.Attrs().Set("max_players", protocol.IntAttr(g.MaxPlayers))
		item.Attrs().Set("spectators_allowed", protocol.BoolAttr(g.SpectatorsAllowed))
		item.Attrs().Set("started", protocol.BoolAttr(g.Started))
		items = append(items, item)
	}
	scratch.setCode(protocol.RespOk)
	scratch.enqueueExtra(protocol.NewEventListGames(items))
}

func (h *ConnectionHandler) handleCreateGame(scratch *containerScratch, cmd *protocol.CommandCreateGame) {
	reply, err := h.engine.Ask(h.registry, createGame{
		Description:       cmd.Description(),
		CreatorName:       h.identity.Name,
		MaxPlayers:        cmd.MaxPlayers(),
		SpectatorsAllowed: cmd.SpectatorsAllowed(),
		Password:          cmd.Password(),
		Seed:              time.Now().UnixNano(),
	}, askTimeout)
	if err != nil {
		scratch.setCode(protocol.RespContextError)
		return
	}
	res, ok := reply.(createGameResult)
	if !ok || res.PID == nil {
		scratch.setCode(protocol.RespInvalid)
		return
	}
	h.joinGamePID(scratch, res.GameID, res.PID, false, "")
}

func (h *ConnectionHandler) handleJoinGame(scratch *containerScratch, cmd *protocol.CommandJoinGame) {
	reply, err := h.engine.Ask(h.registry, findGame{GameID: cmd.GameID()}, askTimeout)
	if err != nil {
		scratch.setCode(protocol.RespContextError)
		return
	}
	res, ok := reply.(findGameResult)
	if !ok || !res.Ok {
		scratch.setCode(protocol.RespNameNotFound)
		return
	}
	h.joinGamePID(scratch, cmd.GameID(), res.PID, cmd.Spectator(), cmd.Password())
}

func (h *ConnectionHandler) joinGamePID(scratch *containerScratch, gameID int, pid *actor.PID, spectator bool, password string) {
	reply, err := h.engine.Ask(pid, gameJoin{
		PlayerName: h.identity.Name,
		Spectator:  spectator,
		Password:   password,
		Conn:       h.selfPID,
	}, askTimeout)
	if err != nil {
		scratch.setCode(protocol.RespContextError)
		return
	}
	res, ok := reply.(gameJoinResult)
	if !ok {
		scratch.setCode(protocol.RespInvalid)
		return
	}
	if res.Err != nil {
		scratch.setCode(mapGameError(res.Err))
		return
	}
	h.currentGameID = gameID
	h.currentGamePID = pid
	h.currentPlayerID = res.PlayerID
	scratch.setCode(protocol.RespOk)
}

// handleLeaveGame covers both an ordinary self-leave and a judge/admin
// kick of another seat (CommandLeaveGame.KickPlayerID set to a seat other
// than the issuer's own, gated on UserLevelJudge).
func (h *ConnectionHandler) handleLeaveGame(scratch *containerScratch, cmd *protocol.CommandLeaveGame) {
	if h.currentGamePID == nil || cmd.GameID() != h.currentGameID {
		scratch.setCode(protocol.RespContextError)
		return
	}

	targetID := h.currentPlayerID
	if kicked, ok := cmd.KickPlayerID(); ok && kicked != h.currentPlayerID {
		if h.identity.Level < UserLevelJudge {
			scratch.setCode(protocol.RespUserLevelTooLow)
			return
		}
		targetID = kicked
	}

	reply, err := h.engine.Ask(h.currentGamePID, gameLeave{PlayerID: targetID}, askTimeout)
	if err != nil {
		scratch.setCode(protocol.RespContextError)
		return
	}
	res, ok := reply.(gameLeaveResult)
	if !ok {
		scratch.setCode(protocol.RespInvalid)
		return
	}
	if res.Err != nil {
		scratch.setCode(mapGameError(res.Err))
		return
	}
	if targetID == h.currentPlayerID {
		h.currentGameID = 0
		h.currentGamePID = nil
		h.currentPlayerID = 0
	}
	scratch.setCode(protocol.RespOk)
}

func (h *ConnectionHandler) handleGameCommand(scratch *containerScratch, cmd gameCommandItem) {
	if h.currentGamePID == nil || cmd.GameID() != h.currentGameID {
		scratch.setCode(protocol.RespContextError)
		return
	}
	reply, err := h.engine.Ask(h.currentGamePID, gameRunCommand{PlayerID: h.currentPlayerID, IssuerLevel: h.identity.Level, Command: cmd}, askTimeout)
	if err != nil {
		scratch.setCode(protocol.RespContextError)
		return
	}
	res, ok := reply.(gameCommandResult)
	if !ok {
		scratch.setCode(protocol.RespInvalid)
		return
	}
	if res.Zone != nil {
		scratch.setResponse(protocol.NewResponseDumpZone(scratch.cmdID, res.Code, res.Zone))
	} else {
		scratch.setCode(res.Code)
	}
	for _, ev := range res.Private {
		scratch.enqueuePrivate(cmd.GameID(), ev)
	}
}
