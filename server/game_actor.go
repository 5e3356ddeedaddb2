package server

import (
	"fmt"

	"github.com/lguibr/cockatriced/actor"
	"github.com/lguibr/cockatriced/protocol"
	"github.com/lguibr/cockatriced/table"
	"github.com/sirupsen/logrus"
)

func init() {
	protocol.RegisterGeneric("server_info_counter", "", map[string]protocol.AttrKind{
		"id": protocol.KindInt, "max": protocol.KindInt, "value": protocol.KindInt,
	})
	protocol.RegisterGeneric("server_info_arrow", "", map[string]protocol.AttrKind{
		"id": protocol.KindInt, "start_id": protocol.KindInt, "target_id": protocol.KindInt,
	})
	protocol.RegisterGeneric("server_info_zone", "", map[string]protocol.AttrKind{
		"ordered": protocol.KindBool, "visibility": protocol.KindInt,
	})
	protocol.RegisterGeneric("server_info_card", "", map[string]protocol.AttrKind{
		"id": protocol.KindInt, "x": protocol.KindInt, "y": protocol.KindInt, "tapped": protocol.KindBool, "attacking": protocol.KindBool,
	})
}

// GameActor is the per-game actor (C6) wrapping a table.Game. The actor
// mailbox is the game's lock: Game itself holds no synchronization and
// stays independently unit-testable, while every exported method here
// only ever runs on this actor's single goroutine.
type GameActor struct {
	engine   *actor.Engine
	registry *actor.PID
	selfPID  *actor.PID
	log      *logrus.Entry

	game  *table.Game
	conns map[int]*actor.PID
}

func NewGameActorProducer(engine *actor.Engine, registry *actor.PID, id int, description, creatorName string, maxPlayers int, spectatorsAllowed bool, password string, seed int64) actor.Producer {
	return func() actor.Actor {
		return &GameActor{
			engine:   engine,
			registry: registry,
			log:      logrus.WithField("component", "game").WithField("game_id", id),
			game:     table.NewGame(id, description, creatorName, maxPlayers, spectatorsAllowed, password, seed),
			conns:    make(map[int]*actor.PID),
		}
	}
}

func (g *GameActor) Receive(ctx actor.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			g.log.WithField("panic", rec).Error("game actor panicked")
			if ctx.RequestID() != "" {
				ctx.Reply(fmt.Errorf("game: internal error: %v", rec))
			}
		}
	}()

	if g.selfPID == nil {
		g.selfPID = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case actor.Started:
		g.log.Info("game started")

	case gameJoin:
		g.handleJoin(ctx, msg)

	case gameLeave:
		g.handleLeave(ctx, msg)

	case gameDisconnect:
		g.handleDisconnect(msg)

	case gameSetDeck:
		err := g.game.SetDeck(msg.PlayerID, msg.Deck, msg.DeckID)
		ctx.Reply(gameSetDeckResult{Err: err})

	case gameRunCommand:
		ctx.Reply(g.handleRunCommand(msg))

	case querySummary:
		ctx.Reply(querySummaryResult{Players: len(g.game.Players()), Started: g.game.Phase != table.PhaseLobby})

	case actor.Stopping:
		g.log.Info("game stopping")

	case actor.Stopped:
		g.log.Info("game stopped")
	}
}

func (g *GameActor) handleJoin(ctx actor.Context, msg gameJoin) {
	player, err := g.game.Join(msg.PlayerName, msg.Spectator, msg.Password)
	if err != nil {
		ctx.Reply(gameJoinResult{Err: err})
		return
	}
	player.Handler = msg.Conn
	g.conns[player.PlayerID] = msg.Conn
	g.broadcastPublic([]protocol.Item{protocol.NewEventJoin(player.PlayerID, playerInfoItem(player))})
	ctx.Reply(gameJoinResult{PlayerID: player.PlayerID})
}

func (g *GameActor) handleLeave(ctx actor.Context, msg gameLeave) {
	err := g.game.Leave(msg.PlayerID)
	if err != nil {
		ctx.Reply(gameLeaveResult{Err: err})
		return
	}
	delete(g.conns, msg.PlayerID)
	g.broadcastPublic([]protocol.Item{protocol.NewEventLeave(msg.PlayerID)})
	ctx.Reply(gameLeaveResult{})
	g.checkTerminal()
}

// handleDisconnect is fire-and-forget: a dropped connection never blocks
// waiting on the game, it just updates seat state and lets the game
// continue (or end, if nobody with a live handler remains).
func (g *GameActor) handleDisconnect(msg gameDisconnect) {
	g.game.Disconnect(msg.PlayerID)
	delete(g.conns, msg.PlayerID)
	g.broadcastPublic([]protocol.Item{g.game.StateChangedEvent()})
	g.checkTerminal()
}

func (g *GameActor) handleRunCommand(msg gameRunCommand) gameCommandResult {
	player := g.game.Player(msg.PlayerID)
	if player == nil {
		if _, ok := g.game.Spectators()[msg.PlayerID]; ok {
			return gameCommandResult{Code: protocol.RespSpectatorsNotAllowed}
		}
		return gameCommandResult{Code: protocol.RespNameNotFound}
	}

	switch cmd := msg.Command.(type) {
	case *protocol.CommandReadyStart:
		if player.Spectator {
			return gameCommandResult{Code: protocol.RespSpectatorsNotAllowed}
		}
		if err := g.game.ReadyStart(msg.PlayerID, cmd.Ready()); err != nil {
			return gameCommandResult{Code: mapGameError(err)}
		}
		g.broadcastPublic([]protocol.Item{g.game.StateChangedEvent()})
		return gameCommandResult{Code: protocol.RespOk}

	case *protocol.CommandConcede:
		if err := g.game.Concede(msg.PlayerID); err != nil {
			return gameCommandResult{Code: mapGameError(err)}
		}
		g.broadcastPublic([]protocol.Item{g.game.StateChangedEvent()})
		g.checkTerminal()
		return gameCommandResult{Code: protocol.RespOk}

	case *protocol.CommandDrawCards:
		if player.Spectator {
			return gameCommandResult{Code: protocol.RespSpectatorsNotAllowed}
		}
		cards, err := g.game.DrawCards(msg.PlayerID, cmd.NumberCards())
		if err != nil {
			return gameCommandResult{Code: mapGameError(err)}
		}
		cardItems := make([]protocol.Item, 0, len(cards))
		for _, c := range cards {
			cardItems = append(cardItems, cardItem(c))
		}
		private := protocol.NewEventDrawCards(msg.PlayerID, len(cards), cardItems)
		g.broadcastPublicExcept(msg.PlayerID, []protocol.Item{protocol.NewEventDrawCards(msg.PlayerID, len(cards), nil)})
		return gameCommandResult{Code: protocol.RespOk, Private: []protocol.Item{private}}

	case *protocol.CommandCreateCounter:
		counter, err := g.game.CreateCounter(msg.PlayerID, cmd.Name(), cmd.Color(), cmd.Value())
		if err != nil {
			return gameCommandResult{Code: mapGameError(err)}
		}
		g.broadcastPublic([]protocol.Item{protocol.NewEventCreateCounters(msg.PlayerID, []protocol.Item{counterItem(counter)})})
		return gameCommandResult{Code: protocol.RespOk}

	case *protocol.CommandCreateArrow:
		arrow, err := g.game.CreateArrow(msg.PlayerID, cmd.StartID(), cmd.TargetID(), cmd.Color())
		if err != nil {
			return gameCommandResult{Code: mapGameError(err)}
		}
		g.broadcastPublic([]protocol.Item{protocol.NewEventCreateArrows(msg.PlayerID, []protocol.Item{arrowItem(arrow)})})
		return gameCommandResult{Code: protocol.RespOk}

	case *protocol.CommandDumpZone:
		zone, err := g.game.DumpZone(cmd.PlayerID(), cmd.ZoneName())
		if err != nil {
			return gameCommandResult{Code: mapGameError(err)}
		}
		return gameCommandResult{Code: protocol.RespOk, Zone: zoneItem(zone)}

	case *protocol.CommandAdvancePhase:
		if err := g.game.AdvancePhase(msg.PlayerID, g.isAdmin(msg.PlayerID, msg.IssuerLevel)); err != nil {
			return gameCommandResult{Code: mapGameError(err)}
		}
		g.broadcastPublic([]protocol.Item{g.game.StateChangedEvent()})
		return gameCommandResult{Code: protocol.RespOk}

	default:
		return gameCommandResult{Code: protocol.RespInvalid}
	}
}

func mapGameError(err error) protocol.ResponseCode {
	switch err {
	case table.ErrWrongPassword:
		return protocol.RespWrong
	case table.ErrSpectatorsBarred:
		return protocol.RespSpectatorsNotAllowed
	case table.ErrSpectatorAction:
		return protocol.RespSpectatorsNotAllowed
	case table.ErrGameFull, table.ErrGameNotActive, table.ErrNotActivePlayer:
		return protocol.RespContextError
	case table.ErrPlayerNotFound:
		return protocol.RespNameNotFound
	default:
		return protocol.RespInvalid
	}
}

// isAdmin reports whether playerID may bypass an active-player-only
// check: either the issuer holds judge/admin level, or the issuer is
// the seat that created the game (mirroring handleLeaveGame's kick
// gate, which uses UserLevelJudge for the same purpose).
func (g *GameActor) isAdmin(playerID int, level UserLevel) bool {
	if level >= UserLevelJudge {
		return true
	}
	if p := g.game.Player(playerID); p != nil && p.PlayerName == g.game.CreatorName {
		return true
	}
	return false
}

// checkTerminal mirrors table.Game.Concede's "every seated player is
// conceded or disconnected" check, so a Leave/Disconnect that leaves no
// live seat behind also retires the game, not just an explicit concede.
func (g *GameActor) checkTerminal() {
	if g.game.Phase == table.PhaseTerminal {
		g.notifyAndStop()
		return
	}
	if len(g.game.Players()) == 0 {
		return
	}
	for _, p := range g.game.Players() {
		if !p.Conceded && p.Handler != nil {
			return
		}
	}
	g.game.Phase = table.PhaseTerminal
	g.notifyAndStop()
}

func (g *GameActor) notifyAndStop() {
	g.broadcastPublic([]protocol.Item{g.game.StateChangedEvent()})
	g.engine.Send(g.registry, gameEmpty{GameID: g.game.ID}, g.selfPID)
	g.engine.Stop(g.selfPID)
}

func (g *GameActor) broadcastPublic(events []protocol.Item) {
	g.broadcastPublicExcept(-1, events)
}

// broadcastPublicExcept pushes events to every currently connected
// player/spectator except exceptPlayerID (-1 excludes nobody). Each
// recipient gets the same GameEventContainer instance; pushItem never
// mutates it.
func (g *GameActor) broadcastPublicExcept(exceptPlayerID int, events []protocol.Item) {
	container := protocol.NewGameEventContainer(g.game.ID, events, nil)
	for playerID, pid := range g.conns {
		if playerID == exceptPlayerID {
			continue
		}
		g.engine.Send(pid, pushItem{Item: container}, g.selfPID)
	}
}

func playerInfoItem(p *table.Player) protocol.Item {
	item := protocol.NewGenericItem("server_info_player", "")
	item.Attrs().Set("player_id", protocol.IntAttr(p.PlayerID))
	item.Attrs().Set("player_name", protocol.StringAttr(p.PlayerName))
	item.Attrs().Set("spectator", protocol.BoolAttr(p.Spectator))
	item.Attrs().Set("conceded", protocol.BoolAttr(p.Conceded))
	item.Attrs().Set("ready_start", protocol.BoolAttr(p.ReadyStart))
	return item
}

func counterItem(c *table.Counter) protocol.Item {
	item := protocol.NewGenericItem("server_info_counter", "")
	item.Attrs().Set("id", protocol.IntAttr(c.ID))
	item.Attrs().Set("name", protocol.StringAttr(c.Name))
	item.Attrs().Set("color", protocol.ColorAttr(c.Color))
	item.Attrs().Set("max", protocol.IntAttr(c.Max))
	item.Attrs().Set("value", protocol.IntAttr(c.Value))
	return item
}

func arrowItem(a *table.Arrow) protocol.Item {
	item := protocol.NewGenericItem("server_info_arrow", "")
	item.Attrs().Set("id", protocol.IntAttr(a.ID))
	item.Attrs().Set("start_id", protocol.IntAttr(a.StartID))
	item.Attrs().Set("target_id", protocol.IntAttr(a.TargetID))
	item.Attrs().Set("color", protocol.ColorAttr(a.Color))
	return item
}

func cardItem(c *table.Card) protocol.Item {
	item := protocol.NewGenericItem("server_info_card", "")
	item.Attrs().Set("id", protocol.IntAttr(c.ID))
	item.Attrs().Set("name", protocol.StringAttr(c.Name))
	item.Attrs().Set("x", protocol.IntAttr(c.X))
	item.Attrs().Set("y", protocol.IntAttr(c.Y))
	item.Attrs().Set("tapped", protocol.BoolAttr(c.Tapped))
	item.Attrs().Set("attacking", protocol.BoolAttr(c.Attacking))
	return item
}

// zoneItem reports every card in the zone regardless of Visibility; the
// connection handler deciding who gets to see a dump_zone response is a
// later authorization concern, not this rendering step.
func zoneItem(z *table.Zone) protocol.Item {
	item := protocol.NewGenericItem("server_info_zone", "")
	item.Attrs().Set("name", protocol.StringAttr(z.Name))
	item.Attrs().Set("ordered", protocol.BoolAttr(z.Ordered))
	item.Attrs().Set("visibility", protocol.IntAttr(int(z.Visibility)))
	for _, c := range z.Cards {
		item.AddChild(cardItem(c))
	}
	return item
}
