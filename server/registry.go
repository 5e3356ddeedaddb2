package server

import (
	"fmt"
	"time"

	"github.com/lguibr/cockatriced/actor"
	"github.com/sirupsen/logrus"
)

const summaryAskTimeout = 500 * time.Millisecond

// registeredGame is what the registry remembers about an open game
// without reaching into it; live state (player count, started) is
// queried from the GameActor itself on demand.
type registeredGame struct {
	PID               *actor.PID
	Description       string
	CreatorName       string
	MaxPlayers        int
	SpectatorsAllowed bool
}

// Registry is the server-wide actor (C8): it owns the map of open games
// and named chat channels. Every room/game/channel lookup or mutation
// funnels through this one mailbox, which is what the concurrency
// model's "registry lock" actually is. It only ever sends fire-and-forget
// messages or bounded Asks toward a game, and a game only ever notifies
// it fire-and-forget (gameEmpty) — so the registry->game lock order can
// never cycle back through the registry.
type Registry struct {
	engine  *actor.Engine
	selfPID *actor.PID
	log     *logrus.Entry

	maxGames        int
	chatHistorySize int
	nextGameID      int
	games           map[int]*registeredGame
	channels        map[string]*actor.PID
}

// NewRegistryProducer builds the registry actor. maxGames caps the number
// of simultaneously open games (0 means unbounded), matching the
// --max-games-per-room config knob; chatHistorySize bounds how many
// recent messages each lazily-spawned chat channel replays to new joiners.
func NewRegistryProducer(engine *actor.Engine, maxGames, chatHistorySize int) actor.Producer {
	return func() actor.Actor {
		return &Registry{
			engine:          engine,
			log:             logrus.WithField("component", "registry"),
			maxGames:        maxGames,
			chatHistorySize: chatHistorySize,
			games:           make(map[int]*registeredGame),
			channels:        make(map[string]*actor.PID),
		}
	}
}

func (r *Registry) Receive(ctx actor.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("panic", rec).Error("registry actor panicked")
			if ctx.RequestID() != "" {
				ctx.Reply(fmt.Errorf("registry: internal error: %v", rec))
			}
		}
	}()

	if r.selfPID == nil {
		r.selfPID = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case actor.Started:
		r.log.Info("registry started")

	case createGame:
		r.handleCreateGame(ctx, msg)

	case findGame:
		if g, ok := r.games[msg.GameID]; ok {
			ctx.Reply(findGameResult{PID: g.PID, Ok: true})
		} else {
			ctx.Reply(findGameResult{Ok: false})
		}

	case listGames:
		ctx.Reply(r.handleListGames())

	case gameEmpty:
		if g, ok := r.games[msg.GameID]; ok {
			delete(r.games, msg.GameID)
			r.log.WithField("game_id", msg.GameID).Info("game emptied, removing from registry")
			r.engine.Stop(g.PID)
		}

	case getOrCreateChatChannel:
		ctx.Reply(getOrCreateChatChannelResult{PID: r.handleGetOrCreateChannel(msg.Channel)})

	case listChatChannels:
		names := make([]string, 0, len(r.channels))
		for name := range r.channels {
			names = append(names, name)
		}
		ctx.Reply(listChatChannelsResult{Channels: names})

	case actor.Stopping:
		r.log.Info("registry stopping, tearing down games and channels")
		for _, g := range r.games {
			r.engine.Stop(g.PID)
		}
		for _, pid := range r.channels {
			r.engine.Stop(pid)
		}

	case actor.Stopped:
		r.log.Info("registry stopped")
	}
}

func (r *Registry) handleCreateGame(ctx actor.Context, msg createGame) {
	if r.maxGames > 0 && len(r.games) >= r.maxGames {
		r.log.WithField("max_games", r.maxGames).Warn("refusing to create game, room is at capacity")
		ctx.Reply(createGameResult{})
		return
	}

	id := r.nextGameID
	r.nextGameID++

	props := actor.NewProps(NewGameActorProducer(r.engine, r.selfPID, id, msg.Description, msg.CreatorName, msg.MaxPlayers, msg.SpectatorsAllowed, msg.Password, msg.Seed))
	pid := r.engine.SpawnNamed(props, "game")
	if pid == nil {
		r.log.WithField("game_id", id).Error("failed to spawn game actor")
		ctx.Reply(createGameResult{})
		return
	}

	r.games[id] = &registeredGame{
		PID:               pid,
		Description:       msg.Description,
		CreatorName:       msg.CreatorName,
		MaxPlayers:        msg.MaxPlayers,
		SpectatorsAllowed: msg.SpectatorsAllowed,
	}
	ctx.Reply(createGameResult{GameID: id, PID: pid})
}

func (r *Registry) handleListGames() listGamesResult {
	result := listGamesResult{Games: make([]gameSummary, 0, len(r.games))}
	for id, g := range r.games {
		summary := gameSummary{
			GameID:            id,
			Description:       g.Description,
			CreatorName:       g.CreatorName,
			MaxPlayers:        g.MaxPlayers,
			SpectatorsAllowed: g.SpectatorsAllowed,
		}
		reply, err := r.engine.Ask(g.PID, querySummary{}, summaryAskTimeout)
		if err != nil {
			r.log.WithField("game_id", id).Warn("timed out querying game summary")
		} else if s, ok := reply.(querySummaryResult); ok {
			summary.Players = s.Players
			summary.Started = s.Started
		}
		result.Games = append(result.Games, summary)
	}
	return result
}

func (r *Registry) handleGetOrCreateChannel(name string) *actor.PID {
	if pid, ok := r.channels[name]; ok {
		return pid
	}
	pid := r.engine.SpawnNamed(actor.NewProps(NewChatChannelProducer(r.engine, name, r.chatHistorySize)), "chat")
	r.channels[name] = pid
	return pid
}
