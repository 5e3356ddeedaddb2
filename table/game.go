package table

import (
	"errors"
	"math/rand"

	"github.com/lguibr/cockatriced/deck"
	"github.com/lguibr/cockatriced/protocol"
)

// Phase is the game's lifecycle state. Nothing outside this package
// advances it directly; it only ever changes as a side effect of the
// command pipeline methods below.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseActive
	PhaseTerminal
)

func init() {
	protocol.RegisterGeneric("server_info_player", "", map[string]protocol.AttrKind{
		"player_id":   protocol.KindInt,
		"conceded":    protocol.KindBool,
		"ready_start": protocol.KindBool,
		"spectator":   protocol.KindBool,
	})
}

var (
	ErrGameFull        = errors.New("table: game is full")
	ErrSpectatorsBarred = errors.New("table: spectators not allowed in this game")
	ErrWrongPassword    = errors.New("table: wrong password")
	ErrPlayerNotFound   = errors.New("table: player not found")
	ErrNotActivePlayer  = errors.New("table: issuer is not the active player")
	ErrGameNotActive    = errors.New("table: action not allowed in the game's current phase")
	ErrSpectatorAction  = errors.New("table: spectators may not perform this action")
)

// Game is one running table: its seated players, spectators, and
// lifecycle phase. A Game exclusively owns its Players; a Player
// exclusively owns its zones/counters/arrows/deck. Nothing outside the
// goroutine driving this Game's actor wrapper (see server.GameActor)
// ever calls these methods concurrently, so Game itself holds no locks —
// the actor mailbox it's driven from is the lock.
type Game struct {
	ID                int
	Description       string
	CreatorName       string
	MaxPlayers        int
	SpectatorsAllowed bool
	password          string

	Phase        Phase
	ActivePlayer int
	ActivePhase  int

	rng *rand.Rand

	players      map[int]*Player
	spectators   map[int]*Player
	nextPlayerID int
}

// NewGame constructs an empty Lobby-phase game. seed controls the PRNG
// every seated player's deck shuffles are derived from, letting tests
// reproduce a specific shuffle.
func NewGame(id int, description, creatorName string, maxPlayers int, spectatorsAllowed bool, password string, seed int64) *Game {
	return &Game{
		ID:                id,
		Description:       description,
		CreatorName:       creatorName,
		MaxPlayers:        maxPlayers,
		SpectatorsAllowed: spectatorsAllowed,
		password:          password,
		ActivePlayer:      -1,
		ActivePhase:       -1,
		rng:               rand.New(rand.NewSource(seed)),
		players:           make(map[int]*Player),
		spectators:        make(map[int]*Player),
	}
}

func (g *Game) Players() map[int]*Player    { return g.players }
func (g *Game) Spectators() map[int]*Player { return g.spectators }
func (g *Game) Player(id int) *Player       { return g.players[id] }

func (g *Game) seatedCount() int { return len(g.players) }

// Join seats playerName as a new player (or spectator) in the game,
// returning the new Player. Password mismatches and a full non-spectator
// roster are rejected; spectators are rejected outright if the game
// disallows them.
func (g *Game) Join(playerName string, spectator bool, password string) (*Player, error) {
	if g.password != "" && password != g.password {
		return nil, ErrWrongPassword
	}
	if spectator && !g.SpectatorsAllowed {
		return nil, ErrSpectatorsBarred
	}
	if !spectator && g.Phase != PhaseLobby {
		return nil, ErrGameNotActive
	}
	if !spectator && g.seatedCount() >= g.MaxPlayers {
		return nil, ErrGameFull
	}

	id := g.nextPlayerID
	g.nextPlayerID++

	player := NewPlayer(g, id, playerName, spectator, g.rng)
	if spectator {
		g.spectators[id] = player
	} else {
		g.players[id] = player
	}
	return player, nil
}

// Leave removes playerID from the game. If the departing player was the
// last non-spectator, the game transitions to Terminal.
func (g *Game) Leave(playerID int) error {
	if _, ok := g.spectators[playerID]; ok {
		delete(g.spectators, playerID)
		return nil
	}
	if _, ok := g.players[playerID]; !ok {
		return ErrPlayerNotFound
	}
	delete(g.players, playerID)
	if len(g.players) == 0 {
		g.Phase = PhaseTerminal
	}
	return nil
}

// Disconnect marks playerID's seat as handler-less without removing it:
// the seat persists and the game continues, pending reconnection.
func (g *Game) Disconnect(playerID int) {
	if p, ok := g.players[playerID]; ok {
		p.Handler = nil
	}
}

// SetDeck assigns a decklist and its session-local deck index to a seated
// player and materializes their zones from it.
func (g *Game) SetDeck(playerID int, d *deck.List, deckID int) error {
	player, ok := g.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	player.SetDeck(d, deckID)
	player.SetupZones()
	return nil
}

// ReadyStart marks playerID ready (or not). If every seated player is
// now ready, the game transitions Lobby -> Active.
func (g *Game) ReadyStart(playerID int, ready bool) error {
	player, ok := g.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	player.ReadyStart = ready

	if g.Phase == PhaseLobby && g.allReady() {
		g.Phase = PhaseActive
		g.ActivePlayer = g.firstPlayerID()
		g.ActivePhase = 0
	}
	return nil
}

func (g *Game) allReady() bool {
	if len(g.players) == 0 {
		return false
	}
	for _, p := range g.players {
		if !p.ReadyStart {
			return false
		}
	}
	return true
}

func (g *Game) firstPlayerID() int {
	min := -1
	for id := range g.players {
		if min == -1 || id < min {
			min = id
		}
	}
	return min
}

// Concede forfeits playerID's seat without removing it from the game. If
// every non-spectator has now conceded or disconnected, the game
// transitions to Terminal.
func (g *Game) Concede(playerID int) error {
	player, ok := g.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	player.Conceded = true

	allDone := true
	for _, p := range g.players {
		if !p.Conceded && p.Handler != nil {
			allDone = false
			break
		}
	}
	if allDone {
		g.Phase = PhaseTerminal
	}
	return nil
}

// DrawCards moves n cards from playerID's deck zone to their hand zone,
// returning the drawn cards in draw order.
func (g *Game) DrawCards(playerID, n int) ([]*Card, error) {
	player, ok := g.players[playerID]
	if !ok {
		if _, isSpectator := g.spectators[playerID]; isSpectator {
			return nil, ErrSpectatorAction
		}
		return nil, ErrPlayerNotFound
	}
	if player.Spectator {
		return nil, ErrSpectatorAction
	}

	deckZone := player.Zone("deck")
	handZone := player.Zone("hand")
	if deckZone == nil || handZone == nil {
		return nil, errors.New("table: player has no zones set up")
	}

	drawn := make([]*Card, 0, n)
	for i := 0; i < n && len(deckZone.Cards) > 0; i++ {
		c := deckZone.Cards[0]
		deckZone.Cards = deckZone.Cards[1:]
		handZone.Append(c)
		drawn = append(drawn, c)
	}
	return drawn, nil
}

// CreateCounter adds a counter to playerID, returning it.
func (g *Game) CreateCounter(playerID int, name, color string, value int) (*Counter, error) {
	player, ok := g.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return player.AddCounter(name, color, value), nil
}

// CreateArrow adds an arrow owned by playerID, returning it.
func (g *Game) CreateArrow(playerID, startID, targetID int, color string) (*Arrow, error) {
	player, ok := g.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return player.AddArrow(startID, targetID, color), nil
}

// AdvancePhase validates issuerID is the current active player before
// moving to the next phase/turn. isAdmin lets a judge/admin or the
// game's creator (a server-level notion this package has no view of)
// bypass the active-player check; the game must still be Active either
// way.
func (g *Game) AdvancePhase(issuerID int, isAdmin bool) error {
	if g.Phase != PhaseActive {
		return ErrGameNotActive
	}
	if issuerID != g.ActivePlayer && !isAdmin {
		return ErrNotActivePlayer
	}
	g.ActivePhase++
	return nil
}

// DumpZone returns a snapshot of playerID's named zone, for reconnection
// resync or admin inspection.
func (g *Game) DumpZone(playerID int, zoneName string) (*Zone, error) {
	player, ok := g.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	zone := player.Zone(zoneName)
	if zone == nil {
		return nil, errors.New("table: zone not found: " + zoneName)
	}
	return zone, nil
}

// StateChangedEvent builds the Event_GameStateChanged payload reflecting
// the game's current phase/turn and every seated player's public
// properties.
func (g *Game) StateChangedEvent() protocol.Item {
	playerItems := make([]protocol.Item, 0, len(g.players))
	for _, p := range g.players {
		item := protocol.NewGenericItem("server_info_player", "")
		item.Attrs().Set("player_id", protocol.IntAttr(p.PlayerID))
		item.Attrs().Set("player_name", protocol.StringAttr(p.PlayerName))
		item.Attrs().Set("conceded", protocol.BoolAttr(p.Conceded))
		item.Attrs().Set("ready_start", protocol.BoolAttr(p.ReadyStart))
		playerItems = append(playerItems, item)
	}
	return protocol.NewEventGameStateChanged(g.Phase == PhaseActive, g.ActivePlayer, g.ActivePhase, playerItems)
}
