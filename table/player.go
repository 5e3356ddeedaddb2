package table

import (
	"math/rand"

	"github.com/lguibr/cockatriced/deck"
)

const initialCards = 7

var standardCounters = []struct {
	name  string
	color string
	max   int
	value int
}{
	{"life", "#ffffff", 25, 20},
	{"w", "#ffff96", 20, 0},
	{"u", "#9696ff", 20, 0},
	{"b", "#969696", 20, 0},
	{"r", "#fa9696", 20, 0},
	{"g", "#96ff96", 20, 0},
	{"x", "#ffffff", 20, 0},
	{"storm", "#ffffff", 20, 0},
}

// Player is one seated or spectating participant in a Game. It
// exclusively owns its zones, counters, arrows, and deck; their
// lifetimes end with the player or with a call to ClearZones.
//
// Handler is nil when the player's connection has dropped but the seat
// is preserved (the game continues; a reconnect can reattach a new
// handler to the same Player).
type Player struct {
	Game        *Game
	Handler     interface{} // opaque connection identity; nil means disconnected
	PlayerID    int
	PlayerName  string
	Spectator   bool
	Deck        *deck.List
	DeckID      int
	ReadyStart  bool
	Conceded    bool

	rng *rand.Rand

	nextCardID    int
	nextCounterID int
	nextArrowID   int

	zones    map[string]*Zone
	counters map[int]*Counter
	arrows   map[int]*Arrow
}

// NewPlayer constructs a fresh, seatless Player. rng must be the game's
// shared, per-game-seeded PRNG so shuffles are reproducible in tests.
func NewPlayer(game *Game, playerID int, playerName string, spectator bool, rng *rand.Rand) *Player {
	return &Player{
		Game:       game,
		PlayerID:   playerID,
		PlayerName: playerName,
		Spectator:  spectator,
		DeckID:     -2,
		rng:        rng,
		zones:      make(map[string]*Zone),
		counters:   make(map[int]*Counter),
		arrows:     make(map[int]*Arrow),
	}
}

// Zone returns the named zone, or nil if SetupZones hasn't been called
// (or ClearZones has torn it down).
func (p *Player) Zone(name string) *Zone { return p.zones[name] }

func (p *Player) Zones() map[string]*Zone { return p.zones }

func (p *Player) Counter(id int) *Counter  { return p.counters[id] }
func (p *Player) Counters() map[int]*Counter { return p.counters }
func (p *Player) Arrow(id int) *Arrow      { return p.arrows[id] }
func (p *Player) Arrows() map[int]*Arrow   { return p.arrows }

// SetDeck assigns the deck this player will play with; deckID is the
// session-local deck index the player's connection selected it by.
func (p *Player) SetDeck(d *deck.List, deckID int) {
	p.Deck = d
	p.DeckID = deckID
}

// SetupZones atomically replaces the player's zones, counters, and card
// ids: either every standard zone and counter is built and the deck is
// materialized, fully displacing any previous state, or (on a nil deck)
// nothing changes. Standard zones: deck/sb (hidden, unordered), table
// (public, ordered by coordinates), hand (private, unordered), grave/rfg
// (public, unordered). Standard counters: life=20, five mana pools plus
// x and storm, all starting at 0 except life.
func (p *Player) SetupZones() {
	if p.Deck == nil {
		return
	}

	zones := map[string]*Zone{
		"deck":  newZone("deck", false, VisibilityHidden),
		"sb":    newZone("sb", false, VisibilityHidden),
		"table": newZone("table", true, VisibilityPublic),
		"hand":  newZone("hand", false, VisibilityPrivate),
		"grave": newZone("grave", false, VisibilityPublic),
		"rfg":   newZone("rfg", false, VisibilityPublic),
	}

	counters := make(map[int]*Counter, len(standardCounters))
	for i, c := range standardCounters {
		counters[i] = &Counter{ID: i, Name: c.name, Color: c.color, Max: c.max, Value: c.value}
	}

	nextCardID := 0
	deckCards, sbCards := deck.Materialize(p.Deck)
	for _, mc := range deckCards {
		zones["deck"].Append(newCard(nextCardID, mc.Name))
		nextCardID++
	}
	for _, mc := range sbCards {
		zones["sb"].Append(newCard(nextCardID, mc.Name))
		nextCardID++
	}
	zones["deck"].Shuffle(p.rng)

	p.zones = zones
	p.counters = counters
	p.arrows = make(map[int]*Arrow)
	p.nextCardID = nextCardID
	p.nextCounterID = len(standardCounters)
	p.nextArrowID = 0
}

// ClearZones tears down all zones, counters, and arrows. Nothing in this
// module calls it: SetupZones replaces them wholesale, and Game.Leave
// drops the Player itself.
func (p *Player) ClearZones() {
	p.zones = make(map[string]*Zone)
	p.counters = make(map[int]*Counter)
	p.arrows = make(map[int]*Arrow)
}

// NewCardID allocates the next card id for a card materializing outside
// SetupZones (e.g. a token created mid-game). Never reused.
func (p *Player) NewCardID() int {
	id := p.nextCardID
	p.nextCardID++
	return id
}

// NewCounterID returns the next never-reused counter id, monotonically
// increasing regardless of deletions — clients may retain references to
// a counter by id after a removal event is still in flight.
func (p *Player) NewCounterID() int {
	id := p.nextCounterID
	p.nextCounterID++
	return id
}

// NewArrowID returns the next never-reused arrow id, same rationale as
// NewCounterID.
func (p *Player) NewArrowID() int {
	id := p.nextArrowID
	p.nextArrowID++
	return id
}

// AddCounter registers a new counter, allocating its id.
func (p *Player) AddCounter(name, color string, value int) *Counter {
	c := &Counter{ID: p.NewCounterID(), Name: name, Color: color, Value: value}
	p.counters[c.ID] = c
	return c
}

// DeleteCounter removes a counter by id, returning false if absent.
func (p *Player) DeleteCounter(id int) bool {
	if _, ok := p.counters[id]; !ok {
		return false
	}
	delete(p.counters, id)
	return true
}

// AddArrow registers a new arrow, allocating its id.
func (p *Player) AddArrow(startID, targetID int, color string) *Arrow {
	a := &Arrow{ID: p.NewArrowID(), StartID: startID, TargetID: targetID, Color: color}
	p.arrows[a.ID] = a
	return a
}

// DeleteArrow removes an arrow by id, returning false if absent.
func (p *Player) DeleteArrow(id int) bool {
	if _, ok := p.arrows[id]; !ok {
		return false
	}
	delete(p.arrows, id)
	return true
}

const InitialCards = initialCards
