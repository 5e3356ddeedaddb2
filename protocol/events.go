package protocol

// GenericEvent is a server-initiated item with no further addressing
// (not scoped to a chat channel or a game).
type GenericEvent struct {
	base
}

func newGenericEvent(id ItemID, eventName string) GenericEvent {
	return GenericEvent{base: newBase(id, "generic_event", eventName)}
}

// ChatEvent is a server-initiated item scoped to a chat channel.
type ChatEvent struct {
	base
}

func newChatEvent(id ItemID, eventName, channel string) ChatEvent {
	e := ChatEvent{base: newBase(id, "chat_event", eventName)}
	e.Attrs().Set("channel", StringAttr(channel))
	return e
}

func (e *ChatEvent) Channel() string { return e.Attrs().String("channel") }

// GameEvent is a server-initiated item scoped to a game and attributed
// to the player who caused it (playerID -1 for events with no author,
// e.g. system-initiated phase changes).
type GameEvent struct {
	base
}

func newGameEvent(id ItemID, eventName string, playerID int) GameEvent {
	e := GameEvent{base: newBase(id, "game_event", eventName)}
	e.Attrs().Set("player_id", IntAttr(playerID))
	return e
}

func (e *GameEvent) PlayerID() int { return e.Attrs().Int("player_id") }

func (e *GameEvent) attrKinds() map[string]AttrKind {
	return map[string]AttrKind{"player_id": KindInt, "number_cards": KindInt, "active_player": KindInt, "active_phase": KindInt, "game_started": KindBool}
}

// GameEventContext is an optional machine-readable cause tag attached to
// a GameEventContainer (e.g. "undo_draw").
type GameEventContext struct {
	base
}

func NewGameEventContext(name string) *GameEventContext {
	return &GameEventContext{base: newBase(ItemIDInvalid, "game_event_context", name)}
}

// --- Concrete events ---

// EventListChatChannels enumerates the chat channels available to join.
type EventListChatChannels struct {
	GenericEvent
}

func NewEventListChatChannels(channels []Item) *EventListChatChannels {
	e := &EventListChatChannels{GenericEvent: newGenericEvent(ItemIDEventListChatChannels, "list_chat_channels")}
	for _, c := range channels {
		e.AddChild(c)
	}
	return e
}

// EventChatListPlayers enumerates users present in a chat channel.
type EventChatListPlayers struct {
	ChatEvent
}

func NewEventChatListPlayers(channel string, players []Item) *EventChatListPlayers {
	e := &EventChatListPlayers{ChatEvent: newChatEvent(ItemIDEventChatListPlayers, "chat_list_players", channel)}
	for _, p := range players {
		e.AddChild(p)
	}
	return e
}

// EventChatSay relays a chat message to channel members.
type EventChatSay struct {
	ChatEvent
}

func NewEventChatSay(channel, name, message string) *EventChatSay {
	e := &EventChatSay{ChatEvent: newChatEvent(ItemIDEventChatSay, "say", channel)}
	e.Attrs().Set("name", StringAttr(name))
	e.Attrs().Set("message", StringAttr(message))
	return e
}

func (e *EventChatSay) Name() string    { return e.Attrs().String("name") }
func (e *EventChatSay) Message() string { return e.Attrs().String("message") }

// EventListGames enumerates games visible in a room.
type EventListGames struct {
	GenericEvent
}

func NewEventListGames(games []Item) *EventListGames {
	e := &EventListGames{GenericEvent: newGenericEvent(ItemIDEventListGames, "list_games")}
	for _, g := range games {
		e.AddChild(g)
	}
	return e
}

// EventJoin announces a player or spectator joining a game.
type EventJoin struct {
	GameEvent
}

func NewEventJoin(playerID int, playerProperties Item) *EventJoin {
	e := &EventJoin{GameEvent: newGameEvent(ItemIDEventJoin, "join", playerID)}
	if playerProperties != nil {
		e.AddChild(playerProperties)
	}
	return e
}

// EventLeave announces a player or spectator leaving a game.
type EventLeave struct {
	GameEvent
}

func NewEventLeave(playerID int) *EventLeave {
	return &EventLeave{GameEvent: newGameEvent(ItemIDEventLeave, "leave", playerID)}
}

// EventGameStateChanged reports the current turn/phase and per-player
// public state.
type EventGameStateChanged struct {
	GameEvent
}

func NewEventGameStateChanged(gameStarted bool, activePlayer, activePhase int, players []Item) *EventGameStateChanged {
	e := &EventGameStateChanged{GameEvent: newGameEvent(ItemIDEventGameStateChanged, "game_state_changed", -1)}
	e.Attrs().Set("game_started", BoolAttr(gameStarted))
	e.Attrs().Set("active_player", IntAttr(activePlayer))
	e.Attrs().Set("active_phase", IntAttr(activePhase))
	for _, p := range players {
		e.AddChild(p)
	}
	return e
}

func (e *EventGameStateChanged) GameStarted() bool  { return e.Attrs().Bool("game_started") }
func (e *EventGameStateChanged) ActivePlayer() int  { return e.Attrs().Int("active_player") }
func (e *EventGameStateChanged) ActivePhase() int   { return e.Attrs().Int("active_phase") }

// EventPlayerPropertiesChanged reports a change to one player's public
// properties (conceded, ready, spectator, etc).
type EventPlayerPropertiesChanged struct {
	GameEvent
}

func NewEventPlayerPropertiesChanged(playerID int, properties Item) *EventPlayerPropertiesChanged {
	e := &EventPlayerPropertiesChanged{GameEvent: newGameEvent(ItemIDEventPlayerPropertiesChanged, "player_properties_changed", playerID)}
	if properties != nil {
		e.AddChild(properties)
	}
	return e
}

// EventCreateArrows announces new arrows pointing between objects.
type EventCreateArrows struct {
	GameEvent
}

func NewEventCreateArrows(playerID int, arrows []Item) *EventCreateArrows {
	e := &EventCreateArrows{GameEvent: newGameEvent(ItemIDEventCreateArrows, "create_arrows", playerID)}
	for _, a := range arrows {
		e.AddChild(a)
	}
	return e
}

// EventCreateCounters announces new counters on the battlefield.
type EventCreateCounters struct {
	GameEvent
}

func NewEventCreateCounters(playerID int, counters []Item) *EventCreateCounters {
	e := &EventCreateCounters{GameEvent: newGameEvent(ItemIDEventCreateCounters, "create_counters", playerID)}
	for _, c := range counters {
		e.AddChild(c)
	}
	return e
}

// EventDrawCards announces cards moving from deck to hand.
type EventDrawCards struct {
	GameEvent
}

func NewEventDrawCards(playerID, numberCards int, cards []Item) *EventDrawCards {
	e := &EventDrawCards{GameEvent: newGameEvent(ItemIDEventDrawCards, "draw_cards", playerID)}
	e.Attrs().Set("number_cards", IntAttr(numberCards))
	for _, c := range cards {
		e.AddChild(c)
	}
	return e
}

func (e *EventDrawCards) NumberCards() int { return e.Attrs().Int("number_cards") }

// EventPing carries round-trip latency samples for connected players.
type EventPing struct {
	GameEvent
}

func NewEventPing(pings []Item) *EventPing {
	e := &EventPing{GameEvent: newGameEvent(ItemIDEventPing, "ping", -1)}
	for _, p := range pings {
		e.AddChild(p)
	}
	return e
}

func init() {
	Register("generic_event", "list_chat_channels", func() Item { return NewEventListChatChannels(nil) })
	Register("generic_event", "list_games", func() Item { return NewEventListGames(nil) })
	Register("chat_event", "chat_list_players", func() Item { return NewEventChatListPlayers("", nil) })
	Register("chat_event", "say", func() Item { return NewEventChatSay("", "", "") })
	Register("game_event", "join", func() Item { return NewEventJoin(-1, nil) })
	Register("game_event", "leave", func() Item { return NewEventLeave(-1) })
	Register("game_event", "game_state_changed", func() Item { return NewEventGameStateChanged(false, -1, -1, nil) })
	Register("game_event", "player_properties_changed", func() Item { return NewEventPlayerPropertiesChanged(-1, nil) })
	Register("game_event", "create_arrows", func() Item { return NewEventCreateArrows(-1, nil) })
	Register("game_event", "create_counters", func() Item { return NewEventCreateCounters(-1, nil) })
	Register("game_event", "draw_cards", func() Item { return NewEventDrawCards(-1, 0, nil) })
	Register("game_event", "ping", func() Item { return NewEventPing(nil) })
}
