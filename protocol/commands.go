package protocol

// Command is the base of every client-initiated ProtocolItem. extraData
// is server-local bookkeeping (e.g. which connection issued it) and is
// deliberately not part of Attrs — it never touches the wire.
type Command struct {
	base
	extraData interface{}
}

func newCommand(id ItemID, cmdName string) Command {
	return Command{base: newBase(id, "command", cmdName)}
}

func (c *Command) CommandName() string         { return c.ItemSubType() }
func (c *Command) SetExtraData(v interface{})  { c.extraData = v }
func (c *Command) ExtraData() interface{}      { return c.extraData }

// ChatCommand is a Command scoped to a chat channel.
type ChatCommand struct {
	Command
}

func newChatCommand(id ItemID, cmdName, channel string) ChatCommand {
	c := ChatCommand{Command: newCommand(id, cmdName)}
	c.Attrs().Set("channel", StringAttr(channel))
	return c
}

func (c *ChatCommand) Channel() string { return c.Attrs().String("channel") }

// GameCommand is a Command scoped to a running game.
type GameCommand struct {
	Command
}

func newGameCommand(id ItemID, cmdName string, gameID int) GameCommand {
	c := GameCommand{Command: newCommand(id, cmdName)}
	c.Attrs().Set("game_id", IntAttr(gameID))
	return c
}

func (c *GameCommand) GameID() int          { return c.Attrs().Int("game_id") }
func (c *GameCommand) SetGameID(gameID int) { c.Attrs().Set("game_id", IntAttr(gameID)) }

func (c *Command) attrKinds() map[string]AttrKind {
	return map[string]AttrKind{
		"game_id":      KindInt,
		"number_cards": KindInt,
		"deck_id":      KindInt,
		"max_players":  KindInt,
		"spectators_allowed": KindBool,
		"spectator":    KindBool,
		"ready":        KindBool,
		"value":        KindInt,
		"color":        KindColor,
		"start_id":     KindInt,
		"target_id":    KindInt,
		"player_id":    KindInt,
	}
}

// --- Concrete commands ---

// CommandDeckUpload carries a decklist blob (encoded by the caller as its
// child item), for persisting into a DeckStore. path is kept as the
// stored deck's display file name; nothing is read from it.
type CommandDeckUpload struct {
	Command
}

func NewCommandDeckUpload(path string) *CommandDeckUpload {
	c := &CommandDeckUpload{Command: newCommand(ItemIDCommandDeckUpload, "deck_upload")}
	c.Attrs().Set("path", StringAttr(path))
	return c
}

func (c *CommandDeckUpload) Path() string { return c.Attrs().String("path") }

// Deck returns the uploaded DeckList tree, carried as this command's sole
// child item rather than as an attribute.
func (c *CommandDeckUpload) Deck() Item {
	children := c.Children()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// CommandDeckSelect chooses one of the caller's stored decks, by the
// session-local deck_id a deck_list or deck_upload reply reported, for a
// seat in a game.
type CommandDeckSelect struct {
	GameCommand
}

func NewCommandDeckSelect(gameID, deckID int) *CommandDeckSelect {
	c := &CommandDeckSelect{GameCommand: newGameCommand(ItemIDCommandDeckSelect, "deck_select", gameID)}
	c.Attrs().Set("deck_id", IntAttr(deckID))
	return c
}

func (c *CommandDeckSelect) DeckID() int { return c.Attrs().Int("deck_id") }

// CommandDeckList asks for the caller's deck directory.
type CommandDeckList struct {
	Command
}

func NewCommandDeckList() *CommandDeckList {
	return &CommandDeckList{Command: newCommand(ItemIDCommandDeckList, "deck_list")}
}

// CommandSay sends a message into a chat channel.
type CommandSay struct {
	ChatCommand
}

func NewCommandSay(channel, message string) *CommandSay {
	c := &CommandSay{ChatCommand: newChatCommand(ItemIDCommandSay, "say", channel)}
	c.Attrs().Set("message", StringAttr(message))
	return c
}

func (c *CommandSay) Message() string { return c.Attrs().String("message") }

// CommandListGames requests the current room's game listing.
type CommandListGames struct {
	Command
}

func NewCommandListGames() *CommandListGames {
	return &CommandListGames{Command: newCommand(ItemIDCommandListGames, "list_games")}
}

// CommandReadyStart marks a seated player ready for the game to begin.
type CommandReadyStart struct {
	GameCommand
}

func NewCommandReadyStart(gameID int, ready bool) *CommandReadyStart {
	c := &CommandReadyStart{GameCommand: newGameCommand(ItemIDCommandReadyStart, "ready_start", gameID)}
	c.Attrs().Set("ready", BoolAttr(ready))
	return c
}

func (c *CommandReadyStart) Ready() bool { return c.Attrs().Bool("ready") }

// CommandConcede forfeits the issuing player's seat without leaving it.
type CommandConcede struct {
	GameCommand
}

func NewCommandConcede(gameID int) *CommandConcede {
	return &CommandConcede{GameCommand: newGameCommand(ItemIDCommandConcede, "concede", gameID)}
}

// CommandCreateCounter adds a new named counter to the issuing player.
type CommandCreateCounter struct {
	GameCommand
}

func NewCommandCreateCounter(gameID int, name, color string, value int) *CommandCreateCounter {
	c := &CommandCreateCounter{GameCommand: newGameCommand(ItemIDCommandCreateCounter, "create_counter", gameID)}
	c.Attrs().Set("name", StringAttr(name))
	c.Attrs().Set("color", ColorAttr(color))
	c.Attrs().Set("value", IntAttr(value))
	return c
}

func (c *CommandCreateCounter) Name() string  { return c.Attrs().String("name") }
func (c *CommandCreateCounter) Color() string { return c.Attrs().String("color") }
func (c *CommandCreateCounter) Value() int    { return c.Attrs().Int("value") }

// CommandCreateArrow draws an arrow from one card/player to another.
type CommandCreateArrow struct {
	GameCommand
}

func NewCommandCreateArrow(gameID int, startID, targetID int, color string) *CommandCreateArrow {
	c := &CommandCreateArrow{GameCommand: newGameCommand(ItemIDCommandCreateArrow, "create_arrow", gameID)}
	c.Attrs().Set("start_id", IntAttr(startID))
	c.Attrs().Set("target_id", IntAttr(targetID))
	c.Attrs().Set("color", ColorAttr(color))
	return c
}

func (c *CommandCreateArrow) StartID() int   { return c.Attrs().Int("start_id") }
func (c *CommandCreateArrow) TargetID() int  { return c.Attrs().Int("target_id") }
func (c *CommandCreateArrow) Color() string  { return c.Attrs().String("color") }

// CommandDumpZone asks the server to report the contents of one zone,
// for reconnection resync or admin inspection.
type CommandDumpZone struct {
	GameCommand
}

func NewCommandDumpZone(gameID, playerID int, zoneName string) *CommandDumpZone {
	c := &CommandDumpZone{GameCommand: newGameCommand(ItemIDCommandDumpZone, "dump_zone", gameID)}
	c.Attrs().Set("player_id", IntAttr(playerID))
	c.Attrs().Set("zone_name", StringAttr(zoneName))
	return c
}

func (c *CommandDumpZone) PlayerID() int    { return c.Attrs().Int("player_id") }
func (c *CommandDumpZone) ZoneName() string { return c.Attrs().String("zone_name") }

// CommandCreateGame requests a new game/room be created.
type CommandCreateGame struct {
	Command
}

func NewCommandCreateGame(description string, maxPlayers int, spectatorsAllowed bool, password string) *CommandCreateGame {
	c := &CommandCreateGame{Command: newCommand(ItemIDCommandCreateGame, "create_game")}
	c.Attrs().Set("description", StringAttr(description))
	c.Attrs().Set("max_players", IntAttr(maxPlayers))
	c.Attrs().Set("spectators_allowed", BoolAttr(spectatorsAllowed))
	c.Attrs().Set("password", StringAttr(password))
	return c
}

func (c *CommandCreateGame) Description() string       { return c.Attrs().String("description") }
func (c *CommandCreateGame) MaxPlayers() int            { return c.Attrs().Int("max_players") }
func (c *CommandCreateGame) SpectatorsAllowed() bool     { return c.Attrs().Bool("spectators_allowed") }
func (c *CommandCreateGame) Password() string            { return c.Attrs().String("password") }

// CommandJoinGame requests a seat (or spectator slot) in a running game.
type CommandJoinGame struct {
	GameCommand
}

func NewCommandJoinGame(gameID int, spectator bool, password string) *CommandJoinGame {
	c := &CommandJoinGame{GameCommand: newGameCommand(ItemIDCommandJoinGame, "join_game", gameID)}
	c.Attrs().Set("spectator", BoolAttr(spectator))
	c.Attrs().Set("password", StringAttr(password))
	return c
}

func (c *CommandJoinGame) Spectator() bool { return c.Attrs().Bool("spectator") }
func (c *CommandJoinGame) Password() string { return c.Attrs().String("password") }

// CommandLeaveGame leaves the seat or spectator slot held in a game.
type CommandLeaveGame struct {
	GameCommand
}

func NewCommandLeaveGame(gameID int) *CommandLeaveGame {
	return &CommandLeaveGame{GameCommand: newGameCommand(ItemIDCommandLeaveGame, "leave_game", gameID)}
}

// SetKickPlayerID marks this leave_game as a judge/admin kick targeting a
// seat other than the issuer's. Absent, leave_game is an ordinary
// self-leave.
func (c *CommandLeaveGame) SetKickPlayerID(playerID int) {
	c.Attrs().Set("player_id", IntAttr(playerID))
}

// KickPlayerID reports the targeted seat and whether this is a kick at
// all (a plain self-leave never sets player_id).
func (c *CommandLeaveGame) KickPlayerID() (int, bool) {
	v, ok := c.Attrs().Get("player_id")
	if !ok {
		return 0, false
	}
	return v.I, true
}

// CommandDrawCards draws N cards from the deck zone into the hand zone.
type CommandDrawCards struct {
	GameCommand
}

func NewCommandDrawCards(gameID, numberCards int) *CommandDrawCards {
	c := &CommandDrawCards{GameCommand: newGameCommand(ItemIDCommandDrawCards, "draw_cards", gameID)}
	c.Attrs().Set("number_cards", IntAttr(numberCards))
	return c
}

func (c *CommandDrawCards) NumberCards() int { return c.Attrs().Int("number_cards") }

// CommandAdvancePhase asks the server to advance the active player/phase
// state machine. Rejected unless the issuer is the current active player
// (or game admin).
type CommandAdvancePhase struct {
	GameCommand
}

func NewCommandAdvancePhase(gameID int) *CommandAdvancePhase {
	return &CommandAdvancePhase{GameCommand: newGameCommand(ItemIDCommandAdvancePhase, "advance_phase", gameID)}
}

func init() {
	Register("command", "deck_upload", func() Item { return NewCommandDeckUpload("") })
	Register("command", "deck_select", func() Item { return NewCommandDeckSelect(-1, -1) })
	Register("command", "deck_list", func() Item { return NewCommandDeckList() })
	Register("command", "say", func() Item { return NewCommandSay("", "") })
	Register("command", "list_games", func() Item { return NewCommandListGames() })
	Register("command", "create_game", func() Item { return NewCommandCreateGame("", 0, false, "") })
	Register("command", "join_game", func() Item { return NewCommandJoinGame(-1, false, "") })
	Register("command", "leave_game", func() Item { return NewCommandLeaveGame(-1) })
	Register("command", "draw_cards", func() Item { return NewCommandDrawCards(-1, 0) })
	Register("command", "ready_start", func() Item { return NewCommandReadyStart(-1, false) })
	Register("command", "concede", func() Item { return NewCommandConcede(-1) })
	Register("command", "create_counter", func() Item { return NewCommandCreateCounter(-1, "", "", 0) })
	Register("command", "create_arrow", func() Item { return NewCommandCreateArrow(-1, -1, -1, "") })
	Register("command", "dump_zone", func() Item { return NewCommandDumpZone(-1, -1, "") })
	Register("command", "advance_phase", func() Item { return NewCommandAdvancePhase(-1) })
}
