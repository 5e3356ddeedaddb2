package protocol

import "sync/atomic"

var lastCmdID int64

// NextCmdID returns a fresh, monotonically increasing command id. The
// wire's cmd_id is assigned by whichever side originates the container —
// client-originated containers get theirs from here.
func NextCmdID() int {
	return int(atomic.AddInt64(&lastCmdID, 1))
}

// CommandContainer is one client envelope: a batch of Commands sharing a
// cmd_id, plus a ticks counter used to track server-side scheduling
// latency. CommandContainer itself carries none of the server-local
// processing scratch state (the in-flight response and event queues) —
// that lives in containerScratch, owned by whichever handler is
// processing this container, so the wire item stays exactly what it
// claims to be: a plain tagged record.
type CommandContainer struct {
	base
	ticks int
}

func NewCommandContainer(cmdID int, commands []Item) *CommandContainer {
	c := &CommandContainer{base: newBase(ItemIDCommandContainer, "cont", "command_container")}
	c.Attrs().Set("cmd_id", IntAttr(cmdID))
	for _, cmd := range commands {
		c.AddChild(cmd)
	}
	return c
}

func (c *CommandContainer) CmdID() int  { return c.Attrs().Int("cmd_id") }
func (c *CommandContainer) Tick() int   { c.ticks++; return c.ticks }
func (c *CommandContainer) Commands() []Item { return c.Children() }

func (c *CommandContainer) attrKinds() map[string]AttrKind {
	return map[string]AttrKind{"cmd_id": KindInt}
}

func init() {
	Register("cont", "command_container", func() Item { return NewCommandContainer(-1, nil) })
	Register("cont", "game_event_container", func() Item { return NewGameEventContainer(-1, nil, nil) })
}

// GameEventContainer bundles one or more GameEvent sharing a single
// game_id, with an optional machine-readable GameEventContext tag.
type GameEventContainer struct {
	base
	context *GameEventContext
}

func NewGameEventContainer(gameID int, events []Item, context *GameEventContext) *GameEventContainer {
	c := &GameEventContainer{base: newBase(ItemIDGameEventContainer, "cont", "game_event_container")}
	c.Attrs().Set("game_id", IntAttr(gameID))
	c.context = context
	if context != nil {
		c.AddChild(context)
	}
	for _, e := range events {
		c.AddChild(e)
	}
	return c
}

// AddChild overrides base so a GameEventContext surfacing during decode
// (always the first child, if present) populates c.context instead of
// being treated as an ordinary event.
func (c *GameEventContainer) AddChild(child Item) {
	if ctx, ok := child.(*GameEventContext); ok && c.context == nil && len(c.Children()) == 0 {
		c.context = ctx
	}
	c.base.AddChild(child)
}

func (c *GameEventContainer) GameID() int           { return c.Attrs().Int("game_id") }
func (c *GameEventContainer) SetGameID(gameID int)  { c.Attrs().Set("game_id", IntAttr(gameID)) }
func (c *GameEventContainer) Context() *GameEventContext { return c.context }

// Events returns the event children, excluding the GameEventContext if
// one is present (it is always added first).
func (c *GameEventContainer) Events() []Item {
	children := c.Children()
	if c.context != nil && len(children) > 0 {
		return children[1:]
	}
	return children
}

func (c *GameEventContainer) attrKinds() map[string]AttrKind {
	return map[string]AttrKind{"game_id": KindInt}
}
