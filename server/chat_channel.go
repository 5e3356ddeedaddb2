package server

import (
	"github.com/lguibr/cockatriced/actor"
	"github.com/lguibr/cockatriced/protocol"
	"github.com/sirupsen/logrus"
)

func init() {
	protocol.RegisterGeneric("server_info_chat_user", "", nil)
}

// ChatChannel is a named chat room actor. It has no analogue in a
// pong-only teacher; it's shaped the same way as Registry and GameActor
// on purpose, since a channel's membership is exactly the kind of
// shared, mutated-by-many-connections state an actor mailbox serializes.
type ChatChannel struct {
	name    string
	engine  *actor.Engine
	selfPID *actor.PID
	log     *logrus.Entry

	members     map[string]*actor.PID
	history     []*protocol.EventChatSay
	historySize int
}

// NewChatChannelProducer builds a named chat channel actor. historySize
// bounds how many recent messages are replayed to a player who joins
// after they were said (0 disables history replay entirely).
func NewChatChannelProducer(engine *actor.Engine, name string, historySize int) actor.Producer {
	return func() actor.Actor {
		return &ChatChannel{
			name:        name,
			engine:      engine,
			log:         logrus.WithField("component", "chat").WithField("channel", name),
			members:     make(map[string]*actor.PID),
			historySize: historySize,
		}
	}
}

func (c *ChatChannel) Receive(ctx actor.Context) {
	if c.selfPID == nil {
		c.selfPID = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case actor.Started:
		c.log.Info("chat channel started")

	case chatJoin:
		c.members[msg.PlayerName] = msg.Conn
		for _, said := range c.history {
			c.engine.Send(msg.Conn, pushItem{Item: said}, c.selfPID)
		}
		c.broadcast(protocol.NewEventChatListPlayers(c.name, c.playerList()))
		ctx.Reply(chatJoinResult{})

	case chatLeave:
		delete(c.members, msg.PlayerName)
		c.broadcast(protocol.NewEventChatListPlayers(c.name, c.playerList()))

	case chatSay:
		event := protocol.NewEventChatSay(c.name, msg.PlayerName, msg.Message)
		c.remember(event)
		c.broadcast(event)

	case chatListPlayers:
		names := make([]string, 0, len(c.members))
		for name := range c.members {
			names = append(names, name)
		}
		ctx.Reply(chatListPlayersResult{Names: names})

	case actor.Stopping:
		c.log.Info("chat channel stopping")

	case actor.Stopped:
		c.log.Info("chat channel stopped")
	}
}

func (c *ChatChannel) playerList() []protocol.Item {
	items := make([]protocol.Item, 0, len(c.members))
	for name := range c.members {
		item := protocol.NewGenericItem("server_info_chat_user", "")
		item.Attrs().Set("name", protocol.StringAttr(name))
		items = append(items, item)
	}
	return items
}

// remember appends event to the replay buffer, trimming from the front
// once historySize is exceeded. A historySize of 0 keeps nothing.
func (c *ChatChannel) remember(event *protocol.EventChatSay) {
	if c.historySize <= 0 {
		return
	}
	c.history = append(c.history, event)
	if len(c.history) > c.historySize {
		c.history = c.history[len(c.history)-c.historySize:]
	}
}

func (c *ChatChannel) broadcast(event protocol.Item) {
	for _, pid := range c.members {
		c.engine.Send(pid, pushItem{Item: event}, c.selfPID)
	}
}
