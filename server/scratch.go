package server

import "github.com/lguibr/cockatriced/protocol"

// responseItem is satisfied by every concrete protocol response type
// (they all embed protocol.ProtocolResponse and so promote ResponseCode).
type responseItem interface {
	protocol.Item
	ResponseCode() protocol.ResponseCode
}

// containerScratch is the per-request processing state for one inbound
// CommandContainer: the eventual response envelope, any extra items to
// push back outside that envelope (e.g. a list_games event), and the
// private per-game event containers individual commands enqueue into as
// they run. It is owned by the ConnectionHandler processing the request
// and discarded once the container has been fully handled.
type containerScratch struct {
	cmdID         int
	response      responseItem
	extraItems    []protocol.Item
	privateByGame map[int]*protocol.GameEventContainer
}

func newContainerScratch(cmdID int) *containerScratch {
	return &containerScratch{
		cmdID:         cmdID,
		privateByGame: make(map[int]*protocol.GameEventContainer),
	}
}

// setResponse applies the envelope precedence law: the first non-Ok
// response sticks, and an Ok reply never overwrites one already set.
func (s *containerScratch) setResponse(r responseItem) {
	if s.response == nil || s.response.ResponseCode() == protocol.RespOk {
		s.response = r
	}
}

func (s *containerScratch) setCode(code protocol.ResponseCode) {
	s.setResponse(protocol.NewProtocolResponse(s.cmdID, code))
}

func (s *containerScratch) enqueueExtra(item protocol.Item) {
	s.extraItems = append(s.extraItems, item)
}

func (s *containerScratch) enqueuePrivate(gameID int, event protocol.Item) {
	c, ok := s.privateByGame[gameID]
	if !ok {
		c = protocol.NewGameEventContainer(gameID, nil, nil)
		s.privateByGame[gameID] = c
	}
	c.AddChild(event)
}

// failed reports whether a non-Ok response has already been recorded.
// A container short-circuits the remaining commands' semantics once
// this is true: their side effects must not run.
func (s *containerScratch) failed() bool {
	return s.response != nil && s.response.ResponseCode() != protocol.RespOk
}

func (s *containerScratch) finalResponse() protocol.Item {
	if s.response != nil {
		return s.response
	}
	return protocol.NewProtocolResponse(s.cmdID, protocol.RespOk)
}
