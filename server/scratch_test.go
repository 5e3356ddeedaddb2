package server

import (
	"testing"

	"github.com/lguibr/cockatriced/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerScratchResponsePrecedence(t *testing.T) {
	scratch := newContainerScratch(1)
	scratch.setCode(protocol.RespOk)
	scratch.setCode(protocol.RespContextError)
	scratch.setCode(protocol.RespNameNotFound)

	resp, ok := scratch.finalResponse().(responseItem)
	require.True(t, ok)
	assert.Equal(t, protocol.RespContextError, resp.ResponseCode())
}

func TestContainerScratchFailedReflectsStickyResponse(t *testing.T) {
	scratch := newContainerScratch(1)
	assert.False(t, scratch.failed())

	scratch.setCode(protocol.RespOk)
	assert.False(t, scratch.failed())

	scratch.setCode(protocol.RespContextError)
	assert.True(t, scratch.failed())

	scratch.setCode(protocol.RespOk)
	assert.True(t, scratch.failed(), "an Ok must never clear a sticky failure")
}

func TestContainerScratchEnqueuePrivateSharesContainerPerGameID(t *testing.T) {
	scratch := newContainerScratch(1)
	scratch.enqueuePrivate(5, protocol.NewEventLeave(2))
	scratch.enqueuePrivate(5, protocol.NewEventLeave(3))

	container := scratch.privateByGame[5]
	require.NotNil(t, container)
	assert.Equal(t, 5, container.GameID())
	assert.Len(t, container.Events(), 2)
}
