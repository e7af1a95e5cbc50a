package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnState_HappyPath(t *testing.T) {
	s := StateReadRequest
	var seen []string
	for s != StateClosed {
		seen = append(seen, s.String())
		s = s.Next()
	}
	assert.Equal(t, []string{"ReadRequest", "Resolve", "Render", "Write"}, seen)
}

func TestConnState_Failed(t *testing.T) {
	assert.Equal(t, StateWrite, StateReadRequest.Failed())
	assert.Equal(t, StateWrite, StateResolve.Failed())
	assert.Equal(t, StateWrite, StateRender.Failed())
	// Once writing, a failure can only close.
	assert.Equal(t, StateClosed, StateWrite.Failed())
	assert.Equal(t, StateClosed, StateClosed.Failed())
}

func TestConnState_AdvancePastClosed(t *testing.T) {
	assert.Panics(t, func() { StateClosed.Next() })
}
