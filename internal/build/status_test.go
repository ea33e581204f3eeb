package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusPhase(t *testing.T) {
	cases := map[Status]Phase{
		StatusCreated:       PhaseRunning,
		StatusTriggered:     PhaseRunning,
		StatusExecuting:     PhaseRunning,
		StatusCompleted:     PhaseSuccess,
		StatusNeedsApproval: PhaseFailure,
		StatusFailed:        PhaseFailure,
		StatusAborted:       PhaseFailure,
		StatusErrored:       PhaseFailure,
		"PAUSED":            PhaseUnknown,
		"":                  PhaseUnknown,
		"completed":         PhaseUnknown,
	}
	for status, want := range cases {
		assert.Equal(t, want, status.Phase(), "status %q", status)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusAborted.Terminal())
	assert.False(t, StatusExecuting.Terminal())
	assert.False(t, Status("SOMETHING_NEW").Terminal())
	assert.Equal(t, "failure", PhaseFailure.String())
}
