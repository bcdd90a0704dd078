package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitions_Allowed(t *testing.T) {
	table := Transitions[string]{"a": {"b"}}
	assert.True(t, table.Allowed("a", "b"))
	assert.False(t, table.Allowed("b", "a"))
	assert.False(t, table.Allowed("missing", "b"))
}

func TestConnectionTransitions(t *testing.T) {
	assert.True(t, ConnectionTransitions.Allowed(ConnectionPending, ConnectionAccepted))
	assert.True(t, ConnectionTransitions.Allowed(ConnectionDeclined, ConnectionAccepted))
	assert.True(t, ConnectionTransitions.Allowed(ConnectionAccepted, ConnectionBlocked))
	assert.False(t, ConnectionTransitions.Allowed(ConnectionAccepted, ConnectionPending), "pending is not a patch target")
}

func TestRecruitTransitions(t *testing.T) {
	for _, from := range RecruitStages {
		for _, to := range RecruitStages {
			assert.True(t, RecruitTransitions.Allowed(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, RecruitTransitions.Allowed(StageNew, RecruitStage("Pledged")))
}
