package constants

// Transitions is a current-state -> allowed-next-states table.
// A state missing from the table allows nothing.
type Transitions[S comparable] map[S][]S

func (t Transitions[S]) Allowed(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

func allToAll[S comparable](from []S, to []S) Transitions[S] {
	t := make(Transitions[S], len(from))
	for _, f := range from {
		t[f] = append([]S(nil), to...)
	}
	return t
}

// Both tables are permissive: officers use free moves to correct
// mistakes (a declined request re-accepted, an accepted recruit reset to New).
// Tighten here, not in handlers.
var (
	ConnectionTransitions = allToAll(
		[]ConnectionStatus{ConnectionPending, ConnectionAccepted, ConnectionDeclined, ConnectionBlocked},
		ConnectionPatchTargets,
	)

	RecruitTransitions = allToAll(RecruitStages, RecruitStages)
)
