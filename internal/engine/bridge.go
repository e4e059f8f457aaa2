package engine

// Bridge receives the edge-triggered events raised by the engine. Calls are
// made from engine goroutines and must not block for long.
type Bridge interface {
	// WatchdogTransition fires only when the watchdog's online state changes.
	WatchdogTransition(online bool, target string)
	// JobOutcome fires once per session that reaches a terminal state.
	JobOutcome(o Outcome)
	// NewResult fires when a result appears that this client did not
	// trigger or had not yet seen.
	NewResult(r LatestResult)
}

// multiBridge fans events out to several bridges in order.
type multiBridge []Bridge

func (m multiBridge) WatchdogTransition(online bool, target string) {
	for _, b := range m {
		b.WatchdogTransition(online, target)
	}
}

func (m multiBridge) JobOutcome(o Outcome) {
	for _, b := range m {
		b.JobOutcome(o)
	}
}

func (m multiBridge) NewResult(r LatestResult) {
	for _, b := range m {
		b.NewResult(r)
	}
}
