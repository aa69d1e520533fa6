package poller

// Classifier maps provider state strings onto poll statuses. Any state
// absent from the map classifies as UNKNOWN, which is terminal; the loop
// must never spin on a state it does not recognize.
type Classifier struct {
	states map[string]Status
}

func NewClassifier(states map[string]Status) Classifier {
	return Classifier{states: states}
}

// Classify builds a State from the provider's raw state string and
// state-change reason.
func (c Classifier) Classify(raw, reason string) State {
	if status, ok := c.states[raw]; ok {
		return State{Status: status, Raw: raw, Reason: reason}
	}
	return State{Status: StatusUnknown, Raw: raw, Reason: reason}
}
