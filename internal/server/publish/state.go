package publish

import "sync"

// State tracks a single publish attempt through its pipeline.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateUploading
	StateIndexing
	StateDispatching
	StateSucceeded
	StateFailedValidation
	StateFailedUpload
	StateFailedIndexing
	StateFailedDispatch
)

var stateNames = map[State]string{
	StateIdle:             "idle",
	StateValidating:       "validating",
	StateUploading:        "uploading",
	StateIndexing:         "indexing",
	StateDispatching:      "dispatching",
	StateSucceeded:        "succeeded",
	StateFailedValidation: "failed_validation",
	StateFailedUpload:     "failed_upload",
	StateFailedIndexing:   "failed_indexing",
	StateFailedDispatch:   "failed_dispatch",
}

func (s State) String() string {
	return stateNames[s]
}

// Terminal reports whether s is a final state. Terminal states never
// transition further; a new attempt starts with an explicit Reset.
func (s State) Terminal() bool {
	return s >= StateSucceeded
}

// Attempt is the state machine of one publish call. A Service method drives
// it through the pipeline; the caller reads State for reporting and calls
// Reset before reusing it.
type Attempt struct {
	mu    sync.Mutex
	state State
}

func NewAttempt() *Attempt {
	return &Attempt{state: StateIdle}
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Reset returns the attempt to Idle. Only the caller resets; no transition
// leaves a terminal state automatically.
func (a *Attempt) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = StateIdle
}

// advance moves to s unless the attempt already reached a terminal state;
// the first terminal outcome is sticky.
func (a *Attempt) advance(s State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Terminal() {
		return
	}
	a.state = s
}
