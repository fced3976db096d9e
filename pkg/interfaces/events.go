package interfaces

// EventKind enumerates the fixed lifecycle event vocabulary emitted by the
// engine. There is no dynamic event registration by name.
type EventKind string

const (
	EventRunStart       EventKind = "run:start"
	EventRunEnd         EventKind = "run:end"
	EventFileParse      EventKind = "file:parse"
	EventFileDone       EventKind = "file:done"
	EventValidatorStart EventKind = "validator:start"
	EventValidatorDone  EventKind = "validator:done"
	EventFinding        EventKind = "finding"
)

// FileCountUnknown is carried by the first run:start emission, before
// discovery has resolved the corpus.
const FileCountUnknown = -1

// Event is a lifecycle notification. Only the fields relevant to the kind are
// populated.
type Event struct {
	Kind  EventKind
	RunID string
	// FileCount accompanies run:start (FileCountUnknown on the first
	// emission, the resolved corpus size on the revised one) and run:end.
	FileCount int
	// Path accompanies file:parse and file:done.
	Path string
	// Validator accompanies validator:start and validator:done.
	Validator string
	// Findings carries the finding count on validator:done.
	Findings int
	// Finding accompanies finding events.
	Finding *Finding
	// Cancelled is set on run:end when the run was cancelled mid-flight.
	Cancelled bool
}

// EventListener observes engine lifecycle events. Listeners are invoked
// synchronously in registration order and are expected to be cheap; a
// listener that panics is reported as an engine finding and does not stop
// dispatch to subsequent listeners.
type EventListener func(Event)
