package workflow

import (
	"time"

	"github.com/quillforge/core/eventsink"
)

// EventType enumerates the workflow progress events of spec §4.5, emitted
// in this order per step, with cross-step happens-before ordering enforced
// by the scheduler (a dependent step's step_starting never precedes its
// dependency's step_completed).
type EventType string

const (
	EventWorkflowStarted   EventType = "workflow_started"
	EventWorkflowPlanned   EventType = "workflow_planned"
	EventStepStarting      EventType = "step_starting"
	EventStepPrepared      EventType = "step_prepared"
	EventStepExecuting     EventType = "step_executing"
	EventStepCompleted     EventType = "step_completed"
	EventStepFailed        EventType = "step_failed"
	EventWorkflowCompleted EventType = "workflow_completed"
	EventWorkflowError     EventType = "workflow_error"
)

// Event is one item of a workflow's progress stream.
type Event struct {
	Type       EventType
	WorkflowID string
	StepID     string
	Data       map[string]any
	Timestamp  time.Time
}

// EventSink is a per-workflow progress stream, built on the package-wide
// eventsink.Sink so the Workflow Engine and Messaging & Presence Core
// share one channel-fan-out implementation.
type EventSink struct {
	*eventsink.Sink[Event]
}

// NewEventSink returns a sink buffered to bufferSize (256 if <= 0).
func NewEventSink(bufferSize int) *EventSink {
	return &EventSink{Sink: eventsink.New[Event](bufferSize)}
}

func (s *EventSink) emit(evt Event) {
	evt.Timestamp = time.Now()
	s.Emit(evt)
}
