package types

// ProgressEvent reports a pipeline milestone to an injected sink.
// Progress is a fraction in [0,1] over the whole job.
type ProgressEvent struct {
	TaskId   string  `json:"taskId"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
}

// LogEvent carries a free-form diagnostic line for consumers.
type LogEvent struct {
	TaskId  string `json:"taskId"`
	Message string `json:"message"`
}

// EventSink receives progress and log events at defined milestones.
// Encode workers emit from separate goroutines, serialized by the
// orchestrator, so implementations see events one at a time.
type EventSink interface {
	Progress(ev ProgressEvent)
	Log(ev LogEvent)
}

// EventSinkFuncs adapts plain functions to an EventSink. Nil funcs are no-ops.
type EventSinkFuncs struct {
	OnProgress func(ev ProgressEvent)
	OnLog      func(ev LogEvent)
}

func (s EventSinkFuncs) Progress(ev ProgressEvent) {
	if s.OnProgress != nil {
		s.OnProgress(ev)
	}
}

func (s EventSinkFuncs) Log(ev LogEvent) {
	if s.OnLog != nil {
		s.OnLog(ev)
	}
}

// NopSink discards all events.
var NopSink EventSink = EventSinkFuncs{}
