package types

import "context"

// Transcriber turns an audio file into timed caption segments.
// splitByWords requests word-level spans where the provider supports them.
type Transcriber interface {
	Transcribe(ctx context.Context, audioFile string, params TranscribeParams) (*TranscribeResult, error)
}

// TranscribeParams carries provider-facing transcription options.
type TranscribeParams struct {
	Model        string
	Language     string
	Prompt       string
	SplitByWords bool
	VideoFile    string
}

// VideoProber inspects a source video for resolution, frame rate and audio.
type VideoProber interface {
	Probe(ctx context.Context, inputVideo string) (*ProbeResult, error)
}

// CommandRunner executes an external binary and reports its exit status.
// The concrete implementation shells out; tests substitute a fake.
type CommandRunner interface {
	Run(ctx context.Context, bin string, args ...string) error
}

// TaskDispatcher hands a persisted caption task off for background execution
// under the id it was persisted with.
type TaskDispatcher interface {
	DispatchCaptionTask(taskId string, params GenerateCaptionsParams) error
}
