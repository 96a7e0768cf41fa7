package types

// WordSpan is a single timed word from the transcript.
// Spans with empty trimmed text are dropped before phrase building;
// any span kept past filtering satisfies EndMs > StartMs.
type WordSpan struct {
	StartMs uint64 `json:"startMs"`
	EndMs   uint64 `json:"endMs"`
	Text    string `json:"text"`
}

// CaptionSegment is one transcript segment with optional word-level timing.
// When Words is empty the segment text is evenly time-sliced into synthetic
// word spans so no text is silently dropped.
type CaptionSegment struct {
	StartMs uint64     `json:"startMs"`
	EndMs   uint64     `json:"endMs"`
	Text    string     `json:"text"`
	Words   []WordSpan `json:"words,omitempty"`
}

// Phrase is a short run of consecutive words grouped for single-line display.
// Tokens and Spans always have the same length.
type Phrase struct {
	StartMs uint64
	EndMs   uint64
	Tokens  []string
	Spans   []WordSpan
}

// ProbeResult carries the probed characteristics of a source video.
type ProbeResult struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Fps          float64 `json:"fps"`
	DurationS    float64 `json:"duration"`
	AudioCodec   string  `json:"audioCodec"`
	HasAudio     bool    `json:"hasAudio"`
	AudioBitrate int     `json:"audioBitrate"`
}

// TranscribeResult is the output of a transcription run.
type TranscribeResult struct {
	Segments []CaptionSegment `json:"segments"`
	FullText string           `json:"fullText"`
	Duration float64          `json:"duration"`
	JsonFile string           `json:"jsonFile"`
}

// GenerateCaptionsParams is the full input of a caption generation job.
type GenerateCaptionsParams struct {
	InputVideo         string   `json:"inputVideo"`
	ExportFormats      []string `json:"exportFormats"`
	Karaoke            bool     `json:"karaoke"`
	SplitByWords       bool     `json:"splitByWords"`
	FontName           string   `json:"fontName,omitempty"`
	TextColor          string   `json:"textColor,omitempty"`
	HighlightWordColor string   `json:"highlightWordColor,omitempty"`
	OutlineColor       string   `json:"outlineColor,omitempty"`
	GlowEffect         bool     `json:"glowEffect"`
	Position           string   `json:"position,omitempty"`
	Model              string   `json:"model,omitempty"`
	Language           string   `json:"language,omitempty"`
	Prompt             string   `json:"prompt,omitempty"`
}

// CaptionedVideoResult is one encoded output per requested export format.
type CaptionedVideoResult struct {
	Format             string `json:"format"`
	CaptionedVideoPath string `json:"captionedVideoPath"`
	Width              int    `json:"width"`
	Height             int    `json:"height"`
}

// GenerateCaptionsResult aggregates everything a finished job produced.
type GenerateCaptionsResult struct {
	ProbeResult     ProbeResult            `json:"probeResult"`
	AudioFile       string                 `json:"audioFile"`
	Transcription   TranscribeResult       `json:"transcription"`
	CaptionedVideos []CaptionedVideoResult `json:"captionedVideos"`
}
