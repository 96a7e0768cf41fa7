package dto

// StartCaptionTaskReq is the request body for launching a caption job.
type StartCaptionTaskReq struct {
	VideoPath          string   `json:"videoPath" binding:"required"`
	ExportFormats      []string `json:"exportFormats" binding:"required"`
	Karaoke            bool     `json:"karaoke"`
	SplitByWords       bool     `json:"splitByWords"`
	FontName           string   `json:"fontName"`
	TextColor          string   `json:"textColor"`
	HighlightWordColor string   `json:"highlightWordColor"`
	OutlineColor       string   `json:"outlineColor"`
	GlowEffect         bool     `json:"glowEffect"`
	Position           string   `json:"position"`
	Model              string   `json:"model"`
	Language           string   `json:"language"`
	Prompt             string   `json:"prompt"`
}

type StartCaptionTaskRes struct {
	TaskId string `json:"taskId"`
}

type GetCaptionTaskReq struct {
	TaskId string `form:"taskId" binding:"required"`
}

type CaptionOutputInfo struct {
	Format string `json:"format"`
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type GetCaptionTaskRes struct {
	TaskId         string              `json:"taskId"`
	Status         int                 `json:"status"`
	StatusMsg      string              `json:"statusMsg"`
	ProcessPercent uint8               `json:"processPercent"`
	FailReason     string              `json:"failReason,omitempty"`
	Outputs        []CaptionOutputInfo `json:"outputs,omitempty"`
}

type DownloadModelReq struct {
	Model string `json:"model" binding:"required"`
}

type DownloadModelRes struct {
	Model string `json:"model"`
	Path  string `json:"path"`
}
