package types

// Caption task status values persisted with the task record.
const (
	CaptionTaskStatusProcessing = iota + 1
	CaptionTaskStatusSuccess
	CaptionTaskStatusFailed
)

// CaptionTask is the persisted record of one caption generation job.
type CaptionTask struct {
	Id         int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	TaskId     string `json:"task_id" gorm:"column:task_id;uniqueIndex;size:64"`
	VideoSrc   string `json:"video_src" gorm:"column:video_src"`
	Status     int    `json:"status" gorm:"column:status"`
	StatusMsg  string `json:"status_msg" gorm:"column:status_msg"`
	ProcessPct uint8  `json:"process_percent" gorm:"column:process_percent"`
	FailReason string `json:"fail_reason" gorm:"column:fail_reason"`
	ParamsJson string `json:"params_json" gorm:"column:params_json"`
	ResultJson string `json:"result_json" gorm:"column:result_json"`
	CreateTime int64  `json:"create_time" gorm:"column:create_time;autoCreateTime"`
	UpdateTime int64  `json:"update_time" gorm:"column:update_time;autoUpdateTime"`

	Outputs []CaptionOutput `json:"outputs" gorm:"foreignKey:TaskId;references:TaskId"`
}

func (CaptionTask) TableName() string {
	return "caption_task"
}

// CaptionOutput is one encoded artifact belonging to a task.
type CaptionOutput struct {
	Id     int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	TaskId string `json:"task_id" gorm:"column:task_id;index;size:64"`
	Format string `json:"format" gorm:"column:format"`
	Path   string `json:"path" gorm:"column:path"`
	Width  int    `json:"width" gorm:"column:width"`
	Height int    `json:"height" gorm:"column:height"`
}

func (CaptionOutput) TableName() string {
	return "caption_output"
}
