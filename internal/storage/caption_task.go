package storage

import (
	"errors"

	"clipcap/internal/types"

	"gorm.io/gorm"
)

func SaveTask(task *types.CaptionTask) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	// Upsert keyed by TaskId; Id stays the primary key.
	var existing types.CaptionTask
	result := DB.Where("task_id = ?", task.TaskId).First(&existing)

	if result.Error == nil {
		task.Id = existing.Id
		return DB.Save(task).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(task).Error
	}
	return result.Error
}

func GetTask(taskId string) (*types.CaptionTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var task types.CaptionTask
	if err := DB.Preload("Outputs").Where("task_id = ?", taskId).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskProgress writes only the progress fields so concurrent milestone
// updates never clobber params or results.
func UpdateTaskProgress(taskId string, processPct uint8, statusMsg string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Model(&types.CaptionTask{}).
		Where("task_id = ?", taskId).
		Updates(map[string]interface{}{
			"process_percent": processPct,
			"status_msg":      statusMsg,
		}).Error
}

func GetTaskHistory(limit int) ([]types.CaptionTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var tasks []types.CaptionTask
	if err := DB.Preload("Outputs").Order("create_time desc").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func DeleteTask(taskId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	if err := DB.Where("task_id = ?", taskId).Delete(&types.CaptionOutput{}).Error; err != nil {
		return err
	}
	return DB.Where("task_id = ?", taskId).Delete(&types.CaptionTask{}).Error
}

// MarkStaleTasks marks all "processing" tasks as failed. Called on server
// startup to clean up zombie tasks left behind by a crash or restart.
func MarkStaleTasks() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.CaptionTask{}).
		Where("status = ?", types.CaptionTaskStatusProcessing).
		Updates(map[string]interface{}{
			"status":      types.CaptionTaskStatusFailed,
			"fail_reason": "task interrupted by server restart",
			"status_msg":  "Interrupted",
		})
	return result.RowsAffected, result.Error
}
