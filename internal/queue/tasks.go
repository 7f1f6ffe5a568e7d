package queue

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/fidelidade-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReportGenerate 报表导出任务
	TaskReportGenerate = constants.TaskReportGenerate
)

// ReportGeneratePayload 报表导出任务载荷
type ReportGeneratePayload struct {
	ReportID string `json:"report_id"`
}

// NewReportGenerateTask 创建报表导出任务
func NewReportGenerateTask(payload ReportGeneratePayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.ReportID) == "" {
		return nil, errors.New("report id is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportGenerate, body), nil
}

// ParseReportGeneratePayload 解析报表导出任务载荷
func ParseReportGeneratePayload(task *asynq.Task) (ReportGeneratePayload, error) {
	var payload ReportGeneratePayload
	if task == nil {
		return payload, errors.New("task is nil")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	if strings.TrimSpace(payload.ReportID) == "" {
		return payload, errors.New("report id is required")
	}
	return payload, nil
}
