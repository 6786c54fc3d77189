package domain

import (
	"encoding/json"
	"time"
)

// 审计动作标记，除提醒类型本身外的两个特殊值
const (
	AuditActionTriggerError     = "trigger_error"
	AuditActionImmediateSkipped = "immediate_skipped"
	AuditActionStaleTask        = "stale_task"

	AuditResourceNotification = "whatsapp_notification"
)

// DeliveryRecord 投递审计条目，插入后不再修改
type DeliveryRecord struct {
	ID         int64
	ReminderID int64  // 关联的提醒，手动发送时为0
	Resource   string // 资源标记
	ResourceID int64  // 任务ID
	Action     string // 提醒类型或特殊动作标记
	Payload    AuditPayload
	Ctime      time.Time
}

// AuditPayload 审计条目的自由载荷
type AuditPayload struct {
	MessageID   string `json:"message_id,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	TaskTitle   string `json:"task_title,omitempty"`
	Instance    string `json:"instance_used,omitempty"`
	RawResponse string `json:"raw_response,omitempty"`
	Error       string `json:"error,omitempty"`
	TriggerKey  string `json:"trigger_key,omitempty"`
}

func (p AuditPayload) Marshal() (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}
