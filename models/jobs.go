package models

import "time"

// ConversationJob queues one inbound message for pipeline processing.
// Postgres-backed queue, no Redis; claimed with FOR UPDATE SKIP LOCKED.
type ConversationJob struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Status     string     `gorm:"index;default:'pending'" json:"status"` // pending|processing|done|failed
	Priority   int        `gorm:"default:5" json:"priority"`
	MerchantID string     `gorm:"index;not null" json:"merchant_id"`
	SessionID  string     `gorm:"index;not null" json:"session_id"`
	MessageID  string     `gorm:"index;not null" json:"message_id"`
	ErrorMsg   string     `gorm:"type:text" json:"error_msg"`
	Attempts   int        `gorm:"default:0" json:"attempts"`
	NextRunAt  *time.Time `gorm:"index" json:"next_run_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName override for the conversation_jobs table
func (ConversationJob) TableName() string {
	return "conversation_jobs"
}

// ConversationJobAttempt is the per-try log for a job
type ConversationJobAttempt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JobID     uint      `gorm:"index;not null" json:"job_id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Status    string    `json:"status"` // ok|timeout|error
	ErrorMsg  string    `gorm:"type:text" json:"error_msg"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName override for the conversation_job_attempts table
func (ConversationJobAttempt) TableName() string {
	return "conversation_job_attempts"
}

// ResponseSendLog records each outbound reply delivery attempt
type ResponseSendLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MerchantID string    `gorm:"index;not null" json:"merchant_id"`
	SessionID  string    `gorm:"index;not null" json:"session_id"`
	Body       string    `gorm:"type:text" json:"body"`
	Status     string    `gorm:"index;default:'sent'" json:"status"` // sent|failed
	ErrorMsg   string    `gorm:"type:text" json:"error_msg"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName override for the response_send_logs table
func (ResponseSendLog) TableName() string {
	return "response_send_logs"
}

// UsageLog records per-message LLM token spend for billing visibility
type UsageLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MerchantID   string    `gorm:"index;not null" json:"merchant_id"`
	SessionID    string    `gorm:"index" json:"session_id"`
	InputTokens  int       `gorm:"default:0" json:"input_tokens"`
	OutputTokens int       `gorm:"default:0" json:"output_tokens"`
	TotalTokens  int       `gorm:"default:0" json:"total_tokens"`
	LatencyMs    int       `gorm:"default:0" json:"latency_ms"`
	Status       string    `gorm:"default:'ok'" json:"status"`
	ErrorReason  string    `gorm:"type:text" json:"error_reason"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName override for the usage_logs table
func (UsageLog) TableName() string {
	return "usage_logs"
}
