package dto

import (
	"encoding/json"
	"time"
)

// AuditLogListRequest query de GET /api/audit-logs.
type AuditLogListRequest struct {
	PageRequest
	TableName string `query:"table_name"`
	RecordID  string `query:"record_id"`
	UserID    string `query:"user_id"`
	Severity  string `query:"severity"`
	Action    string `query:"action"`
	From      string `query:"from"`
	To        string `query:"to"`
}

// AuditLogResponse entrada del trail de auditoría.
type AuditLogResponse struct {
	ID        string          `json:"id"`
	TableName string          `json:"table_name"`
	RecordID  string          `json:"record_id"`
	Action    string          `json:"action"`
	Severity  string          `json:"severity"`
	Details   string          `json:"details"`
	OldValues json.RawMessage `json:"old_values,omitempty"`
	NewValues json.RawMessage `json:"new_values,omitempty"`
	UserID    *string         `json:"user_id,omitempty"`
	IPAddress string          `json:"ip_address,omitempty"`
	UserAgent string          `json:"user_agent,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditLogListResponse lista paginada con total.
type AuditLogListResponse struct {
	Items []AuditLogResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
