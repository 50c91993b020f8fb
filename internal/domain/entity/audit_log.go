package entity

import (
	"encoding/json"
	"time"
)

// Acciones auditables.
const (
	AuditActionInsert = "INSERT"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// Severidades de auditoría.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// AuditLogEntry registro inmutable de una operación (exitosa o rechazada) sobre una entidad.
// OldValues/NewValues son snapshots JSON de los campos mutables, sin relaciones.
type AuditLogEntry struct {
	ID        string
	TableName string
	RecordID  string
	Details   string
	Severity  string
	Action    string
	OldValues json.RawMessage
	NewValues json.RawMessage
	UserID    *string // nulo para acciones del sistema
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
