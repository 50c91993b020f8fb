package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// AuditLogFilter filtros del listado de auditoría.
type AuditLogFilter struct {
	TableName string
	RecordID  string
	UserID    string
	Severity  string
	Action    string
	From      *time.Time
	To        *time.Time
}

// AuditLogRepository persistencia del trail de auditoría (solo inserción y lectura).
type AuditLogRepository interface {
	// Create devuelve domain.ErrDuplicate si ya existe una entrada con el mismo ID.
	Create(ctx context.Context, entry *entity.AuditLogEntry) error
	List(ctx context.Context, filter AuditLogFilter, limit, offset int) ([]*entity.AuditLogEntry, int, error)
}
