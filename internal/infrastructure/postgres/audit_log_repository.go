package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

var auditColumns = []string{
	"id", "table_name", "record_id", "details", "severity", "action", "old_values", "new_values",
	"user_id", "ip_address", "user_agent", "created_at", "updated_at",
}

// AuditLogRepo trail de auditoría sobre PostgreSQL (solo INSERT y SELECT).
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Se usa con el pool: la auditoría no comparte la tx del movimiento.
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create inserta la entrada; un ID repetido devuelve domain.ErrDuplicate (reintentos idempotentes).
func (r *AuditLogRepo) Create(ctx context.Context, e *entity.AuditLogEntry) error {
	query, args, err := psql.Insert("audit_logs").
		Columns(auditColumns...).
		Values(e.ID, e.TableName, e.RecordID, e.Details, e.Severity, e.Action, jsonOrNil(e.OldValues), jsonOrNil(e.NewValues),
			e.UserID, e.IPAddress, e.UserAgent, e.CreatedAt, e.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert audit log: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return mapError("insert audit log", err)
	}
	return nil
}

// List filtra el trail, más reciente primero, y devuelve el total sin paginar.
func (r *AuditLogRepo) List(ctx context.Context, f repository.AuditLogFilter, limit, offset int) ([]*entity.AuditLogEntry, int, error) {
	where := squirrel.And{}
	for _, c := range []struct{ col, val string }{
		{"table_name", f.TableName},
		{"record_id", f.RecordID},
		{"user_id", f.UserID},
		{"severity", f.Severity},
		{"action", f.Action},
	} {
		if c.val != "" {
			where = append(where, squirrel.Eq{c.col: c.val})
		}
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.Lt{"created_at": *f.To})
	}

	sb := psql.Select(append(auditColumns, "COUNT(*) OVER() AS total")...).
		From("audit_logs").
		Where(where).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		sb = sb.Limit(uint64(limit))
	}
	if offset > 0 {
		sb = sb.Offset(uint64(offset))
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list audit logs: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list audit logs", err)
	}
	defer rows.Close()
	var (
		list  []*entity.AuditLogEntry
		total int
	)
	for rows.Next() {
		var e entity.AuditLogEntry
		var oldV, newV []byte
		if err := rows.Scan(&e.ID, &e.TableName, &e.RecordID, &e.Details, &e.Severity, &e.Action, &oldV, &newV,
			&e.UserID, &e.IPAddress, &e.UserAgent, &e.CreatedAt, &e.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan audit log: %w", err)
		}
		e.OldValues, e.NewValues = oldV, newV
		list = append(list, &e)
	}
	return list, total, rows.Err()
}

// jsonOrNil evita insertar un JSON vacío en columnas JSONB.
func jsonOrNil(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
