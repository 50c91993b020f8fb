package audit

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// AuditLogUseCase lectura del trail de auditoría.
type AuditLogUseCase struct {
	repo repository.AuditLogRepository
}

// NewAuditLogUseCase construye el caso de uso.
func NewAuditLogUseCase(repo repository.AuditLogRepository) *AuditLogUseCase {
	return &AuditLogUseCase{repo: repo}
}

// List lista entradas filtradas, las más recientes primero.
func (uc *AuditLogUseCase) List(ctx context.Context, in dto.AuditLogListRequest) (*dto.AuditLogListResponse, error) {
	in.DefaultPage()
	if in.Limit > 100 {
		in.Limit = 100
	}
	filter := repository.AuditLogFilter{
		TableName: in.TableName,
		RecordID:  in.RecordID,
		UserID:    in.UserID,
		Severity:  in.Severity,
		Action:    in.Action,
	}
	var err error
	if filter.From, err = dto.ParseDateParam("from", in.From, false); err != nil {
		return nil, err
	}
	if filter.To, err = dto.ParseDateParam("to", in.To, true); err != nil {
		return nil, err
	}
	list, total, err := uc.repo.List(ctx, filter, in.Limit, in.Offset)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list audit logs", Err: err}
	}
	items := make([]dto.AuditLogResponse, 0, len(list))
	for _, e := range list {
		items = append(items, toAuditLogResponse(e))
	}
	return &dto.AuditLogListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

func toAuditLogResponse(e *entity.AuditLogEntry) dto.AuditLogResponse {
	return dto.AuditLogResponse{
		ID:        e.ID,
		TableName: e.TableName,
		RecordID:  e.RecordID,
		Action:    e.Action,
		Severity:  e.Severity,
		Details:   e.Details,
		OldValues: e.OldValues,
		NewValues: e.NewValues,
		UserID:    e.UserID,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		CreatedAt: e.CreatedAt,
	}
}
