package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
)

// AuditHandler consulta del trail de auditoría (solo admin).
type AuditHandler struct {
	uc *audit.AuditLogUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *audit.AuditLogUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List godoc
// @Summary      Trail de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        table_name  query  string  false  "Product, ..."
// @Param        record_id   query  string  false  "ID del registro"
// @Param        user_id     query  string  false  "Usuario"
// @Param        severity    query  string  false  "info | warning | error | critical"
// @Param        action      query  string  false  "INSERT | UPDATE | DELETE"
// @Param        from        query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to          query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        limit       query  int     false  "máx. 100"
// @Param        offset      query  int     false  "desplazamiento"
// @Success      200  {object}  dto.AuditLogListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit-logs [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var in dto.AuditLogListRequest
	if err := c.QueryParser(&in); err != nil {
		return badQuery(c)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
