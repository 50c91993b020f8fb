package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/analytics"
)

// ReportHandler reportes de lectura sobre el ledger (protegido).
type ReportHandler struct {
	uc *analytics.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *analytics.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// MovementSummary godoc
// @Summary      Resumen de movimientos
// @Description  Suma entradas y salidas (cantidad y valor) por tipo en el rango. Sin fechas usa los últimos 30 días.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Limitar a un producto"
// @Param        from        query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to          query  string  false  "RFC3339 o YYYY-MM-DD (inclusive por día)"
// @Success      200  {object}  dto.MovementSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/movements/summary [get]
func (h *ReportHandler) MovementSummary(c *fiber.Ctx) error {
	out, err := h.uc.MovementSummary(c.UserContext(), c.Query("product_id"), c.Query("from"), c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RunningTotals godoc
// @Summary      Acumulados de un producto
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID del producto"
// @Param        from  query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to    query  string  false  "RFC3339 o YYYY-MM-DD"
// @Success      200  {object}  dto.RunningTotalsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/products/{id}/running-totals [get]
func (h *ReportHandler) RunningTotals(c *fiber.Ctx) error {
	out, err := h.uc.RunningTotals(c.UserContext(), c.Params("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// KardexPDF godoc
// @Summary      Kardex en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        id    path   string  true   "ID del producto"
// @Param        from  query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to    query  string  false  "RFC3339 o YYYY-MM-DD"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/products/{id}/kardex.pdf [get]
func (h *ReportHandler) KardexPDF(c *fiber.Ctx) error {
	doc, filename, err := h.uc.KardexPDF(c.UserContext(), c.Params("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(doc)
}
