package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
)

// HealthDeps sondas del estado de la aplicación.
type HealthDeps struct {
	// Ping comprueba el almacén del ledger; nil si no aplica (memoria).
	Ping func(ctx context.Context) error
	// Audit expone el estado del recorder y su cola.
	Audit interface {
		State() audit.State
		Pending() int
	}
}

// Health godoc
// @Summary      Estado del servicio
// @Description  503 si el almacén no responde. La auditoría degradada no cambia el código: solo se informa.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func Health(deps HealthDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := fiber.Map{"status": "ok", "store": "ok"}
		status := fiber.StatusOK
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				body["status"], body["store"] = "degraded", err.Error()
				status = fiber.StatusServiceUnavailable
			}
		}
		if deps.Audit != nil {
			body["audit"] = fiber.Map{"state": deps.Audit.State(), "pending": deps.Audit.Pending()}
		}
		return c.Status(status).JSON(body)
	}
}
