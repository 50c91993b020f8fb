package analytics

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// KardexData datos del kardex (historial valorizado) de un producto.
type KardexData struct {
	Product      *entity.Product
	OpeningStock int64
	Rows         []domaininv.RunningTotal
	From, To     *time.Time
	GeneratedAt  time.Time
}

// KardexPDFGenerator puerto de la representación gráfica del kardex (implementado con maroto).
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, data KardexData) ([]byte, error)
}

// SignalLister fuente del conteo de alertas de reposición.
type SignalLister interface {
	ListSignals(ctx context.Context, status string, page dto.PageRequest) (*dto.SignalListResponse, error)
}
