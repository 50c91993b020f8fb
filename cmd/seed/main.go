// seed carga un catálogo inicial de categorías y productos en PostgreSQL
// a partir de un CSV separado por ';' con columnas:
//
//	categoria;sku;nombre;precio_unitario;stock_inicial
//
// Uso: go run ./cmd/seed [ruta/catalogo.csv]
// Por defecto busca catalogo.csv en el directorio actual. Los SKU existentes se omiten,
// así que puede ejecutarse varias veces sobre la misma base. Las filas sin categoría
// se asignan a "General".
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/clock"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// seedUserID autor de las entradas de auditoría generadas por el seed.
const seedUserID = "seed"

// defaultCategory categoría de las filas que no indican una.
const defaultCategory = "General"

type catalogRow struct {
	category     string
	sku          string
	name         string
	unitPrice    decimal.Decimal
	initialStock int64
}

func main() {
	csvPath := "catalogo.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := parseCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "seed"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DB.ConnectionString(), log.Component("postgres")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	clk := clock.System{}
	categories := postgres.NewCategoryRepository(pool)
	recorder := audit.NewRecorder(postgres.NewAuditLogRepository(pool), clk, log.Zerolog(), audit.Config{})
	products := usecase.NewProductUseCase(postgres.NewProductRepository(pool), categories, recorder, clk)

	categoryIDs := make(map[string]string)
	var created, skipped int
	for _, r := range rows {
		categoryID, ok := categoryIDs[r.category]
		if !ok {
			categoryID = categoryIDFor(r.category)
			now := clk.Now()
			err := categories.Create(ctx, &entity.Category{ID: categoryID, Name: r.category, CreatedAt: now, UpdatedAt: now})
			if err != nil && !errors.Is(err, domain.ErrDuplicate) {
				log.Fatal().Err(err).Str("category", r.category).Msg("crear categoría")
			}
			categoryIDs[r.category] = categoryID
		}

		_, err := products.Create(ctx, seedUserID, dto.CreateProductRequest{
			SKU:          r.sku,
			Name:         r.name,
			CategoryID:   categoryID,
			UnitPrice:    r.unitPrice,
			InitialStock: r.initialStock,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		default:
			log.Fatal().Err(err).Str("sku", r.sku).Msg("crear producto")
		}
	}

	if err := recorder.Stop(ctx); err != nil {
		log.Warn().Err(err).Int("pending", recorder.Pending()).Msg("auditoría pendiente sin escribir")
	}
	fmt.Printf("Catálogo %s: %d categorías, %d productos creados, %d SKU existentes omitidos\n",
		csvPath, len(categoryIDs), created, skipped)
}

// categoryIDFor deriva un ID estable del nombre para que re-ejecutar el seed no duplique categorías.
func categoryIDFor(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("category:"+strings.ToLower(name))).String()
}

// parseCatalog lee el CSV. La primera fila es encabezado si su columna de stock no es numérica.
func parseCatalog(r io.Reader) ([]catalogRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	var rows []catalogRow
	for i, rec := range records {
		stock, err := strconv.ParseInt(strings.TrimSpace(rec[4]), 10, 64)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("fila %d: stock_inicial %q: %w", i+1, rec[4], err)
		}
		price := decimal.Zero
		if s := strings.TrimSpace(rec[3]); s != "" {
			price, err = decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
			if err != nil {
				return nil, fmt.Errorf("fila %d: precio_unitario %q: %w", i+1, rec[3], err)
			}
		}
		category := strings.TrimSpace(rec[0])
		if category == "" {
			category = defaultCategory
		}
		rows = append(rows, catalogRow{
			category:     category,
			sku:          strings.TrimSpace(rec[1]),
			name:         strings.TrimSpace(rec[2]),
			unitPrice:    price,
			initialStock: stock,
		})
	}
	return rows, nil
}
