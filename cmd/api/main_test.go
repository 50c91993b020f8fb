package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Un almacén inalcanzable se informa como error de run, sin terminar el proceso.
func TestRun_AlmacenInalcanzableDevuelveError(t *testing.T) {
	cfg, err := config.NewFromMap(map[string]any{
		"DATABASE_URL":    "postgres://u:p@127.0.0.1:1/inventario?sslmode=disable&connect_timeout=1",
		"DB_AUTO_MIGRATE": false,
	})
	require.NoError(t, err)
	log := logger.New(logger.Config{Env: "test", Level: "error", Output: io.Discard})

	err = run(cfg, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "almacén del ledger")
}
