package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeNotNullViolation     = "23502"
	codeForeignKeyViolation  = "23503"
	codeRestrictViolation    = "23001"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Constraints con significado de dominio.
const (
	constraintMovementSequence = "ux_stock_movements_product_sequence"
	constraintMovementReversal = "ux_stock_movements_reversal_of"
	constraintProductCategory  = "products_category_id_fkey"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// mapError traduce errores de PostgreSQL a errores de dominio; el resto pasa intacto.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w", op, domain.ErrConcurrentModification)
	case codeRestrictViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrLedgerImmutable)
	case codeCheckViolation:
		return fmt.Errorf("%s (%s): %w", op, pgErr.ConstraintName, domain.ErrInvalidInput)
	case codeNotNullViolation:
		return fmt.Errorf("%s: %w", op, &domain.ValidationError{Field: pgErr.ColumnName, Reason: "es obligatorio"})
	case codeForeignKeyViolation:
		if pgErr.ConstraintName == constraintProductCategory {
			return fmt.Errorf("%s: %w", op, &domain.ValidationError{Field: "category_id", Reason: "la categoría no existe o tiene productos asociados"})
		}
		return fmt.Errorf("%s (%s): %w", op, pgErr.ConstraintName, domain.ErrInvalidInput)
	case codeUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintMovementSequence:
			return fmt.Errorf("%s: %w", op, domain.ErrConcurrentModification)
		case constraintMovementReversal:
			return domain.ErrAlreadyReversed
		}
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
