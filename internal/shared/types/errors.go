package types

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailure: nem o perfil pedido nem a cadeia padrão de credenciais funcionaram.
	ErrAuthFailure = errors.New("unable to establish identity with AWS")
	// ErrPricingUnavailable marks a price lookup that could not be served.
	ErrPricingUnavailable = errors.New("pricing unavailable")
	// ErrPagingLimitExceeded: mais registros do que o paginador consegue ler no chunk mínimo.
	ErrPagingLimitExceeded = errors.New("paging limit exceeded at minimum chunk size")
	// ErrSinkWrite marks a report that could not be delivered.
	ErrSinkWrite = errors.New("report sink write failed")
	// ErrTierUnavailable é devolvido por fontes opcionais não configuradas.
	ErrTierUnavailable = errors.New("estimation tier unavailable")
)

// UnitAccessError is a permission or API failure scoped to a single unit.
type UnitAccessError struct {
	UnitID    string
	Operation string
	Err       error
}

func (e *UnitAccessError) Error() string {
	return fmt.Sprintf("unit %s: %s: %v", e.UnitID, e.Operation, e.Err)
}

func (e *UnitAccessError) Unwrap() error { return e.Err }

// NewUnitAccessError embrulha err com o contexto da unidade.
func NewUnitAccessError(unitID, operation string, err error) error {
	return &UnitAccessError{UnitID: unitID, Operation: operation, Err: err}
}

// IsUnitAccessError reports whether err carries a UnitAccessError.
func IsUnitAccessError(err error) bool {
	var target *UnitAccessError
	return errors.As(err, &target)
}
