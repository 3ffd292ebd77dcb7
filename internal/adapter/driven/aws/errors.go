package aws

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

var accessDeniedCodes = map[string]bool{
	"AccessDenied":                true,
	"AccessDeniedException":       true,
	"UnauthorizedOperation":       true,
	"AuthorizationError":          true,
	"UnrecognizedClientException": true,
	"OptInRequired":               true,
}

var notFoundCodes = map[string]bool{
	"ResourceNotFoundException":         true,
	"AWSOrganizationsNotInUseException": true,
	"DataUnavailableException":          true,
}

// classify traduz erros da API em erros do domínio: acesso negado vira
// UnitAccessError e recurso inexistente vira ErrTierUnavailable. Os demais
// (throttling, 5xx) passam intactos para que o retry os repita.
func classify(unitID, operation string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case accessDeniedCodes[code]:
			return types.NewUnitAccessError(unitID, operation, err)
		case notFoundCodes[code]:
			return fmt.Errorf("%w: %s: %v", types.ErrTierUnavailable, operation, err)
		}
	}
	return fmt.Errorf("%s: %w", operation, err)
}
