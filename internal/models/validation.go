package models

import "github.com/01moynul/ecommerce-api/internal/apperr"

// ValidationError reports a rejected request field as a bad request.
func ValidationError(msg string) error {
	return apperr.ErrBadRequest.With(msg, nil)
}
