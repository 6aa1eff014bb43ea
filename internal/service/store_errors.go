package service

import (
	"errors"

	"github.com/noah-isme/bilishelf-api/internal/repository"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

// storeError maps Entity Store failures onto the error taxonomy.
func storeError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case repository.IsNotFound(err):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case repository.IsConstraint(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "conflicting record")
	default:
		return appErrors.Internal(err, "store operation failed")
	}
}
