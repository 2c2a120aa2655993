package repository

import (
	"errors"

	domainRepo "github.com/sangkips/clientbook-api/internal/domain/repository"
	"gorm.io/gorm"
)

// translateError maps driver errors onto the domain sentinels. The connection
// is opened with TranslateError so unique violations arrive as
// gorm.ErrDuplicatedKey.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domainRepo.ErrDuplicateIdentifier
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainRepo.ErrNotFound
	}
	return err
}
