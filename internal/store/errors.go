package store

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrDuplicateKey       = errors.New("already exists")
	ErrForeignKeyViolated = errors.New("referenced record is missing or still referenced")
)

// translate maps gorm errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKeyViolated
	default:
		return err
	}
}
