package repo

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrInUse             = errors.New("record in use")
	ErrOutOfStock        = errors.New("variant out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNegativeStock     = errors.New("stock cannot go negative")
	ErrQuantityLimit     = errors.New("quantity exceeds line limit")
	ErrEmptyAlias        = errors.New("alias is empty")
	ErrForeignAddress    = errors.New("address does not belong to user")
	ErrTokenRevoked      = errors.New("refresh token expired or revoked")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// addQuantity sums two line quantities, refusing results past
// models.MaxLineQuantity so the sum can never wrap.
func addQuantity(a, b int) (int, error) {
	if a < 0 || b < 0 || a > models.MaxLineQuantity || b > models.MaxLineQuantity-a {
		return 0, ErrQuantityLimit
	}
	return a + b, nil
}

// translate maps driver level errors onto repo sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
