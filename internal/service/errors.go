package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var (
	ErrValidation          = errors.New("validation")            // 400
	ErrUnauthorized        = errors.New("unauthorized")          // 401
	ErrForbidden           = errors.New("forbidden")             // 403
	ErrNotFound            = errors.New("not found")             // 404
	ErrConflict            = errors.New("conflict")              // 409
	ErrInvalidRefreshToken = errors.New("invalid refresh token") // 403
	ErrAccountDisabled     = errors.New("account disabled")      // 403

	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrValidation)
)

// fromRepo lifts repository sentinels into service ones, naming the entity.
func fromRepo(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("%w: %s not found", ErrNotFound, what)
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	case errors.Is(err, repo.ErrInUse):
		return fmt.Errorf("%w: %s is in use", ErrConflict, what)
	case errors.Is(err, repo.ErrEmptyAlias):
		return fmt.Errorf("%w: alias is required", ErrValidation)
	case errors.Is(err, repo.ErrQuantityLimit):
		return fmt.Errorf("%w: quantity cannot exceed %d", ErrValidation, models.MaxLineQuantity)
	case errors.Is(err, repo.ErrOutOfStock):
		return fmt.Errorf("%w: out of stock", ErrConflict)
	}
	return err
}

func publish(ctx context.Context, p mykafka.Publisher, topic string, key uint, typ string, fields map[string]any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, strconv.FormatUint(uint64(key), 10), mykafka.Event(typ, fields)); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", typ, "error", err)
	}
}
