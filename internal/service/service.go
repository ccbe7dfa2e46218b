// Package service holds the recipe-sharing business logic between the HTTP
// handlers and the store. Every mutation re-checks authorization here, so a
// handler that forgets a guard still cannot write.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/larderapp/larder-server/internal/domain"
	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/logger"
	"github.com/larderapp/larder-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// paginate counts, clamps the page into range and lists. Over-range pages
// return the last page rather than an error.
func paginate[T any](
	ctx context.Context,
	page, pageSize int,
	count func(context.Context) (int, error),
	list func(ctx context.Context, page, pageSize int) ([]T, error),
) (domain.Page[T], error) {
	if pageSize < 1 {
		pageSize = 1
	}

	total, err := count(ctx)
	if err != nil {
		return domain.Page[T]{}, err
	}

	page = domain.ClampPage(page, domain.PageCount(total, pageSize))
	items, err := list(ctx, page, pageSize)
	if err != nil {
		return domain.Page[T]{}, err
	}

	return domain.NewPage(items, page, pageSize, total), nil
}

// fieldErrors extracts the per-field messages of a validation error.
func fieldErrors(err error) map[string]string {
	var de *domainerrors.Error
	if errors.As(err, &de) {
		if fields, ok := de.Details.(map[string]string); ok {
			return fields
		}
	}
	return map[string]string{}
}

func logOrDiscard(l *slog.Logger) *slog.Logger {
	return logger.Wrap(l).Logger
}

// requestLog tags base with the request ID carried by ctx, when there is one.
func requestLog(ctx context.Context, base *slog.Logger) *logger.Logger {
	return logger.Wrap(base).ForRequest(ctx)
}
