package errprocess

import (
	"fmt"

	"book_exchange_service/pkg/logger"

	"go.uber.org/zap"
)

// Wrap logs err under op and returns it wrapped, so callers can still errors.Is the cause.
// A nil err stays nil.
func Wrap(op string, err error, fields ...zap.Field) error {
	if err == nil {
		return nil
	}
	logger.Log.Error(op, append(fields, zap.Error(err))...)
	return fmt.Errorf("%s: %w", op, err)
}
