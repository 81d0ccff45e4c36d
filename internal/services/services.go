package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrConflict, fmt.Sprintf(format, args...))
}

func clean(s string) string { return strings.TrimSpace(s) }
