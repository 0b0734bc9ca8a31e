package failures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEnumeration   = errors.New("enumeration error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrPersistence   = errors.New("persistence error")
	ErrNotFound      = errors.New("not found")
	ErrOperation     = errors.New("operation failed")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrOperation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err should end a session rather than be summarised.
// Only startup enumeration and configuration problems qualify.
func IsFatal(err error) bool {
	return errors.Is(err, ErrEnumeration) || errors.Is(err, ErrConfiguration)
}

// Hint returns a short operator-facing next step for a classified error.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrEnumeration):
		return "check paths.catalog and paths.source_dir"
	case errors.Is(err, ErrConfiguration):
		return "run 'logomatch config validate'"
	case errors.Is(err, ErrPersistence):
		return "check permissions on paths.selections; the previous snapshot is intact"
	case errors.Is(err, ErrNotFound):
		return "run 'logomatch selections list' to see stored keys"
	case errors.Is(err, ErrValidation):
		return "check the supplied values"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "unspecified failure"
	}
	return strings.Join(parts, ": ")
}
