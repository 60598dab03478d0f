package cli

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"github.com/roach88/rxtrace/internal/ir"
)

// isoDate accepts a date in any common layout ("2024-01-15",
// "Jan 15, 2024", "01/15/2024", ...) and returns it as YYYY-MM-DD.
// An empty value stays empty so optional flags can be left unset.
func isoDate(flag, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return "", WrapExitError(ExitCommandError, fmt.Sprintf("invalid --%s", flag), err)
	}
	return ir.FormatDate(t), nil
}
