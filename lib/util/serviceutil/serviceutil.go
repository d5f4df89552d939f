package serviceutil

import (
	"log/slog"
	"os"
)

// Fatal logs the error and exits the process with status 1.
func Fatal(message string, err error) {
	slog.Error(message, "err", err)
	os.Exit(1)
}
