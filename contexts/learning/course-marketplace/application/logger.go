package application

import "log/slog"

const ModuleName = "learning/course-marketplace"

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
