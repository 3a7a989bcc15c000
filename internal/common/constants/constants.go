// Package constants is responsible for defining the constants used in the application.
package constants

import "log/slog"

var (
	// Version is the version of the application.
	Version = "Dev"
)

const (
	// WebServiceCmdName is the name of the web service command.
	WebServiceCmdName = "appliance-insights-web-service"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn
)

// Report constants.
const (
	// DefaultExplanationPath is the default path of the explanation report, relative to the working directory.
	DefaultExplanationPath = "output_explanation.txt"

	// DefaultSchedulesPath is the default path of the schedules report, relative to the working directory.
	DefaultSchedulesPath = "output.txt"
)
