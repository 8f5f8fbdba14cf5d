package errors

import (
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for
// the meshbuild CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error. meshbuild
// exits 0 on success (including a soft provisioning timeout, which is not an
// error) and 1 on every hard failure: configuration/template problems, I/O
// failures, exhausted submit/poll budgets, and authoritative remote failures.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if mbe, ok := err.(*MeshBuildError); ok {
		return a.formatMeshBuild(mbe)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatMeshBuild formats a MeshBuildError for display, appending a suggested
// remediation command where one exists for the category.
func (a *CLIErrorAdapter) formatMeshBuild(err *MeshBuildError) string {
	var base string
	if a.verbose {
		base = err.Error()
	} else {
		switch err.Category {
		case CategoryConfig, CategoryValidation, CategoryTemplate:
			base = err.Message
		default:
			base = fmt.Sprintf("%s: %s", err.Category, err.Message)
		}
	}

	if hint := remediationFor(err.Category); hint != "" {
		return fmt.Sprintf("%s\n  try: %s", base, hint)
	}
	return base
}

// remediationFor returns a manual follow-up command for categories where one
// makes sense.
func remediationFor(category ErrorCategory) string {
	switch category {
	case CategoryConfig:
		return "meshbuild init"
	case CategoryMesh, CategoryNetwork:
		return "aio api-mesh:status"
	default:
		return ""
	}
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if mbe, ok := err.(*MeshBuildError); ok {
		return mbe.Category == CategoryInternal ||
			mbe.Category == CategoryRuntime ||
			mbe.Severity == SeverityFatal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if mbe, ok := err.(*MeshBuildError); ok {
		level := slogLevelFromSeverity(mbe.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(mbe.Category)),
		}
		if mbe.Retryable {
			attrs = append(attrs, slog.Bool("retryable", true))
		}

		a.logger.LogAttrs(nil, level, mbe.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts MeshBuildError severity to slog level.
func slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityFatal:
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
