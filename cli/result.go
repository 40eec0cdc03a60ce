package cli

// Exit codes returned through CommandError.
const (
	// ExitRejected means the input was read but has error diagnostics.
	ExitRejected = 1
	// ExitFailure means the input could not be processed at all.
	ExitFailure = 2
)

// CommandError signals a command failure with a specific exit code.
// Commands return this after printing their own output to stderr; main maps
// it to the process exit status.
type CommandError struct {
	exitCode int
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

func (e *CommandError) Error() string {
	return "command failed"
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}
