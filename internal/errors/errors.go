// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the szinit CLI.
//
// This package defines UserError, a type that carries structured error information
// including what went wrong, why it happened, and how to fix it. It also defines
// consistent exit codes for different error categories.
//
// # Usage Example
//
//	err := errors.NewInputError(
//	    "Cannot parse SENZING_DATABASE_URL",
//	    "Unknown protocol: oracle",
//	    "Use one of sqlite3, mysql, postgresql, db2 or mssql",
//	)
//	errors.FatalError(err, false)
//
// Format prints the three sections in color:
//
//	Error: Cannot parse SENZING_DATABASE_URL
//	Cause: Unknown protocol: oracle
//	Fix:   Use one of sqlite3, mysql, postgresql, db2 or mssql
//
// With --json the same error is written as:
//
//	{
//	  "error": "Cannot parse SENZING_DATABASE_URL",
//	  "cause": "Unknown protocol: oracle",
//	  "fix": "Use one of sqlite3, mysql, postgresql, db2 or mssql",
//	  "exit_code": 4
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Successful execution, including an already initialized volume
//   - ExitConfig (1): Configuration errors (unreadable config file, bad root directory)
//   - ExitDatabase (2): The database did not become reachable in time
//   - ExitInput (4): Invalid connection string or other invalid input
//   - ExitIO (5): A configuration file could not be read or written
//   - ExitInternal (10): Internal errors (bugs, panics)
package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitConfig indicates configuration errors.
	ExitConfig = 1

	// ExitDatabase indicates the database could not be reached.
	ExitDatabase = 2

	// ExitInput indicates invalid user input (bad arguments, bad connection string).
	ExitInput = 4

	// ExitIO indicates a file system failure while rendering configuration.
	ExitIO = 5

	// ExitInternal indicates internal errors (bugs, unexpected panics).
	// Exit code 10 signals "this is a bug that should be reported".
	ExitInternal = 10
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: What went wrong (user-facing error description)
//   - Cause: Why it happened (diagnostic information)
//   - Fix: How to fix it (actionable suggestion)
type UserError struct {
	// Message describes what went wrong in user-friendly language.
	Message string

	// Cause explains why the error occurred.
	Cause string

	// Fix provides an actionable suggestion on how to resolve the error.
	Fix string

	// ExitCode is the process exit code used by FatalError.
	ExitCode int

	// Err is the underlying error, kept for errors.Is and errors.As.
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(code int, msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: code,
		Err:      err,
	}
}

// NewConfigError creates a configuration error with exit code ExitConfig.
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitConfig, msg, cause, fix, err)
}

// NewDatabaseError creates an error with exit code ExitDatabase.
//
// Use this when a database probe gives up, not for connection strings that
// fail to parse.
func NewDatabaseError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitDatabase, msg, cause, fix, err)
}

// NewInputError creates an input validation error with exit code ExitInput.
//
// The underlying error is optional; connection string errors pass theirs so
// callers can still match them with errors.Is.
func NewInputError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitInput, msg, cause, fix, err)
}

// NewIOError creates a file system error with exit code ExitIO.
func NewIOError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitIO, msg, cause, fix, err)
}

// NewInternalError creates an internal error with exit code ExitInternal.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitInternal, msg, cause, fix, err)
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// Empty Cause or Fix fields are omitted. Color output respects NO_COLOR and
// can be disabled with noColor.
//
// Note: This method temporarily modifies the global color.NoColor state
// and restores it after formatting.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// Report writes err to w and returns the exit code the process should use.
//
// A UserError is printed with Format, or as ErrorJSON when jsonOutput is set.
// Any other error is printed as a single line and maps to ExitInternal.
func Report(w io.Writer, err error, jsonOutput bool) int {
	if err == nil {
		return ExitSuccess
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			// The exit code is still returned if encoding fails.
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(w, ue.Format(false))
		}
		return ue.ExitCode
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return ExitInternal
}

// FatalError prints the error to stderr and exits with the appropriate code.
//
// This function never returns when err is non-nil.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}
	os.Exit(Report(os.Stderr, err, jsonOutput))
}
