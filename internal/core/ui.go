package core

import "io"

// UI defines the interface for user facing output of the CLI.
type UI interface {
	// Section prints a section header.
	Section(title string)
	// Title prints a main title.
	Title(title string)
	Success(msg string)
	Info(msg string)
	Warning(msg string)
	Error(msg string)
	// Table renders rows; the first row is the header.
	Table(rows [][]string) error
	Printf(format string, args ...interface{})
	// WithWriter returns a new UI instance writing to the specified writer.
	WithWriter(w io.Writer) UI
}
