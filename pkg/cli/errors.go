package cli

import "fmt"

// UnknownCommandError reports a line whose best-match node is not
// executable. Malformed quoting is reported the same way.
type UnknownCommandError struct {
	Line string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Line)
}

// MissingArgumentError names a mandatory argument absent from the input.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("no argument: %s", e.Name)
}

// RangeError reports a value outside an argument's declared numeric range.
type RangeError struct {
	Name  string
	Value string
	Range string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("argument %s: %q out of range %s", e.Name, e.Value, e.Range)
}

// EnumError reports a value that is not a member of an argument's enum.
type EnumError struct {
	Name  string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("argument %s: %q is not an allowed value", e.Name, e.Value)
}

// ActionNotFoundError reports a method or func action whose name has no
// registration.
type ActionNotFoundError struct {
	Kind string // "method" or "func"
	Name string
}

func (e *ActionNotFoundError) Error() string {
	return fmt.Sprintf("no %s: %s", e.Kind, e.Name)
}

// ActionFailedError wraps a failed action invocation: a non-zero subprocess
// exit, a callback error, or a subtree that could not run.
type ActionFailedError struct {
	Err error
}

func (e *ActionFailedError) Error() string {
	return fmt.Sprintf("failed: %v", e.Err)
}

func (e *ActionFailedError) Unwrap() error { return e.Err }
