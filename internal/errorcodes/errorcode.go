// Package errorcodes defines go_arv tool errors using a structured type.
// ToolError holds the two-character code sent on the wire and a human-readable description.
package errorcodes

// Predefined tool error instances.
var (
	Err00 = ToolError{"00", "No error"}
	// ErrWrongArgCount: a command expected exactly one status argument.
	ErrWrongArgCount = ToolError{"10", "Expected a single arg, hex or decimal"}
	// ErrInvalidArg: the status argument is neither decimal nor hex.
	ErrInvalidArg = ToolError{
		"11",
		"Unrecognized argument format, expected a single hex or decimal argument",
	}
	ErrUnrecognizedStatus = ToolError{"12", "The code is not recognized by this tool"}
	ErrInvalidNVRAM       = ToolError{"20", "Write-protect NVRAM image has the wrong size or format"}
	ErrInvalidPolicy      = ToolError{"21", "Write-protect policy is invalid"}
	ErrUnknownKind        = ToolError{"30", "Unknown verify error kind"}
	ErrMalformedRequest   = ToolError{"51", "Malformed request"}
	ErrUnknownCommand     = ToolError{"68", "Unknown command"}
)

// ToolError represents a tool-level error with its code and description.
type ToolError struct {
	Code        string // two-character error code
	Description string // human-readable description
}

// Error implements the Go error interface: "<Code>: <Description>".
func (e ToolError) Error() string {
	return e.Code + ": " + e.Description
}

// CodeOnly returns only the error code (e.g., "68"), for embedding in service responses.
func (e ToolError) CodeOnly() string {
	return e.Code
}
