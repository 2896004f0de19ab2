package encoder

import (
	"fmt"

	"github.com/tangle-project/tangle/parser"
)

// EncodingError provides detailed context for an encoding or relocation
// failure: the source instruction, a message, and an optional wrapped cause.
type EncodingError struct {
	Instruction *parser.Instruction
	Message     string
	Wrapped     error
}

func (e *EncodingError) Error() string {
	location := ""
	if e.Instruction != nil {
		location = fmt.Sprintf("%s: ", e.Instruction.Pos)
	}

	if e.Wrapped != nil {
		return fmt.Sprintf("%s%s: %v", location, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s%s", location, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *EncodingError) Unwrap() error {
	return e.Wrapped
}

// NewEncodingError creates an EncodingError with instruction context.
func NewEncodingError(inst *parser.Instruction, message string) *EncodingError {
	return &EncodingError{Instruction: inst, Message: message}
}

// WrapEncodingError wraps err with instruction context, unless it is
// already an *EncodingError.
func WrapEncodingError(inst *parser.Instruction, err error) error {
	if err == nil {
		return nil
	}
	if ee, ok := err.(*EncodingError); ok {
		return ee
	}
	return &EncodingError{Instruction: inst, Message: "failed to encode instruction", Wrapped: err}
}
