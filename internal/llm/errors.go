package llm

import "errors"

var (
	// ErrVendorUnavailable indicates the chat-completion vendor is unreachable
	// or returned a non-success HTTP status.
	ErrVendorUnavailable = errors.New("llm vendor unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrSuperseded indicates an in-flight request was aborted because a newer
	// request replaced it. Not a failure: the superseded result is discarded.
	ErrSuperseded = errors.New("llm request superseded")
)
