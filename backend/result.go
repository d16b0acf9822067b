package backend

import (
	"fmt"

	"github.com/pkg/errors"
)

// Result is a status code handed back by the native backend. Zero and
// positive values are successes, negative values are failures.
type Result int

const (
	Success Result = 0

	ErrorOutOfHostMemory      Result = -1
	ErrorOutOfDeviceMemory    Result = -2
	ErrorInitializationFailed Result = -3
	ErrorDeviceLost           Result = -4
)

var resultMapping = map[Result]string{
	Success:                   "Success",
	ErrorOutOfHostMemory:      "ErrorOutOfHostMemory",
	ErrorOutOfDeviceMemory:    "ErrorOutOfDeviceMemory",
	ErrorInitializationFailed: "ErrorInitializationFailed",
	ErrorDeviceLost:           "ErrorDeviceLost",
}

func (r Result) String() string {
	str, ok := resultMapping[r]
	if !ok {
		return fmt.Sprintf("unknown result code %d", int(r))
	}
	return str
}

// IsError returns true for failure codes
func (r Result) IsError() bool {
	return r < 0
}

// ToError returns nil for success codes and a stack-annotated error for
// failure codes.
func (r Result) ToError() error {
	if !r.IsError() {
		return nil
	}

	return errors.WithStack(&resultError{code: r})
}

type resultError struct {
	code Result
}

func (e *resultError) Error() string {
	return fmt.Sprintf("native backend error: %s", e.code.String())
}
