package command

import "fmt"

// Code classifies a Result.
type Code string

const (
	CodeInfo  Code = "INFO"
	CodeWarn  Code = "WARN"
	CodeError Code = "ERROR"
)

// Result is what a runner hands back to the dispatcher for logging. Err may be
// set on an INFO result: the run was recorded but a step inside it failed.
type Result struct {
	Code    Code
	Details string
	Err     error
}

// Info returns an informational result.
func Info(format string, a ...any) *Result {
	return &Result{Code: CodeInfo, Details: fmt.Sprintf(format, a...)}
}

// Fail returns an error result carrying err.
func Fail(err error) *Result {
	return &Result{Code: CodeError, Details: err.Error(), Err: err}
}

// WithErr attaches err to r and returns r.
func (r *Result) WithErr(err error) *Result {
	r.Err = err
	return r
}

func (r *Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", r.Code, r.Details, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Details)
}
