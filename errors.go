package main

// ErrorWithExitCode carries a process exit status out of _main, so usage
// errors can exit differently from runtime failures.
type ErrorWithExitCode struct {
	Err      error
	ExitCode int
}

func (e *ErrorWithExitCode) Error() string {
	return e.Err.Error()
}

func (e *ErrorWithExitCode) Unwrap() error {
	return e.Err
}
