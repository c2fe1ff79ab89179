package host

// TaskExecutionFailure is raised by a host when a task fails while
// executing. Message is host-supplied and returned verbatim by Error.
type TaskExecutionFailure struct {
	Task    string
	Message string
	Cause   error
}

func (e *TaskExecutionFailure) Error() string {
	return e.Message
}

func (e *TaskExecutionFailure) Unwrap() error {
	return e.Cause
}

// Detail names the failing task for diagnostic reports.
func (e *TaskExecutionFailure) Detail() string {
	return "task: " + e.Task
}
