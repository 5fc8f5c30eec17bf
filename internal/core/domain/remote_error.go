package domain

// RemoteCallError reports a failed upstream or remote tool call.
// Error returns Message unchanged so the text survives any transport hop.
type RemoteCallError struct {
	Operation string
	Status    int
	Message   string
}

// NewRemoteCallError creates a RemoteCallError for the named operation.
func NewRemoteCallError(op string, status int, msg string) *RemoteCallError {
	return &RemoteCallError{Operation: op, Status: status, Message: msg}
}

func (e *RemoteCallError) Error() string {
	return e.Message
}

// Is reports whether target is ErrRemoteCall.
func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCall
}
