package types

// ResultStatus marks an invocation result as success or error.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
)

// Result is the uniform invocation result every adapter normalizes to.
// Agent-side failures never surface as Go errors past the connector
// boundary; they become a Result with StatusError and a message.
type Result struct {
	Status  ResultStatus `json:"status"`
	Result  any          `json:"result,omitempty"`
	Message string       `json:"message,omitempty"`

	AgentID    string         `json:"agent_id,omitempty"`
	AgentKind  ConnectionKind `json:"agent_type,omitempty"`
	MethodUsed string         `json:"method_used,omitempty"`
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// SuccessResult builds a success Result for the given agent kind.
func SuccessResult(kind ConnectionKind, value any) Result {
	return Result{Status: StatusSuccess, Result: value, AgentKind: kind}
}

// ErrorResult builds an error Result for the given agent kind.
func ErrorResult(kind ConnectionKind, message string) Result {
	return Result{Status: StatusError, Message: message, AgentKind: kind}
}
