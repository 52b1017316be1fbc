package context

type Key string

const (
	Identity  Key = "identity"
	RequestID Key = "request_id"
	Params    Key = "params"
)
