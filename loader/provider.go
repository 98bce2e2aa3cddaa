package loader

// Provider hands out the routing table for one request. Callers Close the
// table once the response is written.
type Provider interface {
	Routes() (*Table, error)
}

// Dir loads the directory from scratch on every call.
type Dir string

func (d Dir) Routes() (*Table, error) {
	return Load(string(d))
}
