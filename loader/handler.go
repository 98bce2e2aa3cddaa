package loader

// Kind tells the two handler variants apart.
type Kind int

const (
	Static Kind = iota
	Dynamic
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	}
	return "unknown"
}

// Func computes a response value from the request parameters: the query
// mapping for GET, the decoded body for POST.
type Func func(params interface{}) (interface{}, error)

// Handler is either a fixed value or a function of the request parameters.
type Handler struct {
	kind  Kind
	value interface{}
	fn    Func
}

func StaticHandler(v interface{}) Handler {
	return Handler{kind: Static, value: v}
}

func DynamicHandler(fn Func) Handler {
	return Handler{kind: Dynamic, fn: fn}
}

func (h Handler) Kind() Kind {
	return h.kind
}

// Invoke returns the static value as is, or calls the function with params.
func (h Handler) Invoke(params interface{}) (interface{}, error) {
	if h.kind == Dynamic && h.fn != nil {
		return h.fn(params)
	}
	return h.value, nil
}
