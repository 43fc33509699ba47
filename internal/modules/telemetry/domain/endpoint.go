package domain

// ParamKind is the type an endpoint expects for one of its query parameters.
type ParamKind uint8

const (
	ParamNumber ParamKind = iota + 1
	ParamString
)

func (k ParamKind) String() string {
	switch k {
	case ParamNumber:
		return "number"
	case ParamString:
		return "string"
	default:
		return "unknown"
	}
}

// Operator is the comparison token placed between a query key and its value.
type Operator string

const (
	OpEqual        Operator = "="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
)

// IsRange reports whether the operator is an inequality filter rather than plain equality.
func (o Operator) IsRange() bool {
	return o != "" && o != OpEqual
}

// ParamSpec describes one recognized query parameter.
type ParamSpec struct {
	// Name is the key callers use in Params.
	Name string
	// Key is the key written to the URL; it differs from Name for date range pairs.
	Key         string
	Kind        ParamKind
	Operator    Operator
	Required    bool
	AllowLatest bool
}

// EndpointDescriptor describes one OpenF1 resource and its parameters in canonical URL order.
type EndpointDescriptor struct {
	Name     string
	Resource string
	Params   []ParamSpec
}

// Param looks up a parameter spec by its caller-facing name.
func (d EndpointDescriptor) Param(name string) (ParamSpec, bool) {
	for _, spec := range d.Params {
		if spec.Name == name {
			return spec, true
		}
	}
	return ParamSpec{}, false
}
