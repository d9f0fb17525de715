package dao

// Parameter is a named list filter handed to Service.List. Interpretation is
// up to the store; see the criteria package for the matchers quorly uses.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter builds a filter; a single value stays scalar, several values
// become a slice so matchers can express "any of".
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
