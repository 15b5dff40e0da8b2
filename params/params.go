// Package params declares the parameter forms the two protocols expose.
// A form is schema only: sections of typed, labelled parameters with
// help text and display conditions. Values arrive separately (flags or a
// yaml request file) and are validated against the form.
package params

import (
	"fmt"
)

// Parameter kinds. These mirror how workflow forms describe inputs: a
// "pointer" references an object in the project, a "path" is a file or
// directory, the rest are plain values.
const (
	KindPointer      = "pointer"
	KindMultiPointer = "multipointer"
	KindPath         = "path"
	KindBool         = "bool"
	KindString       = "string"
	KindFloat        = "float"
)

// Param is a single form parameter.
type Param struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Help  string `yaml:"help,omitempty"`
	Kind  string `yaml:"kind"`
	// For pointer params, the class of object being referenced.
	PointerClass string `yaml:"pointer_class,omitempty"`
	// A parameter the form can leave empty.
	AllowsNull bool `yaml:"allows_null,omitempty"`
	// A parameter validation insists on.
	Important bool `yaml:"important,omitempty"`
	// Name of a boolean parameter gating this one. When the gate is
	// false the parameter is ignored entirely.
	Condition string      `yaml:"condition,omitempty"`
	Default   interface{} `yaml:"default,omitempty"`
}

// Section groups parameters under a label.
type Section struct {
	Label  string   `yaml:"label"`
	Params []*Param `yaml:"params"`
}

// Form is the full parameter schema a protocol declares.
type Form struct {
	Sections []*Section `yaml:"sections"`
}

// Param finds a parameter by name, or returns nil.
func (f *Form) Param(name string) *Param {

	for _, s := range f.Sections {

		for _, p := range s.Params {

			if p.Name == name {
				return p
			}
		}
	}

	return nil
}

// Enabled reports whether a parameter's display condition holds for the
// given values. Parameters without a condition are always enabled.
func (f *Form) Enabled(p *Param, values map[string]interface{}) bool {

	if p.Condition == "" {
		return true
	}

	v, ok := values[p.Condition]

	if !ok {

		gate := f.Param(p.Condition)

		if gate == nil {
			return false
		}

		b, _ := gate.Default.(bool)
		return b
	}

	b, _ := v.(bool)
	return b
}

// Validate checks values against the form, returning a list of problem
// messages. An empty list means the values are acceptable.
func (f *Form) Validate(values map[string]interface{}) []string {

	messages := make([]string, 0)

	for name := range values {

		if f.Param(name) == nil {
			messages = append(messages, fmt.Sprintf("Unknown parameter '%s'", name))
		}
	}

	for _, s := range f.Sections {

		for _, p := range s.Params {

			if !f.Enabled(p, values) {
				continue
			}

			v, ok := values[p.Name]

			if !ok || isEmpty(v) {

				if p.Important {
					messages = append(messages, fmt.Sprintf("You must set '%s' (%s)", p.Name, p.Label))
				}

				continue
			}
		}
	}

	return messages
}

func isEmpty(v interface{}) bool {

	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case []string:
		return len(t) == 0
	default:
		return false
	}
}
