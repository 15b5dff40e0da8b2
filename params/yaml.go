package params

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadValues reads a yaml request document and validates it against the
// form. Unknown keys and missing important parameters are both rejected,
// with every problem reported at once.
func LoadValues(r io.Reader, f *Form) (map[string]interface{}, error) {

	values := make(map[string]interface{})

	dec := yaml.NewDecoder(r)

	err := dec.Decode(&values)

	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("Failed to decode request, %w", err)
	}

	messages := f.Validate(values)

	if len(messages) > 0 {
		return nil, fmt.Errorf("Invalid request: %s", strings.Join(messages, "; "))
	}

	return values, nil
}

// LoadValuesFromPath reads and validates a yaml request file.
func LoadValuesFromPath(path string, f *Form) (map[string]interface{}, error) {

	fh, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("Failed to open request file %s, %w", path, err)
	}

	defer fh.Close()

	return LoadValues(fh, f)
}

// StringValue fetches a string parameter from a value map, tolerating a
// missing key.
func StringValue(values map[string]interface{}, name string) string {

	v, ok := values[name]

	if !ok {
		return ""
	}

	s, _ := v.(string)
	return s
}

// StringListValue fetches a list-of-strings parameter, accepting either a
// yaml sequence or a single scalar.
func StringListValue(values map[string]interface{}, name string) []string {

	v, ok := values[name]

	if !ok {
		return nil
	}

	switch t := v.(type) {

	case string:

		if t == "" {
			return nil
		}

		return []string{t}

	case []interface{}:

		out := make([]string, 0, len(t))

		for _, item := range t {

			s, ok := item.(string)

			if ok && s != "" {
				out = append(out, s)
			}
		}

		return out

	case []string:
		return t

	default:
		return nil
	}
}

// BoolValue fetches a boolean parameter, falling back to the form
// parameter's default.
func BoolValue(values map[string]interface{}, f *Form, name string) bool {

	v, ok := values[name]

	if ok {
		b, _ := v.(bool)
		return b
	}

	p := f.Param(name)

	if p == nil {
		return false
	}

	b, _ := p.Default.(bool)
	return b
}

// FloatValue fetches a numeric parameter, accepting ints as well.
func FloatValue(values map[string]interface{}, name string) float64 {

	v, ok := values[name]

	if !ok {
		return 0
	}

	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return 0
	}
}
