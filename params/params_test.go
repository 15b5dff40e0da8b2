package params

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testForm() *Form {

	return &Form{
		Sections: []*Section{
			{
				Label: "Input",
				Params: []*Param{
					{
						Name:      "files_path",
						Label:     "Files directory",
						Kind:      KindPath,
						Important: true,
					},
					{
						Name:    "masks",
						Label:   "Masks to export?",
						Kind:    KindBool,
						Default: false,
					},
					{
						Name:      "export_masks",
						Label:     "Masks to export",
						Kind:      KindMultiPointer,
						Condition: "masks",
						Important: true,
					},
				},
			},
		},
	}
}

func TestFormParam(t *testing.T) {

	f := testForm()

	require.NotNil(t, f.Param("files_path"))
	require.Nil(t, f.Param("no_such_param"))
}

func TestFormEnabled(t *testing.T) {

	f := testForm()
	p := f.Param("export_masks")

	require.False(t, f.Enabled(p, map[string]interface{}{}))
	require.False(t, f.Enabled(p, map[string]interface{}{"masks": false}))
	require.True(t, f.Enabled(p, map[string]interface{}{"masks": true}))
}

func TestFormValidate(t *testing.T) {

	f := testForm()

	messages := f.Validate(map[string]interface{}{
		"files_path": "/tmp/export",
	})
	require.Empty(t, messages)

	messages = f.Validate(map[string]interface{}{})
	require.Len(t, messages, 1)
	require.Contains(t, messages[0], "files_path")

	messages = f.Validate(map[string]interface{}{
		"files_path": "/tmp/export",
		"bogus":      true,
	})
	require.Len(t, messages, 1)
	require.Contains(t, messages[0], "Unknown parameter")

	// gated important param only matters when the gate is on
	messages = f.Validate(map[string]interface{}{
		"files_path": "/tmp/export",
		"masks":      true,
	})
	require.Len(t, messages, 1)
	require.Contains(t, messages[0], "export_masks")
}

func TestLoadValues(t *testing.T) {

	f := testForm()

	doc := `files_path: /tmp/export
masks: true
export_masks:
  - mask1.mrc
  - mask2.mrc
`

	values, err := LoadValues(strings.NewReader(doc), f)
	require.NoError(t, err)

	require.Equal(t, "/tmp/export", StringValue(values, "files_path"))
	require.True(t, BoolValue(values, f, "masks"))
	require.Equal(t, []string{"mask1.mrc", "mask2.mrc"}, StringListValue(values, "export_masks"))
}

func TestLoadValuesRejectsUnknownKey(t *testing.T) {

	f := testForm()

	_, err := LoadValues(strings.NewReader("files_path: /tmp/export\nbogus: 1\n"), f)
	require.Error(t, err)
}

func TestValueHelpers(t *testing.T) {

	f := testForm()

	values := map[string]interface{}{
		"files_path": "single.mrc",
		"rate":       1.06,
		"count":      3,
	}

	require.Equal(t, []string{"single.mrc"}, StringListValue(values, "files_path"))
	require.Nil(t, StringListValue(values, "missing"))
	require.Equal(t, 1.06, FloatValue(values, "rate"))
	require.Equal(t, 3.0, FloatValue(values, "count"))
	require.Equal(t, 0.0, FloatValue(values, "missing"))
	require.False(t, BoolValue(values, f, "masks"))
}
