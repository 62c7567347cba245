package schema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Field is one parameter descriptor: name, type tag, and whether the
// parameter is required. Fields are ordered and read-only after
// construction.
type Field struct {
	Name        string `json:"name"`
	Type        Type   `json:"-"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// Fields is the ordered parameter schema of a clinical tool.
type Fields []Field

// Result reports validation findings. Unknown keys are warnings, not
// errors, so callers can pass through serialization-boundary extras.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string

	errs []error
}

func (r *Result) fail(ve *ValidationError) {
	r.Valid = false
	r.errs = append(r.errs, ve)
	r.Errors = append(r.Errors, ve.Error())
}

// Err collapses the findings into an error value: nil when valid, the
// single ValidationError when there is one, an AggregateError otherwise.
func (r Result) Err() error {
	switch len(r.errs) {
	case 0:
		return nil
	case 1:
		return r.errs[0]
	default:
		return &AggregateError{Errors: r.errs}
	}
}

// Validate checks data against the ordered field schema.
func (fs Fields) Validate(data map[string]any) Result {
	res := Result{Valid: true}

	known := make(map[string]bool, len(fs))
	for _, f := range fs {
		known[f.Name] = true
		value, exists := data[f.Name]
		if !exists {
			if f.Required {
				res.fail(&ValidationError{Key: f.Name, Reason: "required"})
			}
			continue
		}
		if err := f.Type.Validate(value); err != nil {
			res.fail(&ValidationError{Key: f.Name, Reason: err.Error(), Value: value})
		}
	}

	for key := range data {
		if !known[key] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("unknown parameter %q ignored", key))
		}
	}

	return res
}

// Describe returns a serializable view of the schema for tool listings.
func (fs Fields) Describe() []map[string]any {
	out := make([]map[string]any, 0, len(fs))
	for _, f := range fs {
		d := map[string]any{
			"name":     f.Name,
			"type":     f.Type.Name(),
			"required": f.Required,
		}
		if f.Description != "" {
			d["description"] = f.Description
		}
		if e, ok := f.Type.(*EnumType); ok {
			d["values"] = e.Values()
		}
		out = append(out, d)
	}
	return out
}

// Decode maps validated parameters onto a concrete struct so tool logic
// never touches the open map. Must be called after Validate passed.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "param",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("decoding parameters: %w", err)
	}
	return nil
}
