package schema

import (
	"fmt"
	"reflect"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values, optionally bounded.
type IntType struct {
	min, max *int64
}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	n, err := toInt64(value)
	if err != nil {
		return err
	}
	if t.min != nil && n < *t.min {
		return fmt.Errorf("must be >= %d", *t.min)
	}
	if t.max != nil && n > *t.max {
		return fmt.Errorf("must be <= %d", *t.max)
	}
	return nil
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return int64(v), nil
		}
		return 0, fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return 0, fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates floating-point values, optionally bounded.
type FloatType struct {
	min, max *float64
}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	var f float64
	switch v := value.(type) {
	case float32:
		f = float64(v)
	case float64:
		f = v
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
	if t.min != nil && f < *t.min {
		return fmt.Errorf("must be >= %g", *t.min)
	}
	if t.max != nil && f > *t.max {
		return fmt.Errorf("must be <= %g", *t.max)
	}
	return nil
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// EnumType validates string values against a closed set.
type EnumType struct {
	allowed []string
}

func (t *EnumType) Name() string { return "enum" }

func (t *EnumType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	for _, a := range t.allowed {
		if s == a {
			return nil
		}
	}
	return fmt.Errorf("must be one of %v", t.allowed)
}

// Values returns the allowed enum values.
func (t *EnumType) Values() []string { return t.allowed }

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
	minLen   int
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	if rv.Len() < t.minLen {
		return fmt.Errorf("must contain at least %d elements", t.minLen)
	}
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an unbounded integer type validator.
func Int() Type { return &IntType{} }

// IntRange creates an integer validator bounded to [min, max].
func IntRange(min, max int64) Type { return &IntType{min: &min, max: &max} }

// Float creates an unbounded float type validator.
func Float() Type { return &FloatType{} }

// FloatRange creates a float validator bounded to [min, max].
func FloatRange(min, max float64) Type { return &FloatType{min: &min, max: &max} }

// FloatMin creates a float validator with a lower bound only.
func FloatMin(min float64) Type { return &FloatType{min: &min} }

// Bool creates a bool type validator.
func Bool() Type { return &BoolType{} }

// Enum creates a validator for a closed set of string values.
func Enum(values ...string) Type { return &EnumType{allowed: values} }

// Slice creates a slice validator with the given element type.
func Slice(elem Type) Type { return &SliceType{elemType: elem} }

// SliceMin creates a slice validator requiring at least min elements.
func SliceMin(elem Type, min int) Type { return &SliceType{elemType: elem, minLen: min} }

// Custom creates a validator from a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}
