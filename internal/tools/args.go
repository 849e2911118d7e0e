package tools

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// ErrInvalidInput marks arguments rejected before any I/O.
var ErrInvalidInput = errors.New("invalid arguments")

// decodeArgs copies loosely typed call arguments into a params struct using its json tags.
// Missing required keys and non-integral numbers for integer fields are rejected.
func decodeArgs(args map[string]any, out any, required ...string) error {
	for _, key := range required {
		if v, ok := args[key]; !ok || v == nil {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, key)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: integralNumbers,
		Result:     out,
		TagName:    "json",
	})
	if err != nil {
		return fmt.Errorf("build argument decoder: %w", err)
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func integralNumbers(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float64 && from.Kind() != reflect.Float32 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("expected an integer, got %v", f)
	}
	return data, nil
}
