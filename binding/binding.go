package binding

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-viper/mapstructure/v2"
	"github.com/samber/lo"

	"github.com/drblury/weavekit/jsonutil"
	"github.com/drblury/weavekit/openapi"
)

// LocationBody marks a binder that reads a JSON request body.
const LocationBody = "body"

// Binder builds one declared model from raw request values.
type Binder struct {
	name     string
	location string
	typ      reflect.Type
	pointer  bool
	schema   *openapi3.Schema
}

// New returns a binder for a parameter model read from loc.
func New(model any, loc openapi.Location) (*Binder, error) {
	if !loc.Valid() {
		return nil, fmt.Errorf("%w: %q", openapi.ErrInvalidLocation, loc)
	}
	return newBinder(model, string(loc))
}

// NewBody returns a binder for a model decoded from a JSON body.
func NewBody(model any) (*Binder, error) {
	return newBinder(model, LocationBody)
}

func newBinder(model any, location string) (*Binder, error) {
	schema, err := openapi.InlineSchema(model)
	if err != nil {
		return nil, err
	}

	t := reflect.TypeOf(model)
	pointer := t.Kind() == reflect.Pointer
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", openapi.ErrInvalidModel, t)
	}

	return &Binder{
		name:     openapi.ModelName(model),
		location: location,
		typ:      t,
		pointer:  pointer,
		schema:   schema,
	}, nil
}

// Location returns where the binder reads its values from.
func (b *Binder) Location() string { return b.location }

// Type returns the type of the values Bind produces.
func (b *Binder) Type() reflect.Type {
	if b.pointer {
		return reflect.PointerTo(b.typ)
	}
	return b.typ
}

// Values binds raw to a fresh model. The result has the same shape as the
// declared model: a pointer when it was declared as a pointer.
func (b *Binder) Values(raw map[string]any) (any, error) {
	if missing := missingFields(b.schema, raw, ""); len(missing) > 0 {
		return nil, b.fail(missing, nil)
	}

	target := reflect.New(b.typ)
	if err := decode(raw, target.Interface()); err != nil {
		return nil, b.fail(decodeFieldErrors(err), err)
	}
	if err := b.validate(target.Interface()); err != nil {
		return nil, err
	}

	if b.pointer {
		return target.Interface(), nil
	}
	return target.Elem().Interface(), nil
}

// JSON reads body as a JSON object and binds it.
func (b *Binder) JSON(body io.Reader) (any, error) {
	if body == nil {
		return nil, b.fail(nil, ErrEmptyBody)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s body: %w", b.name, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, b.fail(nil, ErrEmptyBody)
	}

	var decoded any
	if err := jsonutil.Unmarshal(data, &decoded); err != nil {
		return nil, b.fail(nil, fmt.Errorf("decode json: %w", err))
	}
	raw, ok := decoded.(map[string]any)
	if !ok {
		return nil, b.fail(nil, ErrNotObject)
	}
	return b.Values(raw)
}

// Request collects the binder's location from r and binds it.
func (b *Binder) Request(r *http.Request) (any, error) {
	switch b.location {
	case LocationBody:
		return b.JSON(r.Body)
	case string(openapi.LocationPath):
		return b.Values(PathValues(r, lo.Keys(b.schema.Properties)))
	case string(openapi.LocationHeader):
		return b.Values(HeaderValues(r.Header, lo.Keys(b.schema.Properties)))
	default:
		return b.Values(QueryValues(r))
	}
}

// Values binds raw values read from loc into a fresh instance of model.
func Values(model any, raw map[string]any, loc openapi.Location) (any, error) {
	b, err := New(model, loc)
	if err != nil {
		return nil, err
	}
	return b.Values(raw)
}

// JSON binds a JSON object body into a fresh instance of model.
func JSON(model any, body io.Reader) (any, error) {
	b, err := NewBody(model)
	if err != nil {
		return nil, err
	}
	return b.JSON(body)
}

func (b *Binder) fail(fields []FieldError, err error) *ValidationError {
	if err == nil && len(fields) > 0 {
		err = ErrInvalidInput
	}
	return &ValidationError{Location: b.location, Model: b.name, Fields: fields, Err: err}
}

// missingFields lists required properties absent from raw or set to null,
// descending
// into nested objects that are present.
func missingFields(schema *openapi3.Schema, raw map[string]any, prefix string) []FieldError {
	var fields []FieldError
	for _, name := range schema.Required {
		if v, ok := raw[name]; !ok || v == nil {
			fields = append(fields, FieldError{Field: prefix + name, Reason: reasonRequired})
		}
	}

	names := lo.Keys(schema.Properties)
	slices.Sort(names)
	for _, name := range names {
		prop := schema.Properties[name]
		nested, ok := raw[name].(map[string]any)
		if !ok || prop == nil || prop.Value == nil {
			continue
		}
		fields = append(fields, missingFields(prop.Value, nested, prefix+name+".")...)
	}
	return fields
}

func decode(raw map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
			numberRangeHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// numberRangeHookFunc rejects numbers that the target field cannot hold
// instead of letting them wrap or truncate.
func numberRangeHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if !isNumberKind(to.Kind()) || data == nil {
			return data, nil
		}
		zero := reflect.Zero(to)
		if err := checkIntegerRange(reflect.ValueOf(data), zero); err != nil {
			return nil, err
		}
		f, ok := numberValue(data)
		if !ok {
			return data, nil
		}

		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if f != math.Trunc(f) {
				return nil, fmt.Errorf("value %v is not an integer", data)
			}
			if f < math.MinInt64 || f >= math.MaxInt64 || zero.OverflowInt(int64(f)) {
				return nil, fmt.Errorf("value %v overflows %s", data, to)
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if f != math.Trunc(f) {
				return nil, fmt.Errorf("value %v is not an integer", data)
			}
			if f < 0 || f >= math.MaxUint64 || zero.OverflowUint(uint64(f)) {
				return nil, fmt.Errorf("value %v overflows %s", data, to)
			}
		case reflect.Float32:
			if zero.OverflowFloat(f) {
				return nil, fmt.Errorf("value %v overflows %s", data, to)
			}
		}
		return data, nil
	}
}

// checkIntegerRange handles Go integers passed in directly, which would
// lose precision as float64.
func checkIntegerRange(v reflect.Value, zero reflect.Value) error {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		switch {
		case zero.CanInt() && zero.OverflowInt(n),
			zero.CanUint() && (n < 0 || zero.OverflowUint(uint64(n))):
			return fmt.Errorf("value %d overflows %s", n, zero.Type())
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := v.Uint()
		switch {
		case zero.CanInt() && (n > math.MaxInt64 || zero.OverflowInt(int64(n))),
			zero.CanUint() && zero.OverflowUint(n):
			return fmt.Errorf("value %d overflows %s", n, zero.Type())
		}
	}
	return nil
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32:
		return true
	}
	return false
}

// numberValue reads data as a float64 when it holds a number or a numeric
// string. Anything else is left for the decoder to report.
func numberValue(data any) (float64, bool) {
	switch v := data.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func decodeFieldErrors(err error) []FieldError {
	var fields []FieldError
	walkErrors(err, func(e error) bool {
		if decodeErr, ok := e.(*mapstructure.DecodeError); ok {
			fields = append(fields, FieldError{Field: decodeErr.Name(), Reason: reason(decodeErr.Unwrap())})
			return true
		}
		return false
	})
	return fields
}

// validate checks the decoded model against its schema. Values are
// round-tripped through JSON so numbers and times look as they would on
// the wire.
func (b *Binder) validate(model any) error {
	data, err := jsonutil.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode %s: %w", b.name, err)
	}
	var value any
	if err := jsonutil.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("decode %s: %w", b.name, err)
	}

	err = b.schema.VisitJSON(pruneNulls(value), openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var fields []FieldError
	walkErrors(err, func(e error) bool {
		if schemaErr, ok := e.(*openapi3.SchemaError); ok {
			fields = append(fields, FieldError{
				Field:  strings.Join(schemaErr.JSONPointer(), "."),
				Reason: schemaErr.Reason,
			})
			return true
		}
		return false
	})
	return b.fail(fields, err)
}

// walkErrors descends joined and wrapped errors until visit accepts one.
func walkErrors(err error, visit func(error) bool) {
	if err == nil {
		return
	}
	if multi, ok := err.(openapi3.MultiError); ok {
		for _, e := range multi {
			walkErrors(e, visit)
		}
		return
	}
	if visit(err) {
		return
	}
	switch e := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			walkErrors(inner, visit)
		}
	case interface{ Unwrap() error }:
		walkErrors(e.Unwrap(), visit)
	}
}

func reason(err error) string {
	if err == nil {
		return "invalid value"
	}
	return err.Error()
}

func pruneNulls(v any) any {
	switch value := v.(type) {
	case map[string]any:
		for k, inner := range value {
			if inner == nil {
				delete(value, k)
				continue
			}
			value[k] = pruneNulls(inner)
		}
		return value
	case []any:
		for i, inner := range value {
			value[i] = pruneNulls(inner)
		}
		return value
	default:
		return v
	}
}
