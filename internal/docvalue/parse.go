package docvalue

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// ErrSyntax is returned when input is not a single well-formed JSON value.
var ErrSyntax = errors.New("invalid JSON")

// Parse decodes data into a Value, keeping object members in document order.
func Parse(data []byte) (Value, error) {
	// jsonparser is lenient about trailing bytes and some malformed input,
	// so the strict check runs first.
	if !json.Valid(data) {
		return Value{}, fmt.Errorf("%w: %s", ErrSyntax, syntaxDetail(data))
	}

	raw, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return fromRaw(raw, dataType)
}

// MustParse is Parse for literals in tests and embedded defaults.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

// FromGo converts any JSON-marshalable Go value into a Value.
func FromGo(v any) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("failed to marshal value: %w", err)
	}
	return Parse(data)
}

func fromRaw(raw []byte, dataType jsonparser.ValueType) (Value, error) {
	switch dataType {
	case jsonparser.Null:
		return NullValue(), nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return BoolValue(b), nil

	case jsonparser.Number:
		return numberLiteral(string(raw)), nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return StringValue(s), nil

	case jsonparser.Array:
		items := []Value{}
		var itemErr error
		_, err := jsonparser.ArrayEach(raw, func(value []byte, dt jsonparser.ValueType, _ int, err error) {
			if itemErr != nil {
				return
			}
			if err != nil {
				itemErr = err
				return
			}
			item, err := fromRaw(value, dt)
			if err != nil {
				itemErr = err
				return
			}
			items = append(items, item)
		})
		if err == nil {
			err = itemErr
		}
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return Value{kind: Array, items: items}, nil

	case jsonparser.Object:
		obj := Value{kind: Object, members: []Member{}}
		err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, dt jsonparser.ValueType, _ int) error {
			k, err := jsonparser.ParseString(key)
			if err != nil {
				return err
			}
			member, err := fromRaw(value, dt)
			if err != nil {
				return err
			}
			obj = obj.Set(k, member)
			return nil
		})
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return obj, nil
	}

	return Value{}, fmt.Errorf("%w: unexpected value type %s", ErrSyntax, dataType)
}

// syntaxDetail extracts the position of the first syntax error.
func syntaxDetail(data []byte) string {
	var scratch any
	err := json.Unmarshal(data, &scratch)
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s (offset %d)", se.Error(), se.Offset)
	}
	if err != nil {
		return err.Error()
	}
	return "unexpected input"
}
