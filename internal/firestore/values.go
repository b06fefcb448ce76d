package firestore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// ErrUnsupportedValue indica um tipo Go sem representação no Firestore.
var ErrUnsupportedValue = errors.New("firestore: tipo de valor não suportado")

// Value é a união etiquetada usada pela API REST; apenas um campo vem preenchido.
type Value struct {
	NullValue      *string     `json:"nullValue,omitempty"`
	BooleanValue   *bool       `json:"booleanValue,omitempty"`
	IntegerValue   *string     `json:"integerValue,omitempty"`
	DoubleValue    *float64    `json:"doubleValue,omitempty"`
	TimestampValue *string     `json:"timestampValue,omitempty"`
	StringValue    *string     `json:"stringValue,omitempty"`
	BytesValue     *string     `json:"bytesValue,omitempty"`
	ReferenceValue *string     `json:"referenceValue,omitempty"`
	GeoPointValue  *GeoPoint   `json:"geoPointValue,omitempty"`
	ArrayValue     *ArrayValue `json:"arrayValue,omitempty"`
	MapValue       *MapValue   `json:"mapValue,omitempty"`
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ArrayValue struct {
	Values []Value `json:"values,omitempty"`
}

type MapValue struct {
	Fields map[string]Value `json:"fields,omitempty"`
}

const nullMarker = "NULL_VALUE"

// UnmarshalJSON reconhece "nullValue": null, que a API devolve sem valor.
func (v *Value) UnmarshalJSON(data []byte) error {
	type plain Value
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*v = Value(p)
	if v.NullValue == nil {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(data, &keys); err == nil {
			if _, ok := keys["nullValue"]; ok {
				s := nullMarker
				v.NullValue = &s
			}
		}
	}
	return nil
}

// EncodeFields converte um mapa Go no formato "fields" da API.
func EncodeFields(data map[string]any) (map[string]Value, error) {
	fields := make(map[string]Value, len(data))
	for k, v := range data {
		encoded, err := EncodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("campo %q: %w", k, err)
		}
		fields[k] = encoded
	}
	return fields, nil
}

// EncodeValue converte recursivamente um valor Go em Value.
func EncodeValue(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return nullValue(), nil
	case string:
		return Value{StringValue: &x}, nil
	case bool:
		return Value{BooleanValue: &x}, nil
	case time.Time:
		ts := x.UTC().Format(time.RFC3339Nano)
		return Value{TimestampValue: &ts}, nil
	case []byte:
		b := base64.StdEncoding.EncodeToString(x)
		return Value{BytesValue: &b}, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return intValue(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: número %q", ErrUnsupportedValue, x.String())
		}
		return Value{DoubleValue: &f}, nil
	case GeoPoint:
		return Value{GeoPointValue: &x}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intValue(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: inteiro fora do intervalo", ErrUnsupportedValue)
		}
		return intValue(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return Value{DoubleValue: &f}, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nullValue(), nil
		}
		return EncodeValue(rv.Elem().Interface())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("%w: mapa com chave %s", ErrUnsupportedValue, rv.Type().Key())
		}
		fields := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			encoded, err := EncodeValue(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("campo %q: %w", iter.Key().String(), err)
			}
			fields[iter.Key().String()] = encoded
		}
		return Value{MapValue: &MapValue{Fields: fields}}, nil
	case reflect.Slice, reflect.Array:
		values := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			encoded, err := EncodeValue(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("índice %d: %w", i, err)
			}
			values = append(values, encoded)
		}
		return Value{ArrayValue: &ArrayValue{Values: values}}, nil
	}

	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

// DecodeFields converte "fields" em um mapa Go.
func DecodeFields(fields map[string]Value) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		decoded, err := DecodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("campo %q: %w", k, err)
		}
		out[k] = decoded
	}
	return out, nil
}

// DecodeValue converte um Value em tipos Go simples.
func DecodeValue(v Value) (any, error) {
	switch {
	case v.NullValue != nil:
		return nil, nil
	case v.BooleanValue != nil:
		return *v.BooleanValue, nil
	case v.IntegerValue != nil:
		i, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integerValue inválido %q: %w", *v.IntegerValue, err)
		}
		return i, nil
	case v.DoubleValue != nil:
		return *v.DoubleValue, nil
	case v.TimestampValue != nil:
		return *v.TimestampValue, nil
	case v.StringValue != nil:
		return *v.StringValue, nil
	case v.BytesValue != nil:
		return *v.BytesValue, nil
	case v.ReferenceValue != nil:
		return *v.ReferenceValue, nil
	case v.GeoPointValue != nil:
		return map[string]any{"latitude": v.GeoPointValue.Latitude, "longitude": v.GeoPointValue.Longitude}, nil
	case v.ArrayValue != nil:
		out := make([]any, 0, len(v.ArrayValue.Values))
		for i, item := range v.ArrayValue.Values {
			decoded, err := DecodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("índice %d: %w", i, err)
			}
			out = append(out, decoded)
		}
		return out, nil
	case v.MapValue != nil:
		return DecodeFields(v.MapValue.Fields)
	}
	return nil, fmt.Errorf("%w: valor sem variante", ErrUnsupportedValue)
}

func nullValue() Value {
	s := nullMarker
	return Value{NullValue: &s}
}

func intValue(i int64) Value {
	s := strconv.FormatInt(i, 10)
	return Value{IntegerValue: &s}
}
