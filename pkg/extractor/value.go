package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/titanous/json5"
)

// MaxValueDepth bounds nesting accepted by ParseJSON.
const MaxValueDepth = 512

var ErrTooDeep = errors.New("json nesting too deep")

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a parsed JSON value that keeps object members in document order.
// Numbers keep their literal text in Str.
type Value struct {
	Kind   Kind
	Str    string
	Bool   bool
	Array  []Value
	Object Object
}

type Member struct {
	Key   string
	Value Value
}

// Object is an ordered list of members.
type Object []Member

// Lookup returns the first member whose key equals key ignoring case.
func (o Object) Lookup(key string) (Value, bool) {
	for _, m := range o {
		if strings.EqualFold(m.Key, key) {
			return m.Value, true
		}
	}
	return Value{}, false
}

func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func Number(f float64) Value {
	return Value{Kind: KindNumber, Str: strconv.FormatFloat(f, 'f', -1, 64)}
}

func Null() Value {
	return Value{Kind: KindNull}
}

func ObjectValue(members ...Member) Value {
	if members == nil {
		members = Object{}
	}
	return Value{Kind: KindObject, Object: members}
}

func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindArray, Array: items}
}

// Float returns the numeric value of a number.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.Str, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseJSON decodes strict JSON, preserving member order.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, errors.New("trailing data after json value")
	}
	return v, nil
}

// ParseLenient accepts strict JSON first and falls back to JSON5, which
// covers JavaScript object literals assigned to window globals. Member order
// of JSON5 objects is not preserved; keys are sorted instead.
func ParseLenient(text string) (Value, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ";")
	if text == "" {
		return Value{}, errors.New("empty document")
	}

	v, err := ParseJSON([]byte(text))
	if err == nil {
		return v, nil
	}

	var raw any
	if err5 := json5.Unmarshal([]byte(text), &raw); err5 != nil {
		return Value{}, fmt.Errorf("parse json: %w", err)
	}
	return FromAny(raw, 0)
}

// FromAny converts a generic decoded value.
func FromAny(raw any, depth int) (Value, error) {
	if depth > MaxValueDepth {
		return Value{}, ErrTooDeep
	}

	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case float64:
		return Number(t), nil
	case json.Number:
		return Value{Kind: KindNumber, Str: t.String()}, nil
	case string:
		return String(t), nil
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			v, err := FromAny(item, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return ArrayValue(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := make(Object, 0, len(keys))
		for _, k := range keys {
			v, err := FromAny(t[k], depth+1)
			if err != nil {
				return Value{}, err
			}
			obj = append(obj, Member{Key: k, Value: v})
		}
		return ObjectValue(obj...), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth >= MaxValueDepth {
			return Value{}, ErrTooDeep
		}
		switch t {
		case '{':
			return decodeObject(dec, depth)
		case '[':
			return decodeArray(dec, depth)
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return String(t), nil
	case json.Number:
		return Value{Kind: KindNumber, Str: t.String()}, nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %T", tok)
	}
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	obj := Object{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is %T", tok)
		}
		v, err := decodeValue(dec, depth+1)
		if err != nil {
			return Value{}, err
		}
		obj = append(obj, Member{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Value{Kind: KindObject, Object: obj}, nil
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	items := []Value{}
	for dec.More() {
		v, err := decodeValue(dec, depth+1)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Value{Kind: KindArray, Array: items}, nil
}
