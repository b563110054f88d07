package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant of Value is populated
type Kind int

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
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Member is one key of an object, kept in the order it appeared in the payload.
type Member struct {
	Key   string
	Value *Value
}

// Value is an untyped JSON value as returned by the webhook. The shape of the
// analysis result is not known ahead of time, so nothing here assumes one.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  json.Number
	Str     string
	Items   []*Value
	Members []Member
}

func Null() *Value { return &Value{Kind: KindNull} }
func Bool(b bool) *Value { return &Value{Kind: KindBool, Bool: b} }
func Number(n json.Number) *Value { return &Value{Kind: KindNumber, Number: n} }
func String(s string) *Value { return &Value{Kind: KindString, Str: s} }
func Array(items ...*Value) *Value { return &Value{Kind: KindArray, Items: items} }
func Object(members ...Member) *Value { return &Value{Kind: KindObject, Members: members} }

// Int is a convenience for building numeric values in code.
func Int(n int64) *Value {
	return Number(json.Number(strconv.FormatInt(n, 10)))
}

// Float is a convenience for building numeric values in code. Integral
// values below 1e21 are written without an exponent.
func Float(f float64) *Value {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return Number(json.Number(strconv.FormatFloat(f, 'f', -1, 64)))
	}
	return Number(json.Number(strconv.FormatFloat(f, 'g', -1, 64)))
}

// IsComposite reports whether v is an object or an array.
func (v *Value) IsComposite() bool {
	return v != nil && (v.Kind == KindObject || v.Kind == KindArray)
}

// Get returns the value for key on an object, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != KindObject {
		return nil
	}
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// Keys returns object keys in payload order.
func (v *Value) Keys() []string {
	if v == nil || v.Kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.Members))
	for i, m := range v.Members {
		keys[i] = m.Key
	}
	return keys
}

// Set replaces the value of an existing key in place, or appends a new member.
func (v *Value) Set(key string, val *Value) {
	for i := range v.Members {
		if v.Members[i].Key == key {
			v.Members[i].Value = val
			return
		}
	}
	v.Members = append(v.Members, Member{Key: key, Value: val})
}

// String returns the display form of a scalar. Composite values are
// returned as compact JSON.
func (v *Value) String() string {
	if v == nil {
		return "null"
	}
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return v.Number.String()
	case KindString:
		return v.Str
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("<%s>", v.Kind)
		}
		return string(b)
	}
}

// MarshalJSON encodes v keeping object members in order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case KindNumber:
		if v.Number == "" {
			buf.WriteString("0")
			return nil
		}
		buf.WriteString(v.Number.String())
	case KindString:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode value of kind %s", v.Kind)
	}
	return nil
}

// YAMLNode converts v to a yaml.Node so that key order survives marshalling.
func (v *Value) YAMLNode() *yaml.Node {
	if v == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch v.Kind {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool)}
	case KindNumber:
		tag := "!!float"
		if _, err := v.Number.Int64(); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.Number.String()}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str}
	case KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items {
			n.Content = append(n.Content, item.YAMLNode())
		}
		return n
	default:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.Members {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key},
				m.Value.YAMLNode(),
			)
		}
		return n
	}
}

// Interface converts v into the plain map/slice tree produced by encoding/json.
// Key order is lost.
func (v *Value) Interface() interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		f, err := v.Number.Float64()
		if err != nil {
			return v.Number.String()
		}
		return f
	case KindString:
		return v.Str
	case KindArray:
		out := make([]interface{}, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.Members))
		for _, m := range v.Members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// FromInterface builds a Value from a plain tree. Map keys are sorted since Go
// maps carry no order.
func FromInterface(x interface{}) (*Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Float(t), nil
	case float32:
		return Float(float64(t)), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case []interface{}:
		items := make([]*Value, 0, len(t))
		for _, item := range t {
			iv, err := FromInterface(item)
			if err != nil {
				return nil, err
			}
			items = append(items, iv)
		}
		return Array(items...), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := Object()
		for _, k := range keys {
			mv, err := FromInterface(t[k])
			if err != nil {
				return nil, err
			}
			obj.Members = append(obj.Members, Member{Key: k, Value: mv})
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", x)
	}
}
