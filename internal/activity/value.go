// Package activity turns stored field changes into display rows for the activity feed.
package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

// Kind tags the shape of a Value.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindBool
	KindList
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a loosely typed field value, classified once when it enters the system.
type Value struct {
	kind   Kind
	num    decimal.Decimal
	text   string
	flag   bool
	list   []Value
	record map[string]Value
}

func Empty() Value {
	return Value{kind: KindEmpty}
}

func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

func Record(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindRecord, record: fields}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) Num() decimal.Decimal {
	return v.num
}

func (v Value) Str() string {
	return v.text
}

func (v Value) Flag() bool {
	return v.flag
}

func (v Value) Items() []Value {
	return v.list
}

func (v Value) Fields() map[string]Value {
	return v.record
}

func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty
}

// Field returns a record field, or Empty for missing fields and non-records.
func (v Value) Field(name string) Value {
	if v.kind != KindRecord {
		return Empty()
	}
	if f, ok := v.record[name]; ok {
		return f
	}
	return Empty()
}

// Decode classifies a value produced by encoding/json (or built by hand from Go values).
// Empty strings decode to Empty.
func Decode(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Empty()
	case Value:
		return x
	case string:
		if x == "" {
			return Empty()
		}
		return Text(x)
	case *string:
		if x == nil {
			return Empty()
		}
		return Decode(*x)
	case bool:
		return Bool(x)
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return Text(x.String())
		}
		return Number(d)
	case decimal.Decimal:
		return Number(x)
	case float64:
		return Number(decimal.NewFromFloat(x))
	case float32:
		return Number(decimal.NewFromFloat32(x))
	case int:
		return Number(decimal.NewFromInt(int64(x)))
	case int32:
		return Number(decimal.NewFromInt32(x))
	case int64:
		return Number(decimal.NewFromInt(x))
	case *int:
		if x == nil {
			return Empty()
		}
		return Decode(*x)
	case []string:
		items := make([]Value, len(x))
		for i, s := range x {
			items[i] = Decode(s)
		}
		return List(items...)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = Decode(item)
		}
		return List(items...)
	case []map[string]any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = Decode(item)
		}
		return List(items...)
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, item := range x {
			fields[k] = Decode(item)
		}
		return Record(fields)
	}
	return Text(fmt.Sprint(raw))
}

// DecodeJSON decodes stored JSON. Missing input is Empty; malformed JSON,
// including a valid value followed by anything but whitespace, is kept as Text.
func DecodeJSON(raw []byte) Value {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Empty()
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return Text(string(raw))
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return Text(string(raw))
	}
	return Decode(out)
}

// Interface converts back to plain Go values suitable for encoding/json.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return json.Number(v.num.String())
	case KindText:
		return v.text
	case KindBool:
		return v.flag
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindRecord:
		out := make(map[string]any, len(v.record))
		for k, item := range v.record {
			out[k] = item.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes compactly with record keys sorted. HTML is left unescaped
// in its own output; json.Marshal re-escapes it when v is nested in a larger value.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v.Interface()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	*v = DecodeJSON(data)
	return nil
}

func (v Value) jsonString() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

// Equal compares structurally. Numbers compare by value, so 1 and 1.0 are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindEmpty:
		return true
	case KindNumber:
		return v.num.Equal(o.num)
	case KindText:
		return v.text == o.text
	case KindBool:
		return v.flag == o.flag
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		if len(v.record) != len(o.record) {
			return false
		}
		for k, item := range v.record {
			other, ok := o.record[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) GoString() string {
	return fmt.Sprintf("activity.Value{%s %s}", v.kind, v.jsonString())
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
