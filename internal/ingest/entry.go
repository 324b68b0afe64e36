package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"packetlog/internal/database/sql/model"

	"github.com/valyala/fastjson"
)

// ErrMalformed wraps payloads that are not valid UTF-8 JSON.
var ErrMalformed = errors.New("malformed json payload")

// Decode parses body and returns its entries: the elements of a top-level
// array, or the value itself. The values belong to p and are valid until p is
// reused.
func Decode(p *fastjson.Parser, body []byte) ([]*fastjson.Value, error) {
	// fastjson does not check encoding
	if !utf8.Valid(body) {
		return nil, fmt.Errorf("%w: invalid utf-8", ErrMalformed)
	}
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if v.Type() == fastjson.TypeArray {
		return v.GetArray(), nil
	}
	return []*fastjson.Value{v}, nil
}

// Status is the result of mapping a single entry.
type Status int

const (
	Staged Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Staged:
		return "staged"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome of one entry. Record is set only when Status is Staged; Reason only
// otherwise.
type Outcome struct {
	Status Status
	Record model.LogRecord
	Reason string
}

func staged(r model.LogRecord) Outcome { return Outcome{Status: Staged, Record: r} }
func skipped(format string, a ...any) Outcome {
	return Outcome{Status: Skipped, Reason: fmt.Sprintf(format, a...)}
}
func failed(format string, a ...any) Outcome {
	return Outcome{Status: Failed, Reason: fmt.Sprintf(format, a...)}
}

// Map validates entry against the schema and converts it into a record
// stamped with now. Unknown keys, including a supplied timestamp, are ignored.
func (s *Schema) Map(entry *fastjson.Value, now time.Time) Outcome {
	if entry.Type() != fastjson.TypeObject {
		return failed("entry is a %s, not an object", entry.Type())
	}
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		if missing(field(entry, f.Key), f.NonEmpty) {
			return skipped("missing required field %q", f.Key)
		}
	}

	values := make([]any, 0, len(s.table.Columns))
	for _, f := range s.Fields {
		v, err := coerce(f.Kind, field(entry, f.Key))
		if err != nil {
			return failed("field %q: %v", f.Key, err)
		}
		values = append(values, v)
	}
	for _, d := range s.Derived {
		v, err := derive(field(entry, d.Parent), d.Key)
		if err != nil {
			return failed("field %q.%q: %v", d.Parent, d.Key, err)
		}
		values = append(values, v)
	}
	return staged(model.LogRecord{Timestamp: now.UTC(), Values: values})
}

// field returns the value of key in obj. When a key repeats, the last
// occurrence wins.
func field(obj *fastjson.Value, key string) *fastjson.Value {
	o, err := obj.Object()
	if err != nil {
		return nil
	}
	var last *fastjson.Value
	o.Visit(func(k []byte, v *fastjson.Value) {
		if string(k) == key {
			last = v
		}
	})
	return last
}

// missing reports an absent or null value. With nonEmpty, every empty or
// zero value counts as missing too: "", [], {}, false and 0.
func missing(v *fastjson.Value, nonEmpty bool) bool {
	if v == nil || v.Type() == fastjson.TypeNull {
		return true
	}
	if !nonEmpty {
		return false
	}
	switch v.Type() {
	case fastjson.TypeString:
		return len(v.GetStringBytes()) == 0
	case fastjson.TypeArray:
		return len(v.GetArray()) == 0
	case fastjson.TypeObject:
		return v.GetObject().Len() == 0
	case fastjson.TypeFalse:
		return true
	case fastjson.TypeNumber:
		f, err := v.Float64()
		return err == nil && f == 0
	}
	return false
}

func coerce(kind Kind, v *fastjson.Value) (any, error) {
	isNull := v == nil || v.Type() == fastjson.TypeNull
	switch kind {
	case KindString:
		if isNull {
			return nil, nil
		}
		return scalarText(v)
	case KindInteger:
		if isNull {
			return nil, nil
		}
		return integer(v)
	case KindObject:
		if isNull {
			return "{}", nil
		}
		if v.Type() != fastjson.TypeObject {
			return nil, fmt.Errorf("want object, got %s", v.Type())
		}
		return string(v.MarshalTo(nil)), nil
	case KindText:
		if isNull {
			return "", nil
		}
		if v.Type() == fastjson.TypeString {
			return string(v.GetStringBytes()), nil
		}
		return string(v.MarshalTo(nil)), nil
	default:
		return nil, fmt.Errorf("unsupported kind %d", kind)
	}
}

// derive reads key from the parent object. A missing parent or key is NULL.
func derive(parent *fastjson.Value, key string) (any, error) {
	if parent == nil || parent.Type() != fastjson.TypeObject {
		return nil, nil
	}
	v := field(parent, key)
	if v == nil || v.Type() == fastjson.TypeNull {
		return nil, nil
	}
	return scalarText(v)
}

func scalarText(v *fastjson.Value) (any, error) {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes()), nil
	case fastjson.TypeNumber, fastjson.TypeTrue, fastjson.TypeFalse:
		return string(v.MarshalTo(nil)), nil
	default:
		return nil, fmt.Errorf("want scalar, got %s", v.Type())
	}
}

// integer accepts values that fit a 32-bit INTEGER column.
func integer(v *fastjson.Value) (any, error) {
	var (
		n   int64
		err error
	)
	switch v.Type() {
	case fastjson.TypeNumber:
		n, err = v.Int64()
	case fastjson.TypeString:
		n, err = strconv.ParseInt(string(v.GetStringBytes()), 10, 64)
	default:
		return nil, fmt.Errorf("want integer, got %s", v.Type())
	}
	if err != nil {
		return nil, fmt.Errorf("want integer: %v", err)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("integer %d out of range", n)
	}
	return n, nil
}

// Batch aggregates outcomes of one request.
type Batch struct {
	Records  []model.LogRecord
	Inserted int
	Skipped  int
	Errors   int
}

func (b *Batch) Add(o Outcome) {
	switch o.Status {
	case Staged:
		b.Records = append(b.Records, o.Record)
		b.Inserted++
	case Skipped:
		b.Skipped++
	default:
		b.Errors++
	}
}

// Total is the number of entries added.
func (b *Batch) Total() int {
	return b.Inserted + b.Skipped + b.Errors
}
