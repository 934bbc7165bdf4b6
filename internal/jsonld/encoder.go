package jsonld

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// MoneyFormat selects how decimal amounts are written.
type MoneyFormat int

const (
	MoneyAsString MoneyFormat = iota // "10.5"
	MoneyAsNumber                    // 10.5
)

// ParseMoneyFormat maps "string" and "number" to a MoneyFormat.
func ParseMoneyFormat(s string) (MoneyFormat, bool) {
	switch s {
	case "string", "":
		return MoneyAsString, true
	case "number":
		return MoneyAsNumber, true
	}
	return MoneyAsString, false
}

type Encoder interface {
	Encode(doc *Document) ([]byte, error)
}

// JSONEncoder writes documents as JSON, keeping key order. Decimals follow
// Money, times are RFC 3339 strings, anything else goes through encoding/json.
type JSONEncoder struct {
	Money  MoneyFormat
	Indent string
}

var DefaultEncoder Encoder = JSONEncoder{}

func (e JSONEncoder) Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.writeDocument(&buf, doc, ""); err != nil {
		return nil, err
	}
	if e.Indent == "" {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", e.Indent); err != nil {
		return nil, &SerializationError{Path: "$", Err: err}
	}
	return out.Bytes(), nil
}

func (e JSONEncoder) writeDocument(buf *bytes.Buffer, doc *Document, path string) error {
	if doc == nil {
		buf.WriteString("null")
		return nil
	}
	buf.WriteByte('{')
	for i, key := range doc.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return &SerializationError{Path: joinPath(path, key), Err: err}
		}
		buf.Write(k)
		buf.WriteByte(':')
		if err := e.writeValue(buf, doc.values[key], joinPath(path, key)); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func (e JSONEncoder) writeValue(buf *bytes.Buffer, value any, path string) error {
	switch v := value.(type) {
	case *Document:
		return e.writeDocument(buf, v, path)
	case []*Document:
		buf.WriteByte('[')
		for i, d := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeDocument(buf, d, path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case decimal.Decimal:
		if e.Money == MoneyAsNumber {
			buf.WriteString(v.String())
		} else {
			buf.WriteString(strconv.Quote(v.String()))
		}
		return nil
	case *decimal.Decimal:
		if v == nil {
			buf.WriteString("null")
			return nil
		}
		return e.writeValue(buf, *v, path)
	case time.Time:
		buf.WriteString(strconv.Quote(v.Format(time.RFC3339)))
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return &SerializationError{Path: path, Err: err}
	}
	buf.Write(raw)
	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
