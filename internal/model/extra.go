package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// marshalWithExtra encodes v and merges extra into the resulting object.
// Keys already produced by v win.
func marshalWithExtra(v interface{}, extra map[string]interface{}) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return base, err
	}

	var merged map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(base))
	dec.UseNumber()
	if err := dec.Decode(&merged); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = val
		}
	}
	return json.Marshal(merged)
}

// decodeDocument decodes a JSON object keeping integers as int64, so they are
// stored as integers and large ids keep every digit.
func decodeDocument(data []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	for k, v := range doc {
		doc[k] = normalizeNumber(v)
	}
	return doc, nil
}

// DecodeValue decodes a single JSON value the way documents are decoded.
// An empty or null value yields nil.
func DecodeValue(data json.RawMessage) (interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalizeNumber(v), nil
}

// normalizeNumber turns json.Number into int64 when integral, float64 otherwise,
// so they are stored as numbers rather than strings.
func normalizeNumber(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]interface{}:
		for k, inner := range t {
			t[k] = normalizeNumber(inner)
		}
		return t
	case []interface{}:
		for i, inner := range t {
			t[i] = normalizeNumber(inner)
		}
		return t
	default:
		return v
	}
}

// FlexString accepts either a string or a number, in JSON and in BSON.
// Postal codes arrive both ways from clients and from older documents.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", data)
	}
	*s = FlexString(n.String())
	return nil
}

func (s *FlexString) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*s = FlexString(raw.StringValue())
	case bsontype.Int32:
		*s = FlexString(strconv.FormatInt(int64(raw.Int32()), 10))
	case bsontype.Int64:
		*s = FlexString(strconv.FormatInt(raw.Int64(), 10))
	case bsontype.Double:
		*s = FlexString(strconv.FormatFloat(raw.Double(), 'f', -1, 64))
	case bsontype.Null, bsontype.Undefined:
		*s = ""
	default:
		return fmt.Errorf("cannot decode %s into FlexString", t)
	}
	return nil
}
