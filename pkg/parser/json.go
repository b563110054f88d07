package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/helmcode/text-analyzer/pkg/model"
)

// MaxDecodeDepth bounds nesting of decoded documents.
const MaxDecodeDepth = 1000

// ParseValue decodes a single JSON document into a model.Value, keeping
// object members in the order they appear in data.
func ParseValue(data []byte) (*model.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		return nil, err
	}

	// Only whitespace may follow the document
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, depth int) (*model.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth >= MaxDecodeDepth {
			return nil, fmt.Errorf("exceeded max nesting depth of %d", MaxDecodeDepth)
		}
		switch t {
		case '{':
			return decodeObject(dec, depth+1)
		case '[':
			return decodeArray(dec, depth+1)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case nil:
		return model.Null(), nil
	case bool:
		return model.Bool(t), nil
	case json.Number:
		return model.Number(t), nil
	case string:
		return model.String(t), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder, depth int) (*model.Value, error) {
	obj := model.Object()
	index := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		val, err := decodeValue(dec, depth)
		if err != nil {
			return nil, err
		}

		// A repeated key keeps its first position and takes the last value.
		if i, seen := index[key]; seen {
			obj.Members[i].Value = val
			continue
		}
		index[key] = len(obj.Members)
		obj.Members = append(obj.Members, model.Member{Key: key, Value: val})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder, depth int) (*model.Value, error) {
	arr := model.Array()
	for dec.More() {
		item, err := decodeValue(dec, depth)
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, item)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}
