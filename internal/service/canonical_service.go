package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"bullionbook/pkg/apperror"
)

// CanonicalService implements ports.Canonicalizer: recursively sorted
// object keys, preserved array order, a single numeric encoding
// (json.Number passed through verbatim). Two structurally equal values
// canonicalize to identical bytes regardless of field order.
type CanonicalService struct{}

// NewCanonicalService creates a new CanonicalService.
func NewCanonicalService() *CanonicalService {
	return &CanonicalService{}
}

// Canonicalize returns the deterministic byte form of v.
func (s *CanonicalService) Canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshaling value: %w", err))
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("decoding value tree: %w", err))
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, tree); err != nil {
		return nil, apperror.InternalError(err)
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(t.String())
	case string:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encoding string: %w", err)
		}
		buf.Write(b)
	case []any:
		buf.WriteByte('[')
		for i, el := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return fmt.Errorf("encoding key: %w", err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := writeCanonical(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported canonical node %T", v)
	}
	return nil
}
