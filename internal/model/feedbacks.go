package model

import (
	"bytes"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
)

var ErrInvalidFeedbacks = errors.New("feedbacks is not valid JSON")

// NormalizeFeedbacks turns whatever the caller sent as feedbacks into a JSON array.
// Missing or null becomes [], an array is kept, any other value is wrapped as [value].
// The entries themselves are opaque and never inspected.
func NormalizeFeedbacks(raw json.RawMessage) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return datatypes.JSON("[]"), nil
	}
	if !json.Valid(trimmed) {
		return nil, ErrInvalidFeedbacks
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, ErrInvalidFeedbacks
	}
	if trimmed[0] == '[' {
		return datatypes.JSON(buf.Bytes()), nil
	}
	out := make([]byte, 0, buf.Len()+2)
	out = append(out, '[')
	out = append(out, buf.Bytes()...)
	out = append(out, ']')
	return datatypes.JSON(out), nil
}
