package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// RequestID is a JSON-RPC id: a string or an integer. Uniqueness is the
// peer's responsibility; the server only mirrors ids back.
type RequestID struct {
	str   string
	num   int64
	isNum bool
}

// NewStringID builds a string-valued id.
func NewStringID(s string) *RequestID {
	return &RequestID{str: s}
}

// NewNumberID builds an integer-valued id.
func NewNumberID(n int64) *RequestID {
	return &RequestID{num: n, isNum: true}
}

// Equal reports whether two ids carry the same value.
func (id *RequestID) Equal(other *RequestID) bool {
	if id == nil || other == nil {
		return id == other
	}
	if id.isNum != other.isNum {
		return false
	}
	if id.isNum {
		return id.num == other.num
	}
	return id.str == other.str
}

func (id *RequestID) String() string {
	if id == nil {
		return ""
	}
	if id.isNum {
		return fmt.Sprintf("%d", id.num)
	}
	return id.str
}

// MarshalJSON implements json.Marshaler.
func (id *RequestID) MarshalJSON() ([]byte, error) {
	if id == nil {
		return []byte("null"), nil
	}
	if id.isNum {
		return json.Marshal(id.num)
	}
	return json.Marshal(id.str)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	var num int64
	if err := json.Unmarshal(data, &num); err == nil {
		id.num = num
		id.isNum = true
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		id.str = str
		id.isNum = false
		return nil
	}

	return fmt.Errorf("JSON-RPC id must be a string or integer, got: %s", string(data))
}
