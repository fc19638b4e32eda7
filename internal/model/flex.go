package model

import (
	"bytes"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// flexID is a gateway id that arrives either as a plain string or as an
// object carrying "_serialized" (or "user" and "server").
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
	case '{':
		var obj struct {
			Serialized string `json:"_serialized"`
			User       string `json:"user"`
			Server     string `json:"server"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		switch {
		case obj.Serialized != "":
			*id = flexID(obj.Serialized)
		case obj.User != "" && obj.Server != "":
			*id = flexID(obj.User + "@" + obj.Server)
		default:
			*id = ""
		}
	default:
		*id = flexID(b)
	}
	return nil
}

// optInt records whether a numeric field was present. Floats are truncated
// and numeric strings accepted; any other shape counts as absent.
type optInt struct {
	v  int64
	ok bool
}

func (o *optInt) UnmarshalJSON(b []byte) error {
	*o = optInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*o = optInt{v: int64(f), ok: true}
	return nil
}

// optBool records whether a boolean field was present.
type optBool struct {
	v  bool
	ok bool
}

func (o *optBool) UnmarshalJSON(b []byte) error {
	*o = optBool{}
	switch string(bytes.TrimSpace(b)) {
	case "true":
		*o = optBool{v: true, ok: true}
	case "false":
		*o = optBool{v: false, ok: true}
	}
	return nil
}

func firstInt(vals ...optInt) (int64, bool) {
	for _, v := range vals {
		if v.ok {
			return v.v, true
		}
	}
	return 0, false
}

func firstBool(vals ...optBool) (bool, bool) {
	for _, v := range vals {
		if v.ok {
			return v.v, true
		}
	}
	return false, false
}
