package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

var (
	errInvalidBody  = errors.New("request body is not a JSON object or array")
	errBodyTooLarge = errors.New("request body too large")
	errFieldType    = errors.New("field is not a string")
)

// fields holds the top-level members of a JSON object body, undecoded.
type fields map[string]json.RawMessage

// readFields decodes the request body as a JSON object. An empty body or
// a well-formed array reads as an empty object; anything else that is not
// an object yields errInvalidBody.
func readFields(r *http.Request) (fields, error) {
	if r.Body == nil {
		return fields{}, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errBodyTooLarge
		}
		return nil, errInvalidBody
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fields{}, nil
	}
	switch body[0] {
	case '{':
	case '[':
		if !json.Valid(body) {
			return nil, errInvalidBody
		}
		return fields{}, nil
	default:
		return nil, errInvalidBody
	}

	var f fields
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, errInvalidBody
	}
	return f, nil
}

// missing reports whether any of names is absent or holds a falsy value
// (null, "", false or 0). Strings are not trimmed.
func (f fields) missing(names ...string) bool {
	for _, name := range names {
		raw, ok := f[name]
		if !ok || isFalsy(raw) {
			return true
		}
	}
	return false
}

// str returns the named member as a string. Non-string values yield
// errFieldType.
func (f fields) str(name string) (string, error) {
	var s string
	if err := json.Unmarshal(f[name], &s); err != nil {
		return "", errFieldType
	}
	return s, nil
}

func isFalsy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return true
	}

	switch string(v) {
	case "null", "false", `""`:
		return true
	}

	if v[0] == '-' || (v[0] >= '0' && v[0] <= '9') {
		n, err := strconv.ParseFloat(string(v), 64)
		return err == nil && n == 0
	}
	return false
}
