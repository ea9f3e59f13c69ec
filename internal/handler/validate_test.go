package handler

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFields(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		wantLen int
	}{
		{name: "empty body reads as empty object", body: ""},
		{name: "whitespace body reads as empty object", body: "  \n"},
		{name: "object", body: `{"name":"A","email":"a@x.io"}`, wantLen: 2},
		{name: "array reads as empty object", body: `[1,2]`},
		{name: "array of objects reads as empty object", body: `[{"name":"A","email":"a@x.io"}]`},
		{name: "empty array", body: `[]`},
		{name: "malformed array", body: `[1,`, wantErr: errInvalidBody},
		{name: "null", body: `null`, wantErr: errInvalidBody},
		{name: "string", body: `"name"`, wantErr: errInvalidBody},
		{name: "number", body: `42`, wantErr: errInvalidBody},
		{name: "malformed", body: `{"name":`, wantErr: errInvalidBody},
		{name: "unquoted key", body: `{bad`, wantErr: errInvalidBody},
		{name: "trailing garbage", body: `{"name":"A"} x`, wantErr: errInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))

			f, err := readFields(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, f, tt.wantLen)
		})
	}
}

func TestReadFields_TooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	_, err := readFields(req)
	assert.ErrorIs(t, err, errBodyTooLarge)
}

func TestFields_Missing(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "both present", body: `{"name":"A","email":"a@x.io"}`, want: false},
		{name: "absent", body: `{"name":"A"}`, want: true},
		{name: "null", body: `{"name":"A","email":null}`, want: true},
		{name: "empty string", body: `{"name":"","email":"a@x.io"}`, want: true},
		{name: "false", body: `{"name":false,"email":"a@x.io"}`, want: true},
		{name: "zero", body: `{"name":0,"email":"a@x.io"}`, want: true},
		{name: "negative zero float", body: `{"name":-0.0,"email":"a@x.io"}`, want: true},
		{name: "whitespace is present", body: `{"name":"   ","email":"a@x.io"}`, want: false},
		{name: "non-zero number is present", body: `{"name":42,"email":"a@x.io"}`, want: false},
		{name: "true is present", body: `{"name":true,"email":"a@x.io"}`, want: false},
		{name: "empty object is present", body: `{"name":{},"email":"a@x.io"}`, want: false},
		{name: "empty array is present", body: `{"name":[],"email":"a@x.io"}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			f, err := readFields(req)
			require.NoError(t, err)

			assert.Equal(t, tt.want, f.missing("name", "email"))
		})
	}
}

func TestFields_Str(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"  Ann é ","count":3}`))
	f, err := readFields(req)
	require.NoError(t, err)

	name, err := f.str("name")
	require.NoError(t, err)
	assert.Equal(t, "  Ann é ", name)

	_, err = f.str("count")
	assert.ErrorIs(t, err, errFieldType)
}

func TestCreate_ValidationRejectionLogged(t *testing.T) {
	tests := []struct {
		path       string
		wantEntity string
	}{
		{path: "/users", wantEntity: "user"},
		{path: "/messages", wantEntity: "message"},
	}

	for _, tt := range tests {
		t.Run(tt.wantEntity, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, tt.path, `{}`)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var entry map[string]any
			scanner := bufio.NewScanner(env.logs)
			for scanner.Scan() {
				var line map[string]any
				require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
				if line["msg"] == "validation_failed" {
					entry = line
				}
			}
			require.NotNil(t, entry, "no validation_failed log line")

			assert.Equal(t, "WARN", entry["level"])
			assert.Equal(t, tt.wantEntity, entry["entity"])
			assert.Equal(t, "create", entry["operation"])
			assert.Equal(t, rec.Header().Get("X-Request-ID"), entry["request_id"])
			assert.NotEmpty(t, entry["request_id"])
		})
	}
}
