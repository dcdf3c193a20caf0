package submit

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDetail(t *testing.T) {
	cases := map[string]string{
		`{"detail": "Template must be .pptx or .potx"}`: "Template must be .pptx or .potx",
		`{"detail": "  padded  "}`:                       "  padded  ",
		`{"detail": "Expected <int> value"}`:             "Expected <int> value",
		`{"detail": "a &amp; b"}`:                        "a &amp; b",
		`{"detail": " "}`:                                " ",
		`{"detail": ""}`:                                 "",
		`{"detail": [{"msg": "a"}, {"msg": ""}, {}]}`:    "a",
		`{"detail": 42}`:                                 "",
		`{"detail": null}`:                               "",
		`{"detail": {"msg": "nested"}}`:                  "",
		`[]`:                                             "",
		`not json`:                                       "",
		``:                                               "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, parseDetail([]byte(raw)), "body %q", raw)
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("reset") }

func TestReadDetail_DegradesToEmpty(t *testing.T) {
	assert.Equal(t, "", readDetail(errReader{}))
	assert.Equal(t, "", readDetail(strings.NewReader("")))
	assert.Equal(t, "X", readDetail(strings.NewReader(`{"detail":"X"}`)))
}

func TestTransportDetailUnwrapsURLErrors(t *testing.T) {
	assert.Equal(t, "Network error: unknown error", (&TransportError{}).Message())
	assert.Equal(t, "Save failed: unknown error", (&SaveError{}).Message())
	assert.Equal(t, "submit: network error: timeout", (&TransportError{Err: errors.New("timeout")}).Error())
}
