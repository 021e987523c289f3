package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSStringEscapes(t *testing.T) {
	assert.Equal(t, `"Rust \"Drops\" Week"`, JSString(`Rust "Drops" Week`))
	assert.Equal(t, `"a\u003cb"`, JSString("a<b"))
}

func TestEncodeURLParams(t *testing.T) {
	params := struct {
		Title    string `url:"title"`
		Priority int    `url:"priority,omitempty"`
	}{Title: "All items claimed!"}

	encoded, err := EncodeURLParams(params)
	require.NoError(t, err)
	assert.Equal(t, "title=All+items+claimed%21", encoded)
}

func TestBeautifyJSONFallsBackToRaw(t *testing.T) {
	assert.Equal(t, "not json", BeautifyJSON([]byte("not json")))
	assert.Equal(t, "{\n  \"a\": 1\n}", BeautifyJSON([]byte(`{"a":1}`)))
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "abc", TruncateForLog(" abc ", 5))
	assert.Equal(t, "abcde...", TruncateForLog("abcdefgh", 5))
}
