package jsonc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cchooks/internal/jsonc"
)

func TestStripCommentsLineComment(t *testing.T) {
	in := []byte("{\n  \"a\": 1 // trailing comment\n}")
	out := jsonc.StripComments(in)
	assert.NotContains(t, string(out), "trailing comment")
	assert.Contains(t, string(out), `"a": 1`)
}

func TestStripCommentsBlockComment(t *testing.T) {
	in := []byte("{\n  /* block\n     spanning lines */\n  \"a\": 1\n}")
	out := jsonc.StripComments(in)
	assert.NotContains(t, string(out), "block")
	assert.NotContains(t, string(out), "spanning")
}

func TestStripCommentsLeavesSlashesInStrings(t *testing.T) {
	in := []byte(`{"path": "a//b/*not-a-comment*/c"}`)
	out := jsonc.StripComments(in)
	assert.Contains(t, string(out), "a//b/*not-a-comment*/c")
}

func TestParse(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	err := jsonc.Parse([]byte("{\n  \"a\": 7 // comment\n}"), &v)
	require.NoError(t, err)
	assert.Equal(t, 7, v.A)
}

func TestParseInvalidJSON(t *testing.T) {
	var v map[string]any
	err := jsonc.Parse([]byte("{not json"), &v)
	require.Error(t, err)
}
