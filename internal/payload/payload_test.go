package payload

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRejectsNoData(t *testing.T) {
	for _, body := range []string{"", "not json", "[]", "[1,2]", "{}", "null", `"str"`} {
		_, err := Decode(strings.NewReader(body))
		assert.ErrorIs(t, err, ErrNoData, "body %q", body)
	}
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPresence(t *testing.T) {
	obj, err := Decode(strings.NewReader(`{"a": 1, "b": null}`))
	require.NoError(t, err)

	assert.True(t, obj.Has("a"))
	assert.True(t, obj.Has("b"))
	assert.False(t, obj.Has("c"))
	assert.True(t, obj.Present("a"))
	assert.False(t, obj.Present("b"))
	assert.True(t, obj.HasAll("a", "b"))
	assert.False(t, obj.HasAll("a", "c"))
}

func TestInt(t *testing.T) {
	obj, err := Decode(strings.NewReader(`{"n": 7, "s": " 42 ", "f": 1.5, "b": true, "w": "x"}`))
	require.NoError(t, err)

	n, err := obj.Int("n")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = obj.Int("s")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	for _, key := range []string{"f", "b", "w", "missing"} {
		_, err = obj.Int(key)
		assert.ErrorIs(t, err, ErrInvalid, key)
	}
}

func TestString(t *testing.T) {
	obj, err := Decode(strings.NewReader(`{"s": "hi", "e": "", "z": null, "n": 5}`))
	require.NoError(t, err)

	v, err := obj.String("s")
	require.NoError(t, err)
	assert.Equal(t, "hi", v)

	v, err = obj.String("e")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	for _, key := range []string{"z", "n", "missing"} {
		_, err = obj.String(key)
		assert.ErrorIs(t, err, ErrInvalid, key)
	}
}

func TestText(t *testing.T) {
	obj, err := Decode(strings.NewReader(`{"s": "hello", "n": 5, "o": {"k": 1}, "empty": "", "zero": 0, "f": false, "null": null}`))
	require.NoError(t, err)

	text, ok := obj.Text("s")
	assert.True(t, ok)
	assert.Equal(t, "hello", text)

	text, ok = obj.Text("n")
	assert.True(t, ok)
	assert.Equal(t, "5", text)

	text, ok = obj.Text("o")
	assert.True(t, ok)
	assert.Equal(t, `{"k": 1}`, text)

	for _, key := range []string{"empty", "zero", "f", "null", "missing"} {
		_, ok = obj.Text(key)
		assert.False(t, ok, key)
	}
}

func TestTruthy(t *testing.T) {
	cases := map[string]bool{
		`true`: true, `false`: false, `1`: true, `0`: false, `0.0`: false, `-2`: true,
		`"x"`: true, `""`: false, `[0]`: true, `[]`: false, `{"a":0}`: true, `{}`: false,
		`null`: false, `"false"`: true,
	}
	for raw, want := range cases {
		assert.Equal(t, want, Truthy(json.RawMessage(raw)), raw)
	}
}
