package tagged

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalWrapsNestedBytes(t *testing.T) {
	out, err := Marshal(map[string]any{
		"b": []byte("hi"),
		"list": []any{
			[]byte{0x00, 0xff},
			"plain",
		},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"b":{"__class__":"bytes","__value__":"aGk="},"list":[{"__class__":"bytes","__value__":"AP8="},"plain"]}`,
		string(out))
}

func TestMarshalDoesNotEscapeHTML(t *testing.T) {
	out, err := Marshal(map[string]any{"comment_text": "a < b & c"})
	require.NoError(t, err)
	assert.Equal(t, `{"comment_text":"a < b & c"}`, string(out))
}

func TestRoundTrip(t *testing.T) {
	in := map[string]any{
		"key":    []byte{1, 2, 3, 250},
		"nested": map[string]any{"inner": []byte("x")},
		"text":   "aGk=",
	}
	data, err := Marshal(in)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)

	m := got.(map[string]any)
	assert.Equal(t, []byte{1, 2, 3, 250}, m["key"])
	assert.Equal(t, []byte("x"), m["nested"].(map[string]any)["inner"])
	assert.Equal(t, "aGk=", m["text"], "plain base64-looking strings stay strings")
}

func TestBytesTypeRoundTrip(t *testing.T) {
	type holder struct {
		Data Bytes `json:"data"`
	}
	data, err := json.Marshal(holder{Data: Bytes("secret")})
	require.NoError(t, err)

	var h holder
	require.NoError(t, json.Unmarshal(data, &h))
	assert.Equal(t, Bytes("secret"), h.Data)
}

func TestBytesRejectsOtherClasses(t *testing.T) {
	var b Bytes
	err := json.Unmarshal([]byte(`{"__class__":"datetime","__value__":"x"}`), &b)
	assert.Error(t, err)
}

func TestRestoreLeavesLookalikesAlone(t *testing.T) {
	v := map[string]any{"__class__": "bytes", "__value__": "not base64!", "extra": 1}
	assert.Equal(t, v, Restore(v))
}
