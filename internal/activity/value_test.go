package activity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_Kinds(t *testing.T) {
	cases := []struct {
		raw  string
		kind Kind
	}{
		{``, KindEmpty},
		{`null`, KindEmpty},
		{`""`, KindEmpty},
		{`42`, KindNumber},
		{`"in-progress"`, KindText},
		{`true`, KindBool},
		{`[1,2]`, KindList},
		{`{"name":"Shell"}`, KindRecord},
		{`{not json`, KindText},
		{"42\n", KindNumber},
		{`42 trailing`, KindText},
		{`[1] [2]`, KindText},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, DecodeJSON([]byte(tc.raw)).Kind(), tc.raw)
	}
}

func TestDecodeJSON_TrailingDataKeptVerbatim(t *testing.T) {
	v := DecodeJSON([]byte(`42 trailing`))
	require.Equal(t, KindText, v.Kind())
	assert.Equal(t, "42 trailing", v.Str())
}

func TestDecodeJSON_KeepsNumberPrecision(t *testing.T) {
	v := DecodeJSON([]byte(`12345678901234567890.5`))
	require.Equal(t, KindNumber, v.Kind())
	assert.Equal(t, "12345678901234567890.5", v.Num().String())
}

func TestValue_MarshalRoundTrip(t *testing.T) {
	v := Record(map[string]Value{
		"tags":  List(Text("HX-101"), Text("<b>")),
		"count": Decode(3),
	})
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":3,"tags":["HX-101","<b>"]}`, string(b))

	direct, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"count":3,"tags":["HX-101","<b>"]}`, string(direct))

	var back Value
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, v.Equal(back))
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Decode(1).Equal(DecodeJSON([]byte("1.0"))))
	assert.False(t, Text("1").Equal(Decode(1)))
	assert.False(t, List(Text("a")).Equal(List(Text("a"), Text("b"))))
	assert.True(t, Empty().Equal(Decode(nil)))
}
