package extract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueMarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "text", v: Text("hello"), want: `"hello"`},
		{name: "quoted json text", v: Text(`"hello"`), want: `"\"hello\""`},
		{name: "no html escaping", v: Text("<a>&</a>"), want: `"<a>&</a>"`},
		{name: "line separators kept", v: Text("a\u2028b\u2029c"), want: "\"a\u2028b\u2029c\""},
		{name: "control characters", v: Text("\b\f\n\r\t\x01\x1f"), want: `"\b\f\n\r\t\u0001\u001f"`},
		{name: "invalid utf8 replaced", v: Text("a\xffb"), want: "\"a\ufffdb\""},
		{name: "integer", v: Number(42), want: `42`},
		{name: "fraction", v: Number(0.1), want: `0.1`},
		{name: "large", v: Number(1e21), want: `1e+21`},
		{name: "small", v: Number(1e-7), want: `1e-7`},
		{name: "negative zero", v: Number(math.Copysign(0, -1)), want: `0`},
		{name: "nan", v: Number(math.NaN()), want: `null`},
		{name: "inf", v: Number(math.Inf(-1)), want: `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := tt.v.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestValueAccessors(t *testing.T) {
	t.Parallel()

	_, ok := Text("x").Float()
	assert.False(t, ok)
	assert.Equal(t, "2.5", Number(2.5).String())
	assert.Equal(t, KindNumber, Number(1).Kind())
}
