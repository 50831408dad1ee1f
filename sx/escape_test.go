package sx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`a&b`, "a&amp;b"},
		{`<a href="x">`, "&lt;a href=&quot;x&quot;&gt;"},
		{"'single'", "'single'"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeString(tt.in), "escape %q", tt.in)
	}
}

func TestQstrip(t *testing.T) {
	assert.Equal(t, "x", qstrip(`"x"`))
	assert.Equal(t, "x", qstrip(`'x'`))
	assert.Equal(t, `"x'`, qstrip(`"x'`))
	assert.Equal(t, "", qstrip(`""`))
	assert.Equal(t, `"`, qstrip(`"`))
}

func TestEscapeComment(t *testing.T) {
	assert.Equal(t, "a --&gt; b", escapeComment("a --> b"))
	assert.Equal(t, "a - b", escapeComment("a - b"))
}
