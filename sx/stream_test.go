package sx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamPositions(t *testing.T) {
	s := NewStream("doc.sx", strings.NewReader("ab\nc"))

	want := []Char{
		{R: 'a', Pos: Pos{Source: "doc.sx", Line: 1, Column: 0}},
		{R: 'b', Pos: Pos{Source: "doc.sx", Line: 1, Column: 1}},
		{R: '\n', Pos: Pos{Source: "doc.sx", Line: 1, Column: 2}},
		{R: 'c', Pos: Pos{Source: "doc.sx", Line: 2, Column: 0}},
	}
	for i, w := range want {
		c, ok := s.Next()
		require.True(t, ok, "char %d", i)
		assert.Equal(t, w, c, "char %d", i)
	}

	_, ok := s.Next()
	assert.False(t, ok)
	assert.NoError(t, s.Err())
	assert.Equal(t, 2, s.Line())
}

func TestStreamStdinName(t *testing.T) {
	assert.Equal(t, StdinName, NewStream("-", strings.NewReader("")).Name())
	assert.Equal(t, StdinName, NewStream("", strings.NewReader("")).Name())
	assert.Equal(t, "x.sx", NewStream("x.sx", strings.NewReader("")).Name())
}

func TestStreamUnread(t *testing.T) {
	s := NewStream("t", strings.NewReader("xyz"))

	c, _ := s.Next()
	s.Unread(c)
	c2, _ := s.Next()
	assert.Equal(t, c, c2)

	str, chars := s.Read(3)
	assert.Equal(t, "yz", str, "short read at end of input")
	assert.Len(t, chars, 2)

	s.UnreadAll(chars)
	str, _ = s.Read(2)
	assert.Equal(t, "yz", str)
}

func TestStreamUnicode(t *testing.T) {
	s := NewStream("t", strings.NewReader("漢字"))
	c, _ := s.Next()
	assert.Equal(t, '漢', c.R)
	c, _ = s.Next()
	assert.Equal(t, '字', c.R)
	assert.Equal(t, 1, c.Pos.Column)
}
