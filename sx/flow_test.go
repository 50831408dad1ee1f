package sx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhileLoop(t *testing.T) {
	g, got, err := generate(t, `(@while [n "n = 3"] ["n = n - 1"] (@js "HTML = '[' + n + ']'"))`, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "[3][2][1]\n", got)
	assert.Equal(t, int64(0), g.vm.Get("n").ToInteger())
}

func TestWhileLoopSeveralUpdates(t *testing.T) {
	src := `(@js "var total = 0")
(@while [i "i = 4" "step = 2"] ["total += i"] ["i -= step"] (b x))
(@js "HTML = total")`
	g, got, err := generate(t, src, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "<b>x</b><b>x</b>6\n", got)
	assert.False(t, g.vm.Get("i").ToBoolean())
}

func TestWhileNeverEntered(t *testing.T) {
	_, got, err := generate(t, `(@while [n "n = 0"] ["n = 1"] (p x))`, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestConditionals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"when true", `(@js "flag = true") (@when [flag] (b yes))`, "<b>yes</b>\n"},
		{"when false", `(@js "flag = false") (@when [flag] (b yes))`, ""},
		{"when undefined", `(@when [missing] (b yes))`, ""},
		{"when with init", `(@when [v "v = 'x'"] (b yes))`, "<b>yes</b>\n"},
		{"unless true", `(@js "flag = 1") (@unless [flag] (b no))`, ""},
		{"unless undefined", `(@unless [missing] (b no))`, "<b>no</b>\n"},
		{"no arguments", `(@when (b yes))`, ""},
		{"empty arguments", `(@when [] (b yes))`, ""},
		{"case insensitive", `(@WHEN [f "f = true"] (b yes))`, "<b>yes</b>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, err := generate(t, tt.src, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhenRunsUpdatesOnlyAfterBody(t *testing.T) {
	g, _, err := generate(t, `(@when [f "f = true; c = 0"] ["c += 1"] (b x)) (@unless [f] ["c += 10"] (b y))`, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.vm.Get("c").ToInteger())
}

func TestFlowScriptError(t *testing.T) {
	_, _, err := generate(t, `(@while [n "n = "] (b x))`, DefaultOptions())
	var serr *ScriptError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, InProcess, serr.Mode)
}
