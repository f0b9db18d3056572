package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewText(t *testing.T) {
	t.Run("quiet hides debug", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewText(&buf, false)

		l.Debug("hidden", "k", 1)
		l.Warn("shown", "lane", 2)

		require.NotContains(t, buf.String(), "hidden")
		require.Contains(t, buf.String(), "shown")
		require.Contains(t, buf.String(), "lane=2")
	})

	t.Run("verbose shows debug", func(t *testing.T) {
		var buf bytes.Buffer
		NewText(&buf, true).Debug("details", "units", 12)
		require.Contains(t, buf.String(), "units=12")
	})
}

func TestOrNop(t *testing.T) {
	require.Equal(t, NopLogger{}, OrNop(nil))

	l := NewText(&bytes.Buffer{}, false)
	require.Same(t, l, OrNop(l))
}
