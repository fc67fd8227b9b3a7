package cli

import (
	"strings"
	"testing"

	"github.com/amp-labs/amp-fsm/envutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanner(t *testing.T) {
	t.Parallel()

	out := Banner(t.Context(), "auth: loggedIn", 20, AlignCenter)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "╒"+strings.Repeat("═", 18)+"╕", lines[0])
	assert.Equal(t, "│  auth: loggedIn  │", lines[1])
	assert.Equal(t, "└"+strings.Repeat("─", 18)+"┘", lines[2])
}

func TestBannerSuppressed(t *testing.T) {
	t.Parallel()

	ctx := envutil.WithEnvOverride(t.Context(), "FSM_NO_BANNER", "true")
	assert.Equal(t, "plain\n", Banner(ctx, "plain", 20, AlignLeft))
}

func TestPad(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab   ", pad("ab", 5, AlignLeft))
	assert.Equal(t, "   ab", pad("ab", 5, AlignRight))
	assert.Equal(t, " ab  ", pad("ab", 5, AlignCenter))
	assert.Equal(t, "abcd…", pad("abcdefgh", 5, AlignLeft))
	assert.Equal(t, 5, countGraphic(pad("abcdefgh", 5, AlignCenter)))
}

func TestSelectNoChoices(t *testing.T) {
	t.Parallel()

	_, _, err := Select("pick")
	require.ErrorIs(t, err, ErrNoChoices)
}

func TestNonEmpty(t *testing.T) {
	t.Parallel()

	require.Error(t, NonEmpty(""))
	require.NoError(t, NonEmpty("x"))
}
