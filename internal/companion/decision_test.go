package companion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/devscape/internal/mood"
	"github.com/talgya/devscape/internal/world"
)

func TestParseDecisionTaggedFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Decision
	}{
		{
			name: "full tagged response",
			raw:  "MOVE: east | SAY: hello there | MOOD: +2",
			want: Decision{Direction: world.DirEast, Dialogue: "hello there", MoodDelta: 2},
		},
		{
			name: "lowercase tags and synonym direction",
			raw:  "move: up | say: brr, it is cold",
			want: Decision{Direction: world.DirNorth, Dialogue: "brr, it is cold"},
		},
		{
			name: "stay keeps position",
			raw:  "MOVE: stay | SAY: I'll wait here",
			want: Decision{Direction: world.DirNone, Dialogue: "I'll wait here"},
		},
		{
			name: "negative mood tag",
			raw:  "MOVE: west | SAY: this place scares me | MOOD: -3",
			want: Decision{Direction: world.DirWest, Dialogue: "this place scares me", MoodDelta: -3},
		},
		{
			name: "mood tag clamped to bounds",
			raw:  "MOVE: none | SAY: ecstatic | MOOD: +40",
			want: Decision{Direction: world.DirNone, Dialogue: "ecstatic", MoodDelta: mood.DeltaMax},
		},
		{
			name: "direction drifted into dialogue segment",
			raw:  "| SAY: let's go north together",
			want: Decision{Direction: world.DirNorth, Dialogue: "let's go north together", MoodDelta: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecision(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDecisionFreeform(t *testing.T) {
	// The canonical untagged shape: direction token followed by dialogue.
	got, err := ParseDecision("move east, I sense you nearby")
	require.NoError(t, err)
	assert.Equal(t, world.DirEast, got.Direction)
	assert.Equal(t, "I sense you nearby", got.Dialogue)
	assert.Equal(t, 1, got.MoodDelta)
}

func TestParseDecisionLengthChangingCaseFolds(t *testing.T) {
	// Some runes change UTF-8 byte length when lowercased ("Ⱥ" is two
	// bytes, "ⱥ" is three; "İ" folds the other way). The direction scan
	// must stay on the original string's byte offsets for these.
	tests := []struct {
		name string
		raw  string
		want Decision
	}{
		{
			name: "growing runes before the direction",
			raw:  "ȺȺȺȺȺȺ east",
			want: Decision{Direction: world.DirEast},
		},
		{
			name: "growing rune then direction with trailing text",
			raw:  "Ⱥ move east",
			want: Decision{Direction: world.DirEast},
		},
		{
			name: "shrinking runes keep the dialogue intact",
			raw:  "İİİİİİ east, hello friend",
			want: Decision{Direction: world.DirEast, Dialogue: "hello friend", MoodDelta: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecision(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDecisionDirectionInsideLongerWord(t *testing.T) {
	// "eastward" must not match as "east"; the real token follows it.
	got, err := ParseDecision("eastward east, onward")
	require.NoError(t, err)
	assert.Equal(t, world.DirEast, got.Direction)
	assert.Equal(t, "onward", got.Dialogue)
}

func TestParseDecisionNoDirectionIsNotAnError(t *testing.T) {
	got, err := ParseDecision("MOVE: sideways | SAY: which way is sideways?")
	require.NoError(t, err)
	assert.Equal(t, world.DirNone, got.Direction, "unknown direction defaults to none")
	assert.Equal(t, "which way is sideways?", got.Dialogue)
}

func TestParseDecisionGibberishFails(t *testing.T) {
	for _, raw := range []string{"", "   ", "xyzzy blorp qwfp", "!!!???"} {
		_, err := ParseDecision(raw)
		assert.ErrorIs(t, err, ErrParseFailure, "raw=%q", raw)
	}
}

func TestParseDecisionSentimentDelta(t *testing.T) {
	got, err := ParseDecision("MOVE: none | SAY: I feel sad and lonely in the dark")
	require.NoError(t, err)
	assert.Equal(t, -3, got.MoodDelta)

	got, err = ParseDecision("MOVE: none | SAY: so happy we are together, friend")
	require.NoError(t, err)
	assert.Equal(t, 3, got.MoodDelta)
}

func TestSanitizeDialogueStripsControlCharacters(t *testing.T) {
	in := "hello\x00\x1b[31m there\r\n"
	out := SanitizeDialogue(in)
	assert.Equal(t, "hello[31m there", out)
}

func TestSanitizeDialogueTruncationIsDeterministic(t *testing.T) {
	long := strings.Repeat("ab", MaxDialogueLen)
	first := SanitizeDialogue(long)
	assert.Len(t, []rune(first), MaxDialogueLen)

	// Repeated identical input always truncates to the same result.
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, SanitizeDialogue(long))
	}
}

func TestParseDecisionDialogueIsBounded(t *testing.T) {
	raw := "MOVE: east | SAY: " + strings.Repeat("x", 5*MaxDialogueLen)
	got, err := ParseDecision(raw)
	require.NoError(t, err)
	assert.Len(t, []rune(got.Dialogue), MaxDialogueLen)
}
