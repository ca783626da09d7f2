package companion

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/talgya/devscape/internal/mood"
	"github.com/talgya/devscape/internal/world"
)

// MaxDialogueLen bounds a dialogue line in runes. Longer lines are
// truncated deterministically.
const MaxDialogueLen = 120

// ErrParseFailure means the raw response held no usable content at all:
// no direction token, no dialogue segment, no explicit mood tag.
var ErrParseFailure = errors.New("companion: unparseable response")

// Decision is the validated, bounded output of parsing a model response.
// Invalid decisions are never constructed: ParseDecision either returns a
// valid value or an error.
type Decision struct {
	Direction world.Direction
	Dialogue  string // Empty means nothing to say
	MoodDelta int    // Already clamped to the mood delta bounds
}

// moodTagRe matches an explicit mood tag like "MOOD: +2" or "mood:-3".
var moodTagRe = regexp.MustCompile(`(?i)\bmood:?\s*([+-]?\d+)`)

// directionVocab maps accepted direction tokens, including the up/down/
// left/right synonyms models often produce, onto the direction enum.
var directionVocab = map[string]world.Direction{
	"north": world.DirNorth, "up": world.DirNorth,
	"south": world.DirSouth, "down": world.DirSouth,
	"east": world.DirEast, "right": world.DirEast,
	"west": world.DirWest, "left": world.DirWest,
	"none": world.DirNone, "stay": world.DirNone,
	"hold": world.DirNone, "wait": world.DirNone,
}

// Sentiment keywords used to derive a mood delta when the response carries
// no explicit mood tag. Each hit moves the delta by one.
var (
	positiveWords = []string{
		"happy", "glad", "joy", "friend", "love", "nearby",
		"together", "safe", "wonderful", "curious", "fun",
	}
	negativeWords = []string{
		"angry", "afraid", "fear", "sad", "lonely", "lost",
		"danger", "hate", "dark", "hurt",
	}
)

// ParseDecision turns raw model output into a Decision.
//
// The expected shape is "MOVE: east | SAY: hello | MOOD: +1", but every
// part is optional and tag-free responses like "move east, I sense you
// nearby" still parse: the first direction token is the move and the text
// after it is the dialogue. A missing direction degrades to DirNone rather
// than failing; only a response with no recognizable content at all
// returns ErrParseFailure.
func ParseDecision(raw string) (Decision, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Decision{}, ErrParseFailure
	}

	var (
		movePart, sayPart string
		hasSay            bool
	)

	if i := strings.Index(raw, "|"); i >= 0 {
		movePart, sayPart, hasSay = raw[:i], trimSegment(raw[i+1:]), true
	} else if i := indexTag(raw, "say:"); i >= 0 {
		movePart, sayPart, hasSay = raw[:i], trimSegment(raw[i:]), true
	} else {
		movePart = raw
	}

	dir, hasDir, rest := findDirection(movePart)
	if !hasDir && hasSay {
		// Tolerate the direction token drifting into the dialogue segment.
		dir, hasDir, _ = findDirection(sayPart)
	}
	if !hasSay && hasDir {
		// Heuristic boundary: without a delimiter, everything after the
		// direction token is dialogue.
		sayPart = trimSegment(rest)
		hasSay = sayPart != ""
	}

	dialogue := ""
	if hasSay {
		dialogue = SanitizeDialogue(sayPart)
		hasSay = dialogue != ""
	}

	delta, explicit := findMoodDelta(raw, dialogue)

	if !hasDir && !hasSay && !explicit {
		return Decision{}, ErrParseFailure
	}

	return Decision{
		Direction: dir,
		Dialogue:  dialogue,
		MoodDelta: mood.ClampDelta(delta),
	}, nil
}

// trimSegment strips segment tags, a trailing mood tag, a trailing pipe
// section, and surrounding punctuation from a dialogue candidate.
func trimSegment(s string) string {
	s = stripTag(s, "say:")
	if loc := moodTagRe.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	if i := strings.Index(s, "|"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '.' || r == '-' || r == ':'
	})
}

func indexTag(s, tag string) int {
	return strings.Index(strings.ToLower(s), tag)
}

func stripTag(s, tag string) string {
	if i := indexTag(s, tag); i >= 0 {
		s = s[:i] + s[i+len(tag):]
	}
	return strings.TrimSpace(s)
}

// findDirection scans the text for the first known direction token,
// case-insensitive and tolerant of surrounding punctuation. rest is the
// text following the matched token. The scan walks the input itself and
// lowercases only candidate tokens: lowercasing the whole string can
// change its byte length, so offsets computed on a lowered copy are not
// valid slice bounds on the original.
func findDirection(text string) (dir world.Direction, found bool, rest string) {
	for i := 0; i < len(text); {
		r, w := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += w
			continue
		}
		start := i
		for i < len(text) {
			r, w = utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += w
		}
		tok := strings.TrimFunc(text[start:i], func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if d, ok := directionVocab[strings.ToLower(tok)]; ok {
			return d, true, text[i:]
		}
	}
	return world.DirNone, false, text
}

// findMoodDelta prefers an explicit mood tag anywhere in the raw response
// and otherwise scores sentiment keywords in the dialogue (or, absent
// dialogue, the whole response). explicit reports whether a tag was found.
func findMoodDelta(raw, dialogue string) (delta int, explicit bool) {
	if m := moodTagRe.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}

	text := dialogue
	if text == "" {
		text = raw
	}
	text = strings.ToLower(text)

	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			delta++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			delta--
		}
	}
	return delta, false
}

// SanitizeDialogue strips control and other non-printable characters and
// truncates to MaxDialogueLen runes. Deterministic: identical input always
// yields identical output.
func SanitizeDialogue(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())

	runes := []rune(out)
	if len(runes) > MaxDialogueLen {
		out = string(runes[:MaxDialogueLen])
	}
	return out
}
