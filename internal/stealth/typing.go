package stealth

import (
	"strings"
	"time"
	"unicode"
)

// Backspace is the key emitted to erase a simulated typo
const Backspace = "\b"

const (
	minKeystroke   = 30 * time.Millisecond
	maxKeystroke   = 120 * time.Millisecond
	minPunctPause  = 50 * time.Millisecond
	maxPunctPause  = 150 * time.Millisecond
	minCorrection  = 100 * time.Millisecond
	maxCorrection  = 300 * time.Millisecond
	punctuationSet = " .,!?"
)

// Keystroke is one key to send followed by the pause before the next one
type Keystroke struct {
	Key   string
	Delay time.Duration
}

// TypingPlan turns text into keystrokes. Every character waits a uniform
// 30-120ms, spaces and punctuation add a 50-150ms pause, and with the
// profile's typo rate a letter is preceded by a neighbouring key and a
// backspace.
func (h *Humanizer) TypingPlan(text string) []Keystroke {
	plan := make([]Keystroke, 0, len(text))

	for _, char := range text {
		if unicode.IsLetter(char) && h.rng.Float64() < h.profile.TypoRate {
			if wrong := h.typo(char); wrong != char {
				plan = append(plan,
					Keystroke{Key: string(wrong), Delay: h.Uniform(minKeystroke, maxKeystroke)},
					Keystroke{Key: Backspace, Delay: h.Uniform(minCorrection, maxCorrection)},
				)
			}
		}

		delay := h.Uniform(minKeystroke, maxKeystroke)
		if strings.ContainsRune(punctuationSet, char) {
			delay += h.Uniform(minPunctPause, maxPunctPause)
		}
		plan = append(plan, Keystroke{Key: string(char), Delay: delay})
	}

	return plan
}

// Type replays a plan through a single-key primitive, sleeping between
// keys. It stops at the first failing key.
func (h *Humanizer) Type(plan []Keystroke, press func(key string) error) error {
	for _, ks := range plan {
		if err := press(ks.Key); err != nil {
			return err
		}
		h.sleep(ks.Delay)
	}
	return nil
}

// Replay applies a plan to an empty buffer and returns what ends up typed
func Replay(plan []Keystroke) string {
	var out []rune
	for _, ks := range plan {
		if ks.Key == Backspace {
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			continue
		}
		out = append(out, []rune(ks.Key)...)
	}
	return string(out)
}

// adjacent keys on a QWERTY layout
var typoMap = map[rune][]rune{
	'a': {'s', 'q', 'w', 'z'},
	'b': {'v', 'g', 'h', 'n'},
	'c': {'x', 'd', 'f', 'v'},
	'd': {'s', 'e', 'r', 'f', 'c', 'x'},
	'e': {'w', 'r', 'd', 's'},
	'f': {'d', 'r', 't', 'g', 'v', 'c'},
	'g': {'f', 't', 'y', 'h', 'b', 'v'},
	'h': {'g', 'y', 'u', 'j', 'n', 'b'},
	'i': {'u', 'o', 'k', 'j'},
	'j': {'h', 'u', 'i', 'k', 'm', 'n'},
	'k': {'j', 'i', 'o', 'l', 'm'},
	'l': {'k', 'o', 'p'},
	'm': {'n', 'j', 'k'},
	'n': {'b', 'h', 'j', 'm'},
	'o': {'i', 'p', 'l', 'k'},
	'p': {'o', 'l'},
	'q': {'w', 'a'},
	'r': {'e', 't', 'f', 'd'},
	's': {'a', 'w', 'e', 'd', 'x', 'z'},
	't': {'r', 'y', 'g', 'f'},
	'u': {'y', 'i', 'j', 'h'},
	'v': {'c', 'f', 'g', 'b'},
	'w': {'q', 'e', 's', 'a'},
	'x': {'z', 's', 'd', 'c'},
	'y': {'t', 'u', 'h', 'g'},
	'z': {'a', 's', 'x'},
}

func (h *Humanizer) typo(char rune) rune {
	typos, ok := typoMap[unicode.ToLower(char)]
	if !ok {
		return char
	}
	wrong := typos[h.rng.Intn(len(typos))]
	if unicode.IsUpper(char) {
		wrong = unicode.ToUpper(wrong)
	}
	return wrong
}
