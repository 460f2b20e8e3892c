package dialogue

import "strings"

// PhraseSet holds the trigger phrases. Both lists are configuration: the
// observed deployments disagree on the closing list, so nothing here is a
// fixed constant.
type PhraseSet struct {
	Greetings []string
	Closings  []string
}

func DefaultPhrases() PhraseSet {
	return PhraseSet{
		Greetings: []string{"hi", "hello", "hey"},
		Closings:  []string{"no", "thanks", "thank you", "ok", "okay", "that's all", "bye"},
	}
}

// normalizePhrase lowers the message and strips surrounding space and
// trailing punctuation so "Thanks!" still matches "thanks".
func normalizePhrase(message string) string {
	s := strings.ToLower(strings.TrimSpace(message))
	return strings.TrimRight(s, ".,!?")
}

func (p PhraseSet) IsGreeting(message string) bool {
	return matchPhrase(p.Greetings, message)
}

func (p PhraseSet) IsClosing(message string) bool {
	return matchPhrase(p.Closings, message)
}

func matchPhrase(phrases []string, message string) bool {
	norm := normalizePhrase(message)
	for _, p := range phrases {
		if norm == strings.ToLower(p) {
			return true
		}
	}
	return false
}
