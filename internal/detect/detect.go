// Package detect decides whether a stretch of transcribed speech is an
// interview question worth answering, whether it has finished, and what kind
// of question it is.
//
// The checks are layered by cost. [LikelyQuestion] is a vocabulary scan that
// rejects most non-question speech before anything expensive runs.
// [LikelyComplete] gates on length and terminal punctuation so half-spoken
// questions stay buffered. [Classifier.Classify] assigns a category from
// regular-expression patterns and only consults a language model when the
// pattern confidence is low.
package detect

import (
	"strings"
	"unicode"
)

// questionWords are single leading tokens that strongly indicate a question.
var questionWords = []string{
	"what", "how", "why", "when", "where", "who", "which", "whose",
	"is", "are", "do", "does", "did", "will", "would", "should",
	"can", "could", "have", "has",
}

// questionPhrases are multi-word openers and embedded prompts common in
// interview speech, matched anywhere in the text.
var questionPhrases = []string{
	"can you", "could you", "would you", "will you",
	"tell me", "tell us", "describe", "explain",
	"walk me through", "walk us through", "talk about",
	"give me an example", "give an example",
	"what about", "how about",
}

const (
	// minQuestionWords is the minimum word count for text to be treated as a
	// question at all; shorter fragments are interjections or noise.
	minQuestionWords = 3

	// minPromptWords is the floor for marker-less text that ends in terminal
	// punctuation. Imperative prompts ("Discuss a situation where…") carry no
	// interrogative marker at all.
	minPromptWords = 5

	// assumeQuestionWords is the length at which marker-less text passes the
	// pre-filter unconditionally; the classifier sorts out long statements.
	assumeQuestionWords = 8
)

// LikelyQuestion reports whether text plausibly contains an interview
// question. It is a cheap pre-filter: a '?' anywhere, a leading interrogative
// word, or an embedded question phrase passes, as does longer marker-less
// text (imperative prompts carry no question words). Everything else is
// rejected so that classification and answer lookup never run on filler
// speech.
func LikelyQuestion(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	lower := strings.ToLower(trimmed)
	words := strings.Fields(lower)
	if len(words) < minQuestionWords {
		return false
	}

	if strings.Contains(trimmed, "?") {
		return true
	}

	first := strings.TrimFunc(words[0], unicode.IsPunct)
	for _, qw := range questionWords {
		if first == qw {
			return true
		}
	}

	for _, phrase := range questionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	if len(words) >= assumeQuestionWords {
		return true
	}
	if len(words) >= minPromptWords {
		switch trimmed[len(trimmed)-1] {
		case '.', '!':
			return true
		}
	}

	return false
}

const (
	// minCompleteWords is the floor below which text is never complete.
	minCompleteWords = 3

	// assumeCompleteWords is the length at which text is treated as complete
	// even without terminal punctuation; STT output frequently drops it.
	assumeCompleteWords = 8
)

// LikelyComplete reports whether the question appears fully spoken. Text
// shorter than three words is never complete. At three or more words,
// terminal punctuation ('?', '.', '!') completes it; at eight or more words
// it is assumed complete regardless, because transcription often omits
// punctuation.
func LikelyComplete(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	words := strings.Fields(trimmed)
	if len(words) < minCompleteWords {
		return false
	}
	if len(words) >= assumeCompleteWords {
		return true
	}

	switch trimmed[len(trimmed)-1] {
	case '?', '.', '!':
		return true
	}
	return false
}
