// Package narration drives text-to-speech for the current page. Page text is
// split into short chunks for engine stability, chunks are spoken one at a
// time, and flaky engines are handled with bounded retries and a watchdog.
package narration

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxChunkChars bounds the text sent to the speech engine at once. Long
// utterances make engines cut out mid-sentence.
const MaxChunkChars = 150

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// SplitChunks breaks page text into chunks of at most MaxChunkChars,
// preferring natural boundaries: paragraph breaks, then sentence endings,
// then clause punctuation, then word boundaries. Whitespace runs collapse to
// single spaces and empty chunks are dropped.
func SplitChunks(text string) []string {
	var chunks []string
	for _, para := range paragraphBreak.Split(strings.TrimSpace(text), -1) {
		para = strings.Join(strings.Fields(para), " ")
		if para == "" {
			continue
		}
		if len(para) <= MaxChunkChars {
			chunks = append(chunks, para)
			continue
		}
		chunks = splitParagraph(para, chunks)
	}
	return chunks
}

// splitParagraph packs whole sentences greedily, descending into clause and
// word splits only for sentences that do not fit on their own.
func splitParagraph(para string, chunks []string) []string {
	var current string
	for _, sentence := range splitAfterAny(para, ".!?") {
		switch {
		case len(sentence) > MaxChunkChars:
			if current != "" {
				chunks = append(chunks, current)
				current = ""
			}
			chunks = splitSentence(sentence, chunks)
		case current != "" && len(current)+1+len(sentence) > MaxChunkChars:
			chunks = append(chunks, current)
			current = sentence
		case current == "":
			current = sentence
		default:
			current += " " + sentence
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// splitSentence packs clause fragments, falling back to word-boundary cuts
// for fragments longer than a chunk.
func splitSentence(sentence string, chunks []string) []string {
	var current string
	for _, part := range splitAfterAny(sentence, ":;,") {
		switch {
		case len(part) > MaxChunkChars:
			if current != "" {
				chunks = append(chunks, current)
				current = ""
			}
			chunks = forceSplit(part, chunks)
		case current != "" && len(current)+1+len(part) > MaxChunkChars:
			chunks = append(chunks, current)
			current = part
		case current == "":
			current = part
		default:
			current += " " + part
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// forceSplit cuts text with no usable punctuation at the last space inside
// the limit, or mid-word at a rune boundary when even a single word exceeds
// the limit.
func forceSplit(text string, chunks []string) []string {
	rest := text
	for rest != "" {
		if len(rest) <= MaxChunkChars {
			chunks = append(chunks, rest)
			break
		}
		cut := strings.LastIndexByte(rest[:MaxChunkChars+1], ' ')
		if cut < MaxChunkChars/2 {
			cut = MaxChunkChars
			for cut > 0 && !utf8.RuneStart(rest[cut]) {
				cut--
			}
		}
		chunks = append(chunks, strings.TrimSpace(rest[:cut]))
		rest = strings.TrimSpace(rest[cut:])
	}
	return chunks
}

// splitAfterAny splits s after any byte in seps that is followed by a space.
// The separator stays attached to the preceding fragment.
func splitAfterAny(s, seps string) []string {
	var parts []string
	start := 0
	for i := 0; i+1 < len(s); i++ {
		if strings.IndexByte(seps, s[i]) >= 0 && s[i+1] == ' ' {
			parts = append(parts, s[start:i+1])
			start = i + 2
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}
