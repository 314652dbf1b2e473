// Package chunker splits normalized document text into bounded, ordered
// segments sized for embedding models and prompt context windows.
package chunker

import (
	"regexp"
	"strings"
)

const (
	ModeWord     = "word"
	ModeSentence = "sentence"
)

// Options selects one of the two chunking presets. Word mode accumulates
// whitespace-delimited words into [MinSize, MaxSize] byte windows and carries
// a trailing overlap into the next chunk. Sentence mode accumulates whole
// sentences up to MaxTokens (estimated as len/4) with no overlap.
type Options struct {
	Mode      string
	MinSize   int
	MaxSize   int
	Overlap   float64
	MinTail   int
	MaxTokens int
}

func DefaultWordOptions() Options {
	return Options{
		Mode:    ModeWord,
		MinSize: 300,
		MaxSize: 500,
		Overlap: 0.05,
		MinTail: 50,
	}
}

func DefaultSentenceOptions() Options {
	return Options{
		Mode:      ModeSentence,
		MaxTokens: 500,
	}
}

type Splitter struct {
	opts Options
}

func New(opts Options) *Splitter {
	if opts.Mode == "" {
		opts.Mode = ModeWord
	}
	if opts.MinSize <= 0 {
		opts.MinSize = 300
	}
	if opts.MaxSize < opts.MinSize {
		opts.MaxSize = opts.MinSize + 200
	}
	if opts.Overlap < 0 || opts.Overlap >= 1 {
		opts.Overlap = 0.05
	}
	if opts.MinTail <= 0 {
		opts.MinTail = 50
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	return &Splitter{opts: opts}
}

// Split returns the ordered chunk sequence for text. Output is deterministic:
// the same text and options always produce byte-identical chunks, and slice
// order is emission order.
func (s *Splitter) Split(text string) []string {
	var chunks []string
	if s.opts.Mode == ModeSentence {
		chunks = s.splitSentences(text)
	} else {
		chunks = s.splitWords(text)
	}
	out := chunks[:0]
	for _, c := range chunks {
		trimmed := strings.TrimSpace(c)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// splitWords accumulates words until the running size crosses MinSize, then
// closes the chunk. A closed chunk within [MinSize, MaxSize] seeds the next
// chunk with its trailing Overlap fraction of words; a chunk past MaxSize is
// split before its final word, which alone seeds the next chunk. The size
// estimate is word length plus one joiner byte, so no tokenizer round trip is
// needed per boundary check.
func (s *Splitter) splitWords(text string) []string {
	words := strings.Fields(text)
	var chunks []string
	var current []string
	currentSize := 0

	for _, word := range words {
		current = append(current, word)
		currentSize += len(word) + 1

		if currentSize < s.opts.MinSize {
			continue
		}
		joined := strings.Join(current, " ")
		switch {
		case len(joined) >= s.opts.MinSize && len(joined) <= s.opts.MaxSize:
			chunks = append(chunks, joined)
			overlapWords := int(float64(len(current)) * s.opts.Overlap)
			current = append([]string(nil), current[len(current)-overlapWords:]...)
			currentSize = 0
			for _, w := range current {
				currentSize += len(w) + 1
			}
		case len(joined) > s.opts.MaxSize:
			before := strings.Join(current[:len(current)-1], " ")
			chunks = append(chunks, before)
			last := current[len(current)-1]
			current = []string{last}
			currentSize = len(last)
		}
	}

	if len(current) > 0 {
		remaining := strings.Join(current, " ")
		// Negligible trailing fragments are dropped rather than embedded.
		if len(remaining) >= s.opts.MinTail || len(chunks) == 0 {
			chunks = append(chunks, remaining)
		}
	}
	return chunks
}

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)

func (s *Splitter) splitSentences(text string) []string {
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	var chunks []string
	current := ""
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		estimated := (len(current) + len(sentence)) / 4
		if estimated > s.opts.MaxTokens && len(current) > 0 {
			chunks = append(chunks, strings.TrimSpace(current))
			current = sentence
			continue
		}
		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}
