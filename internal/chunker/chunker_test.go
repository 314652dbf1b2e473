package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func numberedWords(n int) string {
	words := make([]string, 0, n)
	for i := 0; i < n; i++ {
		words = append(words, fmt.Sprintf("word%04d", i))
	}
	return strings.Join(words, " ")
}

func TestSplitWords_SizeBounds(t *testing.T) {
	splitter := New(DefaultWordOptions())
	chunks := splitter.Split(numberedWords(500))
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), 500, "chunk %d over max size", i)
		if i < len(chunks)-1 {
			require.GreaterOrEqual(t, len(chunk), 300, "chunk %d under min size", i)
		}
	}
}

func TestSplitWords_OrderPreservedWithoutOverlap(t *testing.T) {
	splitter := New(Options{Mode: ModeWord, MinSize: 100, MaxSize: 200, Overlap: 0, MinTail: 1})
	text := numberedWords(200)
	chunks := splitter.Split(text)
	require.Greater(t, len(chunks), 1)

	// With zero overlap the chunks partition the word stream exactly.
	var got []string
	for _, chunk := range chunks {
		got = append(got, strings.Fields(chunk)...)
	}
	require.Equal(t, strings.Fields(text), got)
}

func TestSplitWords_OverlapSeedsNextChunk(t *testing.T) {
	splitter := New(Options{Mode: ModeWord, MinSize: 100, MaxSize: 200, Overlap: 0.1, MinTail: 1})
	chunks := splitter.Split(numberedWords(200))
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		firstWord := strings.Fields(chunks[i])[0]
		require.Contains(t, prevWords, firstWord, "chunk %d does not start inside chunk %d", i, i-1)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	splitter := New(DefaultWordOptions())
	text := numberedWords(350)
	require.Equal(t, splitter.Split(text), splitter.Split(text))
}

func TestSplit_ShortInputSingleChunk(t *testing.T) {
	for _, opts := range []Options{DefaultWordOptions(), DefaultSentenceOptions()} {
		splitter := New(opts)
		chunks := splitter.Split("Hello world. This is a test.")
		require.Len(t, chunks, 1, "mode %s", opts.Mode)
		require.Equal(t, "Hello world. This is a test.", chunks[0])
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	splitter := New(DefaultWordOptions())
	require.Empty(t, splitter.Split(""))
	require.Empty(t, splitter.Split("   \n\t  "))
}

func TestSplitWords_OversizedWordMakesProgress(t *testing.T) {
	splitter := New(DefaultWordOptions())
	giant := strings.Repeat("x", 900)
	chunks := splitter.Split(giant + " " + numberedWords(100))
	require.NotEmpty(t, chunks)
	require.Contains(t, chunks[0], giant)
}

func TestSplitWords_TinyTailDropped(t *testing.T) {
	splitter := New(Options{Mode: ModeWord, MinSize: 100, MaxSize: 200, Overlap: 0, MinTail: 50})
	// 30 words of 8 chars emit one full chunk around 120 bytes and leave a
	// short remainder below the tail floor.
	chunks := splitter.Split(numberedWords(16))
	for _, chunk := range chunks {
		require.GreaterOrEqual(t, len(chunk), 50)
	}
}

func TestSplitSentences_GroupsUpToTokenBudget(t *testing.T) {
	splitter := New(Options{Mode: ModeSentence, MaxTokens: 1000})
	chunks := splitter.Split("First sentence here. Second sentence here! Third sentence here?")
	require.Len(t, chunks, 1)
	require.Contains(t, chunks[0], "First sentence here.")
	require.Contains(t, chunks[0], "Third sentence here?")
}

func TestSplitSentences_SplitsPastTokenBudget(t *testing.T) {
	sentence := strings.Repeat("ab ", 30) + "end."
	text := strings.Repeat(sentence+" ", 5)
	splitter := New(Options{Mode: ModeSentence, MaxTokens: 20})
	chunks := splitter.Split(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		require.NotEmpty(t, chunk)
	}
}

func TestSplitSentences_NoTerminatorFallsBackToWholeText(t *testing.T) {
	splitter := New(DefaultSentenceOptions())
	chunks := splitter.Split("no terminator at all just words")
	require.Len(t, chunks, 1)
	require.Equal(t, "no terminator at all just words", chunks[0])
}
