package segment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/wordsplit/corpus"
	"github.com/oarkflow/wordsplit/costmodel"
)

func mustModel(t testing.TB, words ...string) *costmodel.Model {
	t.Helper()
	m, err := costmodel.Build(words)
	require.NoError(t, err)
	return m
}

func defaultSegmenter(t testing.TB) *Segmenter {
	t.Helper()
	words, err := corpus.Default()
	require.NoError(t, err)
	return New(mustModel(t, words...))
}

// fixedLexicon assigns explicit costs so ties can be constructed.
type fixedLexicon map[string]float64

func (f fixedLexicon) Cost(key string) (float64, bool) {
	c, ok := f[key]
	return c, ok
}

func (f fixedLexicon) MaxWordLength() int {
	n := 0
	for w := range f {
		if l := utf8.RuneCountInString(w); l > n {
			n = l
		}
	}
	return n
}

func TestSegmentScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		words []string
		input string
		want  string
	}{
		{
			name:  "bank of jordan",
			words: []string{"jordan", "bank", "of"},
			input: "bankofjordan",
			want:  "bank of jordan",
		},
		{
			name:  "pangram keeps input case",
			words: []string{"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog"},
			input: "Thequickbrownfoxjumpsoverthelazydog",
			want:  "The quick brown fox jumps over the lazy dog",
		},
		{
			name:  "no known words falls back to runes",
			words: []string{"jordan", "bank", "of"},
			input: "xyzxyz",
			want:  "x y z x y z",
		},
		{
			name:  "unknown prefix then known words",
			words: []string{"the", "dog"},
			input: "xythedog",
			want:  "x y the dog",
		},
		{
			name:  "empty",
			words: []string{"a"},
			input: "",
			want:  "",
		},
		{
			name:  "single character",
			words: []string{"the"},
			input: "Q",
			want:  "Q",
		},
		{
			name:  "text shorter than longest word",
			words: []string{"extraordinary", "an", "ox"},
			input: "anox",
			want:  "an ox",
		},
		{
			name:  "multi-byte runes",
			words: []string{"çay", "içmək", "mən"},
			input: "Mənçayiçmək",
			want:  "Mən çay içmək",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seg := New(mustModel(t, tt.words...))
			assert.Equal(t, tt.want, seg.Segment(tt.input))
		})
	}
}

func TestSegmentDefaultCorpus(t *testing.T) {
	t.Parallel()

	seg := defaultSegmenter(t)
	tests := map[string]string{
		"bankofjordan":                        "bank of jordan",
		"Thequickbrownfoxjumpsoverthelazydog": "The quick brown fox jumps over the lazy dog",
		"rustisgreat":                         "rust is great",
		"thisisatest":                         "this is a test",
		"thedogjumpedoverthecat":              "the dog jumped over the cat",
	}
	for in, want := range tests {
		assert.Equal(t, want, seg.Segment(in), in)
	}
}

func TestSegmentTieBreakPrefersShortestWord(t *testing.T) {
	t.Parallel()

	// "ab" alone and "a"+"b" both cost exactly 1.
	lex := fixedLexicon{"ab": 1, "a": 0.5, "b": 0.5}
	assert.Equal(t, "a b", Segment("ab", lex))

	tr := New(lex).Trace("ab")
	assert.Equal(t, Score{Cost: 1}, tr.Cumulative[2])
	assert.Equal(t, 1, tr.Split[2])
}

func TestSegmentPrefersCheaperLongWord(t *testing.T) {
	t.Parallel()

	lex := fixedLexicon{"ab": 0.9, "a": 0.5, "b": 0.5}
	assert.Equal(t, "ab", Segment("ab", lex))
}

func TestSegmentKnownBeatsUnknown(t *testing.T) {
	t.Parallel()

	// A very expensive known word still beats an unknown one.
	lex := fixedLexicon{"ab": 1e300}
	assert.Equal(t, "ab", Segment("ab", lex))
}

func TestSegmentSingleWordCorpus(t *testing.T) {
	t.Parallel()

	// With N == 1 the only word costs -Inf; segmentation must stay well defined.
	seg := New(mustModel(t, "ab"))
	assert.Equal(t, "ab ab", seg.Segment("abab"))
	assert.Equal(t, "ab x", seg.Segment("abx"))
}

func TestSegmentDecomposedInput(t *testing.T) {
	t.Parallel()

	seg := New(mustModel(t, "café", "noir"))
	assert.Equal(t, "cafe\u0301 noir", seg.Segment("cafe\u0301noir"))
	assert.Equal(t, "café noir", seg.Segment("cafénoir"))
	assert.Equal(t, []string{"CAFE\u0301", "noir"}, seg.Words("CAFE\u0301noir"))
}

func TestSegmentEmptyLexiconWindow(t *testing.T) {
	t.Parallel()

	lex := fixedLexicon{}
	assert.Equal(t, "a b c", Segment("abc", lex))
}

func TestTrace(t *testing.T) {
	t.Parallel()

	seg := New(mustModel(t, "jordan", "bank", "of"))
	tr := seg.Trace("bankofjordan")
	require.Len(t, tr.Cumulative, 13)
	require.Len(t, tr.Split, 13)
	assert.Equal(t, Score{}, tr.Cumulative[0])
	assert.Equal(t, 6, tr.Split[12])
	assert.Equal(t, 2, tr.Split[6])
	assert.Equal(t, 4, tr.Split[4])
	assert.Zero(t, tr.Cumulative[12].Unknown)

	empty := seg.Trace("")
	assert.Equal(t, []Score{{}}, empty.Cumulative)
}

func TestScoreLess(t *testing.T) {
	t.Parallel()

	assert.True(t, Score{Unknown: 0, Cost: 100}.Less(Score{Unknown: 1}))
	assert.True(t, Score{Cost: 1}.Less(Score{Cost: 2}))
	assert.False(t, Score{Cost: 1}.Less(Score{Cost: 1}))
	assert.False(t, Score{Unknown: 2}.Less(Score{Unknown: 1, Cost: 50}))
}

func TestWords(t *testing.T) {
	t.Parallel()

	seg := New(mustModel(t, "jordan", "bank", "of"))
	assert.Equal(t, []string{"bank", "of", "jordan"}, seg.Words("bankofjordan"))
	assert.Nil(t, seg.Words(""))
}

func TestSegmentProperties(t *testing.T) {
	t.Parallel()

	seg := defaultSegmenter(t)
	inputs := []string{
		"Thequickbrownfoxjumpsoverthelazydog",
		"helloworld",
		"qqqzzzthe",
		"ÇayİçmekGüzel",
		"a",
		"supercalifragilisticexpialidocious",
	}
	maxLen := mustModelDefault(t).MaxWordLength()

	for _, in := range inputs {
		first := seg.Segment(in)
		assert.Equal(t, first, seg.Segment(in), "deterministic %q", in)
		assert.Equal(t, in, strings.ReplaceAll(first, " ", ""), "coverage %q", in)
		for _, w := range seg.Words(in) {
			assert.LessOrEqual(t, utf8.RuneCountInString(w), maxLen, "window %q", w)
		}
	}
}

func TestSegmentIdempotentOnSegmentedText(t *testing.T) {
	t.Parallel()

	seg := defaultSegmenter(t)
	for _, sentence := range []string{
		"the quick brown fox jumps over the lazy dog",
		"hello world",
		"bank of jordan",
	} {
		joined := strings.ReplaceAll(sentence, " ", "")
		assert.Equal(t, sentence, seg.Segment(joined))
	}
}

func mustModelDefault(t testing.TB) *costmodel.Model {
	t.Helper()
	words, err := corpus.Default()
	require.NoError(t, err)
	return mustModel(t, words...)
}

func BenchmarkSegment(b *testing.B) {
	seg := defaultSegmenter(b)
	for i := 0; i < b.N; i++ {
		seg.Segment("Thequickbrownfoxjumpsoverthelazydog")
	}
}
