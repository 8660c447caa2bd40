package subtitle

import (
	"strings"

	"github.com/mcardoso/vidsage/internal/model"
)

// SegmenterConfig controls how word timings are grouped into caption cues.
type SegmenterConfig struct {
	MaxCharsPerLine  int    // maximum characters per cue text
	MaxCueDurationMS int64  // a cue never spans longer than this
	MinCueDurationMS int64  // cue end is extended up to this when shorter
	StrongPunct      string // sentence-ending punctuation
	WeakPunct        string // clause punctuation, preferred break point
}

// DefaultSegmenterConfig returns the caption constraints used for YouTube
// study transcripts.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		MaxCharsPerLine:  42,
		MaxCueDurationMS: 5000,
		MinCueDurationMS: 1000,
		StrongPunct:      ".!?",
		WeakPunct:        ",;:",
	}
}

// Segmenter converts word-level timing records into readable caption cues.
type Segmenter struct {
	cfg SegmenterConfig
}

// NewSegmenter creates a Segmenter with the given configuration.
func NewSegmenter(cfg SegmenterConfig) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// line accumulates the pending cue during the forward pass
type line struct {
	words   []string
	length  int // character count of the joined text
	startMS int64
	endMS   int64
}

func (l *line) empty() bool { return len(l.words) == 0 }

func (l *line) add(w model.WordTiming) {
	if l.empty() {
		l.startMS = w.StartMS
		l.length = len(w.Text)
	} else {
		l.length += 1 + len(w.Text)
	}
	l.words = append(l.words, w.Text)
	l.endMS = w.EndMS
}

// Segment runs a single forward pass over the word sequence and emits cues.
// A word is never revisited once appended and tokens are never split: a
// single word longer than MaxCharsPerLine becomes its own cue. An empty
// input produces an empty cue sequence.
func (s *Segmenter) Segment(words []model.WordTiming) []model.CaptionCue {
	cues := []model.CaptionCue{}
	if len(words) == 0 {
		return cues
	}

	var pending line
	for i, word := range words {
		// A word that would overflow the line starts a new one instead,
		// so cue text stays within the limit (a lone overlong token is
		// the only exception).
		if !pending.empty() && pending.length+1+len(word.Text) > s.cfg.MaxCharsPerLine {
			cues = append(cues, s.flush(&pending, words, i))
		}

		pending.add(word)

		isLast := i == len(words)-1
		elapsed := word.EndMS - pending.startMS

		switch {
		case isLast:
			cues = append(cues, s.flush(&pending, words, i+1))
		case elapsed > s.cfg.MaxCueDurationMS:
			cues = append(cues, s.flush(&pending, words, i+1))
		case s.endsWithAny(word.Text, s.cfg.StrongPunct) && word.StartMS-pending.startMS > s.cfg.MinCueDurationMS:
			// Sentence ended and the line already carries more than the
			// minimum duration, so a flush cannot produce a stub cue.
			cues = append(cues, s.flush(&pending, words, i+1))
		case s.endsWithAny(word.Text, s.cfg.WeakPunct) && s.nextWordOverflows(&pending, words, i):
			// Break at the clause boundary rather than mid-clause.
			cues = append(cues, s.flush(&pending, words, i+1))
		}
	}

	return cues
}

// nextWordOverflows reports whether appending the following word would
// exceed the character limit.
func (s *Segmenter) nextWordOverflows(l *line, words []model.WordTiming, i int) bool {
	if i+1 >= len(words) {
		return false
	}
	return l.length+1+len(words[i+1].Text) > s.cfg.MaxCharsPerLine
}

// flush converts the pending line into a cue and resets it. nextIdx is the
// index of the first word that will start the next line; the minimum-duration
// extension is clamped at that word's start so cues never overlap.
func (s *Segmenter) flush(l *line, words []model.WordTiming, nextIdx int) model.CaptionCue {
	endMS := l.endMS
	if endMS-l.startMS < s.cfg.MinCueDurationMS {
		target := l.startMS + s.cfg.MinCueDurationMS
		if nextIdx < len(words) && words[nextIdx].StartMS < target {
			target = words[nextIdx].StartMS
		}
		if target > endMS {
			endMS = target
		}
	}

	cue := model.CaptionCue{
		Start: FormatClock(l.startMS),
		End:   FormatClock(endMS),
		Text:  strings.Join(l.words, " "),
	}
	*l = line{}
	return cue
}

func (s *Segmenter) endsWithAny(word, punct string) bool {
	if word == "" {
		return false
	}
	return strings.ContainsRune(punct, rune(word[len(word)-1]))
}
