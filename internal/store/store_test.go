package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcardoso/vidsage/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndLoad(t *testing.T) {
	s := NewStore(t.TempDir())

	transcript := &model.Transcript{
		PlainText: "Hello world. This is a test transcript.",
		Cues: []model.CaptionCue{
			{Start: "00:00:00.000", End: "00:00:02.000", Text: "Hello world."},
			{Start: "00:00:02.000", End: "00:00:04.500", Text: "This is a test transcript."},
		},
	}

	require.NoError(t, s.Save("My Great Talk", transcript))

	plain, err := s.LoadPlain("My Great Talk")
	require.NoError(t, err)
	assert.Equal(t, transcript.PlainText, plain)

	cues, err := s.LoadCues("My Great Talk")
	require.NoError(t, err)
	assert.Equal(t, transcript.Cues, cues)
}

func TestStore_FuzzyTitleLookup(t *testing.T) {
	s := NewStore(t.TempDir())

	transcript := &model.Transcript{
		PlainText: "content",
		Cues:      []model.CaptionCue{{Start: "00:00:00.000", End: "00:00:01.000", Text: "content"}},
	}
	require.NoError(t, s.Save("Deep Work Explained", transcript))

	tests := []struct {
		name  string
		query string
	}{
		{name: "exact title", query: "Deep Work Explained"},
		{name: "different case", query: "deep work explained"},
		{name: "underscores for spaces", query: "deep_work_explained"},
		{name: "hyphens for spaces", query: "Deep-Work-Explained"},
		{name: "partial title", query: "deep work"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plain, err := s.LoadPlain(tt.query)
			require.NoError(t, err)
			assert.Equal(t, "content", plain)
		})
	}
}

func TestStore_LoadMissingTranscript(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.LoadPlain("does not exist")
	assert.ErrorIs(t, err, ErrTranscriptNotFound)

	_, err = s.LoadCues("does not exist")
	assert.ErrorIs(t, err, ErrTranscriptNotFound)
}

func TestStore_ExactMatchWinsOverPartial(t *testing.T) {
	s := NewStore(t.TempDir())

	short := &model.Transcript{PlainText: "short version"}
	long := &model.Transcript{PlainText: "long version"}
	require.NoError(t, s.Save("Go Talk Extended Edition", long))
	require.NoError(t, s.Save("Go Talk", short))

	plain, err := s.LoadPlain("go talk")
	require.NoError(t, err)
	assert.Equal(t, "short version", plain)
}

func TestStore_FindAudio(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	mediaDir := s.MediaDir()
	require.NoError(t, os.MkdirAll(mediaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "My Great Talk.mp3"), []byte("audio"), 0o644))

	path, err := s.FindAudio("my_great_talk")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(mediaDir, "My Great Talk.mp3"), path)

	_, err = s.FindAudio("unknown talk")
	assert.Error(t, err)
}

func TestStore_ExportAnalysisReport(t *testing.T) {
	s := NewStore(t.TempDir())

	item := &model.MediaItem{
		Title:           "My Great Talk",
		URL:             "https://youtu.be/abc",
		Author:          "Some Channel",
		DurationMinutes: 12.5,
	}
	results := []model.AnalysisResult{
		{Kind: model.AnalysisSummary, Text: "A summary."},
		{Kind: model.AnalysisInsights, Text: "Some insights."},
	}

	path, err := s.ExportAnalysisReport(item, results)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# My Great Talk")
	assert.Contains(t, content, "https://youtu.be/abc")
	assert.Contains(t, content, "## Summary")
	assert.Contains(t, content, "A summary.")
	assert.Contains(t, content, "## Key Insights")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain title", input: "My Talk", want: "My Talk"},
		{name: "slashes replaced", input: "a/b\\c", want: "a_b_c"},
		{name: "reserved punctuation", input: `what? "why": <how>|`, want: "what_ _why__ _how__"},
		{name: "empty becomes untitled", input: "   ", want: "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}
