package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "github.com/mcardoso/vidsage/internal/errors"
	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/subtitle"
)

// ErrTranscriptNotFound is returned when no stored transcript matches a title.
var ErrTranscriptNotFound = apperrors.New(apperrors.CodeNotFound, "transcript not found")

// Store manages transcript and report files under a working directory.
// Transcripts live in <workDir>/transcripts as paired .txt/.vtt files;
// reports go to <workDir>/reports.
type Store struct {
	workDir string
}

// NewStore creates a new Store rooted at workDir
func NewStore(workDir string) *Store {
	return &Store{workDir: workDir}
}

// TranscriptsDir returns the directory holding transcript files
func (s *Store) TranscriptsDir() string {
	return filepath.Join(s.workDir, "transcripts")
}

// ReportsDir returns the directory holding exported analysis reports
func (s *Store) ReportsDir() string {
	return filepath.Join(s.workDir, "reports")
}

// MediaDir returns the directory holding downloaded audio files
func (s *Store) MediaDir() string {
	return filepath.Join(s.workDir, "media")
}

// Save writes both transcript forms for a title: the plain text as
// <title>.txt and the cues as <title>.vtt. Existing files are overwritten.
func (s *Store) Save(title string, transcript *model.Transcript) error {
	dir := s.TranscriptsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to create transcripts directory")
	}

	base := SanitizeFilename(title)

	txtPath := filepath.Join(dir, base+".txt")
	if err := os.WriteFile(txtPath, []byte(transcript.PlainText), 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to write plain transcript")
	}

	var vtt strings.Builder
	if err := subtitle.WriteVTT(&vtt, transcript.Cues); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode caption transcript")
	}
	vttPath := filepath.Join(dir, base+".vtt")
	if err := os.WriteFile(vttPath, []byte(vtt.String()), 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to write caption transcript")
	}

	return nil
}

// LoadPlain reads the plain-text transcript whose filename fuzzily matches title
func (s *Store) LoadPlain(title string) (string, error) {
	path, err := s.findTranscript(title, ".txt")
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to read plain transcript")
	}
	return string(data), nil
}

// LoadCues reads and parses the caption transcript whose filename fuzzily
// matches title
func (s *Store) LoadCues(title string) ([]model.CaptionCue, error) {
	path, err := s.findTranscript(title, ".vtt")
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to read caption transcript")
	}
	defer f.Close()
	return subtitle.ParseVTT(f)
}

// FindAudio locates the audio file for a title under the media directory.
// Matching uses the same fuzzy rules as transcript lookup.
func (s *Store) FindAudio(title string) (string, error) {
	path, err := findByTitle(s.MediaDir(), title, ".mp3")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeNotFound, "audio file not found")
	}
	return path, nil
}

// ExportAnalysisReport writes a timestamped markdown report combining all
// analysis results for one media item. Returns the written path.
func (s *Store) ExportAnalysisReport(item *model.MediaItem, results []model.AnalysisResult) (string, error) {
	dir := s.ReportsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to create reports directory")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", item.Title)
	fmt.Fprintf(&b, "- URL: %s\n", item.URL)
	if item.Author != "" {
		fmt.Fprintf(&b, "- Author: %s\n", item.Author)
	}
	if item.DurationMinutes > 0 {
		fmt.Fprintf(&b, "- Duration: %.1f minutes\n", item.DurationMinutes)
	}
	b.WriteString("\n")

	for _, result := range results {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", reportHeading(result.Kind), result.Text)
	}

	name := fmt.Sprintf("%s_%s.md", SanitizeFilename(item.Title), time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to write analysis report")
	}
	return path, nil
}

func reportHeading(kind model.AnalysisKind) string {
	switch kind {
	case model.AnalysisSummary:
		return "Summary"
	case model.AnalysisInsights:
		return "Key Insights"
	case model.AnalysisTools:
		return "Tools & Resources"
	case model.AnalysisCounterIntuitive:
		return "Counter-Intuitive Points"
	default:
		return string(kind)
	}
}

func (s *Store) findTranscript(title, ext string) (string, error) {
	path, err := findByTitle(s.TranscriptsDir(), title, ext)
	if err != nil {
		return "", ErrTranscriptNotFound
	}
	return path, nil
}

// findByTitle scans dir for the first file (in sorted order) with the given
// extension whose normalized name contains the normalized title, or matches
// it exactly. Exact matches win over substring matches.
func findByTitle(dir, title, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	want := normalizeTitle(title)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var partial string
	for _, name := range names {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		got := normalizeTitle(stem)
		if got == want {
			return filepath.Join(dir, name), nil
		}
		if partial == "" && (strings.Contains(got, want) || strings.Contains(want, got)) {
			partial = name
		}
	}
	if partial != "" {
		return filepath.Join(dir, partial), nil
	}
	return "", os.ErrNotExist
}

// normalizeTitle lowercases and strips separators so "My Talk", "my_talk"
// and "my-talk" all compare equal.
func normalizeTitle(title string) string {
	lower := strings.ToLower(title)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, lower)
}

// SanitizeFilename replaces characters that are unsafe in filenames
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		"\x00", "_",
	)
	sanitized := strings.TrimSpace(replacer.Replace(name))
	if sanitized == "" {
		return "untitled"
	}
	return sanitized
}
