package model

import "time"

// Processing stages for a media item, in pipeline order.
const (
	StageIngested    = "ingested"
	StageCaptured    = "captured"
	StageTranscribed = "transcribed"
	StageAnalyzed    = "analyzed"
)

// MediaItem represents one ingested video and its derived artifacts
type MediaItem struct {
	ID               int64     `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	URL              string    `json:"url" db:"url"`
	Author           string    `json:"author" db:"author"`
	DurationMinutes  float64   `json:"duration_minutes" db:"duration_minutes"` // duration in minutes
	Stage            string    `json:"stage" db:"stage"`
	Summary          *string   `json:"summary,omitempty" db:"summary"`
	Insights         *string   `json:"insights,omitempty" db:"insights"`
	Tools            *string   `json:"tools,omitempty" db:"tools"`
	CounterIntuitive *string   `json:"counter_intuitive,omitempty" db:"counter_intuitive"`
	ChatHistory      []byte    `json:"-" db:"chat_history"` // opaque serialized chat turns
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// WordTiming is a single token with millisecond offsets from the
// transcription provider. Sequences carry non-decreasing start times.
type WordTiming struct {
	Text    string `json:"text"`
	StartMS int64  `json:"start"`
	EndMS   int64  `json:"end"`
}

// CaptionCue is one timed subtitle entry. Start and End are caption clock
// strings in HH:MM:SS.mmm form.
type CaptionCue struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// Transcript holds both textual forms derived from one word-timing sequence.
type Transcript struct {
	PlainText string       `json:"plain_text"`
	Cues      []CaptionCue `json:"cues"`
}

// AnalysisKind identifies one of the fixed analysis tasks.
type AnalysisKind string

const (
	AnalysisSummary          AnalysisKind = "summary"
	AnalysisInsights         AnalysisKind = "insights"
	AnalysisTools            AnalysisKind = "tools"
	AnalysisCounterIntuitive AnalysisKind = "counter_intuitive"
)

// AllAnalysisKinds lists every analysis task in the order batch runs use.
func AllAnalysisKinds() []AnalysisKind {
	return []AnalysisKind{AnalysisSummary, AnalysisInsights, AnalysisTools, AnalysisCounterIntuitive}
}

// AnalysisResult is the output of one analysis task applied to one media item.
type AnalysisResult struct {
	Kind AnalysisKind `json:"kind"`
	Text string       `json:"text"`
}
