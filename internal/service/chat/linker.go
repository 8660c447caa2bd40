package chat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/subtitle"
)

// timestampPattern matches bracketed citations like [00:12:34]
var timestampPattern = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}\]`)

// LinkTimestamps rewrites bracketed timestamp citations into markdown links
// that jump to that second of the video. Only stamps matching the start of a
// known cue are rewritten; anything else stays untouched. Already-linked
// citations (bracket followed by a parenthesis) are skipped, so the rewrite
// is idempotent.
func LinkTimestamps(content string, cues []model.CaptionCue, videoURL string) string {
	if len(cues) == 0 || content == "" {
		return content
	}

	known := make(map[string]bool, len(cues))
	for _, cue := range cues {
		known[subtitle.TrimFraction(cue.Start)] = true
	}

	matches := timestampPattern.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return content
	}

	var b strings.Builder
	b.Grow(len(content) + len(matches)*len(videoURL))

	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(content[last:start])
		last = end

		stamp := content[start+1 : end-1]
		alreadyLinked := end < len(content) && content[end] == '('
		if alreadyLinked || !known[stamp] {
			b.WriteString(content[start:end])
			continue
		}

		seconds, err := subtitle.ClockToSeconds(stamp)
		if err != nil {
			b.WriteString(content[start:end])
			continue
		}
		fmt.Fprintf(&b, "[%s](%s&t=%d)", stamp, videoURL, seconds)
	}
	b.WriteString(content[last:])

	return b.String()
}
