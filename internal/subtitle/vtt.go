package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mcardoso/vidsage/internal/model"
)

// vttHeader is the fixed first line of the cue file format. Downstream
// tools (players, the chat loader) parse this format byte for byte.
const vttHeader = "WEBVTT"

// WriteVTT writes cues in the on-disk caption format: a header line followed
// by repeated "start --> end" blocks, each with its cue text and a blank
// separator line.
func WriteVTT(w io.Writer, cues []model.CaptionCue) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", vttHeader); err != nil {
		return err
	}
	for _, cue := range cues {
		if _, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n", cue.Start, cue.End, cue.Text); err != nil {
			return err
		}
	}
	return nil
}

// ParseVTT reads the caption file format back into cues. Multi-line cue
// text is joined with single spaces.
func ParseVTT(r io.Reader) ([]model.CaptionCue, error) {
	scanner := bufio.NewScanner(r)

	cues := []model.CaptionCue{}
	var current *model.CaptionCue

	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())

		switch {
		case strings.Contains(text, "-->"):
			if current != nil {
				cues = append(cues, *current)
			}
			times := strings.SplitN(text, "-->", 2)
			current = &model.CaptionCue{
				Start: strings.TrimSpace(times[0]),
				End:   strings.TrimSpace(times[1]),
			}
		case text == "":
			if current != nil {
				cues = append(cues, *current)
				current = nil
			}
		case text == vttHeader:
			// header line, nothing to record
		default:
			if current == nil {
				continue
			}
			if current.Text == "" {
				current.Text = text
			} else {
				current.Text += " " + text
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		cues = append(cues, *current)
	}

	return cues, nil
}

// TrimFraction strips the millisecond fraction from a caption clock string,
// yielding the HH:MM:SS form used in chat context and citations.
func TrimFraction(clock string) string {
	if dot := strings.IndexByte(clock, '.'); dot >= 0 {
		return clock[:dot]
	}
	return clock
}
