package analysis

import (
	apperrors "github.com/mcardoso/vidsage/internal/errors"
	"github.com/mcardoso/vidsage/internal/model"
)

// analysisSystemPrompt is the fixed system instruction for every analysis call
const analysisSystemPrompt = "You are an assistant specialized in content analysis."

const summaryPrompt = `Analyze the provided text and create a bullet-point summary highlighting the main points.
The summary must be clear, concise and well organized.
Format: bulleted list of the relevant points.`

const insightsPrompt = `Analyze the text and identify valuable insights and important takeaways.
Consider:
- Innovative ideas
- Non-obvious connections
- Main lessons learned
- Best practices mentioned
Format: numbered list of insights.`

const toolsPrompt = `Identify every tool, product, service or resource mentioned in the text.
For each item provide:
- Name of the tool/product
- Brief description of its use/purpose
- Context in which it was mentioned
Format: structured list with name and description of each item.`

const counterIntuitivePrompt = `Identify counter-intuitive points or unexpected findings mentioned in the text.
Look for:
- Ideas that challenge common sense
- Surprising discoveries
- Unconventional methods
- Unexpected results
Format: list of counter-intuitive points found.`

// instructionFor returns the analysis instruction for a kind. The switch is
// closed so a new kind cannot silently run without a prompt.
func instructionFor(kind model.AnalysisKind) (string, error) {
	switch kind {
	case model.AnalysisSummary:
		return summaryPrompt, nil
	case model.AnalysisInsights:
		return insightsPrompt, nil
	case model.AnalysisTools:
		return toolsPrompt, nil
	case model.AnalysisCounterIntuitive:
		return counterIntuitivePrompt, nil
	default:
		return "", apperrors.New(apperrors.CodeInvalidArg, "unknown analysis kind: "+string(kind))
	}
}
