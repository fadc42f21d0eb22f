// Package report renders an analysis result as a plain-text report.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/maastricht-university/accent-pipeline/accent"
)

const TimeLayout = "2006-01-02 15:04:05"

const hiringNotes = `HIRING EVALUATION NOTES
----------------------
- High confidence scores (80%+) indicate reliable accent classification
- Medium confidence scores (60-79%) suggest accent may have mixed characteristics
- Low confidence scores (<60%) may indicate unclear audio or mixed accents
- Consider audio quality and speaking pace when interpreting results

This analysis is intended as a supplementary tool for hiring evaluation.
Final decisions should incorporate multiple assessment methods.
`

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "%s\n%s\n", title, strings.Repeat("-", len(title)))
}

// Render formats res. The output depends only on res and generatedAt.
func Render(res accent.AnalysisResult, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("ACCENT ANALYSIS REPORT\n")
	b.WriteString("=====================\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format(TimeLayout))

	section(&b, "RESULTS SUMMARY")
	fmt.Fprintf(&b, "Detected Accent: %s\n", res.Accent)
	fmt.Fprintf(&b, "Confidence Score: %.1f%%\n", res.Confidence)
	fmt.Fprintf(&b, "English Proficiency: %.1f%%\n\n", res.Proficiency)

	section(&b, "ANALYSIS DETAILS")
	summary := res.Summary
	if summary == "" {
		summary = "No additional details available."
	}
	b.WriteString(summary + "\n\n")

	if res.Transcript != "" {
		section(&b, "TRANSCRIPT")
		b.WriteString(res.Transcript + "\n\n")
	}

	section(&b, "TECHNICAL INFORMATION")
	for _, p := range res.Details.Pairs() {
		fmt.Fprintf(&b, "%s: %s\n", p.Key, p.Value)
	}
	b.WriteString("\n")

	b.WriteString(hiringNotes)
	return b.String()
}
