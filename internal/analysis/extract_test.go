package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takeru0219/factiva-fetcher/internal/analysis"
	"github.com/takeru0219/factiva-fetcher/internal/models"
)

const sampleOutput = `Here is the analysis you requested.

1. Main topics:
- Monetary policy
- Inflation

2. Sentiment: negative

3. Key facts and figures:
- Rates held at 5.5%
- CPI rose 3.2% year over year

4. Related industries and companies:
- Banking
- Acme Corp

5. Summary:
The central bank held rates steady.
Inflation remains above target.
`

func TestExtractFullResponse(t *testing.T) {
	a := analysis.Extract(sampleOutput)

	require.Equal(t, []string{"Monetary policy", "Inflation"}, a.Topics)
	require.Equal(t, models.SentimentNegative, a.Sentiment)
	require.Equal(t, []string{"Rates held at 5.5%", "CPI rose 3.2% year over year"}, a.Facts)
	require.Equal(t, []string{"Banking", "Acme Corp"}, a.RelatedEntities)
	require.Equal(t, "The central bank held rates steady. Inflation remains above target.", a.Summary)
	require.Equal(t, sampleOutput, a.RawModelOutput)
	require.False(t, a.IsFallback)
	require.Empty(t, a.Error)
}

func TestExtractEmptyInput(t *testing.T) {
	a := analysis.Extract("")

	require.Equal(t, models.SentimentNeutral, a.Sentiment)
	require.Empty(t, a.Topics)
	require.Empty(t, a.Facts)
	require.Empty(t, a.RelatedEntities)
	require.Empty(t, a.Summary)
	require.Equal(t, "", a.RawModelOutput)
}

func TestExtractUnparseableInput(t *testing.T) {
	a := analysis.Extract("just some prose with no section headers at all")

	require.Equal(t, models.SentimentNeutral, a.Sentiment)
	require.Empty(t, a.Topics)
	require.Empty(t, a.Summary)
}

func TestExtractSentiment(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "positive", line: "Sentiment: positive", want: models.SentimentPositive},
		{name: "negative", line: "Sentiment: Negative outlook", want: models.SentimentNegative},
		{name: "unrecognized defaults neutral", line: "Sentiment: mixed", want: models.SentimentNeutral},
		{name: "positive wins over negative", line: "Sentiment: positive with negative undertones", want: models.SentimentPositive},
		{name: "case insensitive", line: "SENTIMENT: POSITIVE", want: models.SentimentPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analysis.Extract(tt.line)
			require.Equal(t, tt.want, a.Sentiment)
		})
	}
}

func TestExtractTruncatesTopicsToThree(t *testing.T) {
	text := `Main topics:
- one
- two
- three
- four
- five
`
	a := analysis.Extract(text)
	require.Equal(t, []string{"one", "two", "three"}, a.Topics)
}

func TestExtractIgnoresLinesBeforeFirstHeader(t *testing.T) {
	text := `- stray bullet before any header
Main topics:
- energy
`
	a := analysis.Extract(text)
	require.Equal(t, []string{"energy"}, a.Topics)
}

func TestExtractBulletMarkers(t *testing.T) {
	text := `Main topics:
- dash
* star
• dot
`
	a := analysis.Extract(text)
	require.Equal(t, []string{"dash", "star", "dot"}, a.Topics)
}

func TestExtractSummarySkipsHeaderLikeLines(t *testing.T) {
	text := `Summary:
First part.
# heading noise
Second part.
`
	a := analysis.Extract(text)
	require.Equal(t, "First part. Second part.", a.Summary)
}
