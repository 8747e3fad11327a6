package analysis

import (
	"strings"

	"github.com/takeru0219/factiva-fetcher/internal/models"
)

type section int

const (
	sectionNone section = iota
	sectionTopics
	sectionSentiment
	sectionFacts
	sectionEntities
	sectionSummary
)

const maxTopics = 3

// Extract parses free-form model output into a structured Analysis. It never
// fails: unparseable input yields empty lists and a neutral sentiment, with
// the untouched text kept in RawModelOutput.
//
// The parser is a single forward pass over the lines. Each non-blank line is
// first matched against the section header markers; a matching line switches
// the current section, and the sentiment header line is additionally scanned
// for polarity keywords (positive checked before negative, so positive wins
// when both appear). Non-header lines feed the current section: bullet lines
// append to the topic/fact/entity lists, plain lines accumulate into the
// summary. Lines before the first header are ignored.
func Extract(text string) models.Analysis {
	a := models.Analysis{
		Sentiment:      models.SentimentNeutral,
		RawModelOutput: text,
	}

	current := sectionNone
	var summary strings.Builder

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "topic"):
			current = sectionTopics
		case strings.Contains(lower, "sentiment"):
			current = sectionSentiment
			switch {
			case strings.Contains(lower, "positive"):
				a.Sentiment = models.SentimentPositive
			case strings.Contains(lower, "negative"):
				a.Sentiment = models.SentimentNegative
			default:
				a.Sentiment = models.SentimentNeutral
			}
		case strings.Contains(lower, "fact") || strings.Contains(lower, "figure"):
			current = sectionFacts
		case strings.Contains(lower, "industri") || strings.Contains(lower, "compan") || strings.Contains(lower, "entit"):
			current = sectionEntities
		case strings.Contains(lower, "summary"):
			current = sectionSummary
		default:
			switch current {
			case sectionTopics:
				if item, ok := stripBullet(line); ok {
					a.Topics = append(a.Topics, item)
				}
			case sectionFacts:
				if item, ok := stripBullet(line); ok {
					a.Facts = append(a.Facts, item)
				}
			case sectionEntities:
				if item, ok := stripBullet(line); ok {
					a.RelatedEntities = append(a.RelatedEntities, item)
				}
			case sectionSummary:
				if !strings.HasPrefix(line, "#") {
					summary.WriteString(line)
					summary.WriteString(" ")
				}
			}
		}
	}

	if len(a.Topics) > maxTopics {
		a.Topics = a.Topics[:maxTopics]
	}
	a.Summary = strings.TrimRight(summary.String(), " ")

	return a
}

func stripBullet(line string) (string, bool) {
	for _, marker := range []string{"-", "*", "•"} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}
