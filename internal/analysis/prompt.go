package analysis

import (
	"fmt"

	"github.com/takeru0219/factiva-fetcher/internal/models"
)

const systemPrompt = "You are an assistant that analyzes news articles."

const promptTemplate = `Analyze the following news article and extract:
1. Main topics (up to 3)
2. Sentiment (positive / neutral / negative)
3. Key facts and figures
4. Related industries and companies
5. Summary (100 words or less)

Title: %s
Source: %s
Date: %s

Body:
%s
`

// BuildPrompt renders the fixed analysis prompt for one document.
func BuildPrompt(doc models.Document) string {
	return fmt.Sprintf(promptTemplate, doc.Title, doc.Source, doc.PublicationDate, doc.Body)
}
