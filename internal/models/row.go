package models

import (
	"encoding/json"
	"time"
)

// Row is the flat record written to the analytical store. Field names are the
// contract with downstream consumers and must not change.
type Row struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Body            string   `json:"body"`
	Source          string   `json:"source"`
	PublicationDate string   `json:"publication_date"`
	URL             string   `json:"url"`
	Topics          []string `json:"topics"`
	Sentiment       string   `json:"sentiment"`
	Summary         string   `json:"summary"`
	Facts           []string `json:"facts"`
	RelatedEntities []string `json:"related_entities"`
	Metadata        string   `json:"metadata"`
	ProcessedAt     string   `json:"processed_at"`
}

// NewRow flattens a document and its analysis into the storage shape.
// Metadata is json-encoded; when the document carries no metadata the raw
// provider payload is encoded instead.
func NewRow(doc Document, a Analysis, now time.Time) Row {
	sentiment := a.Sentiment
	if sentiment == "" {
		sentiment = SentimentNeutral
	}

	var meta any = doc.Metadata
	if isEmptyMetadata(doc.Metadata) && doc.Raw != nil {
		meta = doc.Raw
	}
	encoded, err := json.Marshal(meta)
	if err != nil {
		encoded = []byte("{}")
	}

	return Row{
		ID:              doc.ID,
		Title:           doc.Title,
		Body:            doc.Body,
		Source:          doc.Source,
		PublicationDate: doc.PublicationDate,
		URL:             doc.URL,
		Topics:          a.Topics,
		Sentiment:       sentiment,
		Summary:         a.Summary,
		Facts:           a.Facts,
		RelatedEntities: a.RelatedEntities,
		Metadata:        string(encoded),
		ProcessedAt:     now.UTC().Format(time.RFC3339),
	}
}

func isEmptyMetadata(m Metadata) bool {
	return m.Language == "" && len(m.Subjects) == 0 && len(m.Companies) == 0 && len(m.Regions) == 0
}
