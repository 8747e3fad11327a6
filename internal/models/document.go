package models

// Metadata carries the classification fields the feed attaches to a document.
type Metadata struct {
	Language  string   `json:"language"`
	Subjects  []string `json:"subjects"`
	Companies []string `json:"companies"`
	Regions   []string `json:"regions"`
}

// Document is the canonical record produced from a raw feed item.
// Raw keeps the untouched provider payload for audit and fallback.
type Document struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Body            string         `json:"body"`
	Source          string         `json:"source"`
	PublicationDate string         `json:"publication_date"`
	URL             string         `json:"url"`
	Metadata        Metadata       `json:"metadata"`
	Raw             map[string]any `json:"raw_data,omitempty"`
}
