package models

// Sentiment values produced by analysis.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Analysis is the structured result extracted from model output for one document.
type Analysis struct {
	Topics          []string `json:"topics"`
	Sentiment       string   `json:"sentiment"`
	Facts           []string `json:"facts"`
	RelatedEntities []string `json:"related_entities"`
	Summary         string   `json:"summary"`
	RawModelOutput  string   `json:"raw_analysis,omitempty"`
	IsFallback      bool     `json:"is_fallback,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Outcome records the independent per-sink results of processing one document.
type Outcome struct {
	DocumentID string
	AnalysisOK bool
	NotifyOK   bool
	StoreOK    bool
}
