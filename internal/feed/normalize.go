package feed

import "github.com/takeru0219/factiva-fetcher/internal/models"

// Normalize maps a raw provider document onto the canonical shape. Providers
// disagree on field names (id/documentId, title/headline, body/text,
// source/publication); every lookup falls back through the known variants and
// defaults to empty. The full raw payload is preserved on the document.
func Normalize(raw map[string]any) models.Document {
	return models.Document{
		ID:              firstString(raw, "id", "documentId"),
		Title:           firstString(raw, "title", "headline"),
		Body:            firstString(raw, "body", "text"),
		Source:          firstString(raw, "source", "publication"),
		PublicationDate: firstString(raw, "publicationDate", "publication_date"),
		URL:             firstString(raw, "url"),
		Metadata: models.Metadata{
			Language:  firstString(raw, "language"),
			Subjects:  stringSlice(raw["subjects"]),
			Companies: stringSlice(raw["companies"]),
			Regions:   stringSlice(raw["regions"]),
		},
		Raw: raw,
	}
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
