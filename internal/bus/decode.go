package bus

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/takeru0219/factiva-fetcher/internal/models"
)

// DecodeDocument unmarshals a consumed message payload into a Document.
// Some transports hand the JSON body over base64-encoded; payloads that are
// not valid JSON are base64-decoded first before giving up.
func DecodeDocument(value []byte) (models.Document, error) {
	data := value
	if !json.Valid(data) {
		if decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(value))); err == nil && json.Valid(decoded) {
			data = decoded
		}
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, fmt.Errorf("decode document payload: %w", err)
	}
	return doc, nil
}
