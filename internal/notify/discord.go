package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/takeru0219/factiva-fetcher/internal/models"
)

// Embed colors keyed by sentiment.
const (
	colorDefault  = 0x0099FF
	colorPositive = 0x00FF00
	colorNegative = 0xFF0000
)

const maxEmbedFacts = 3

// DiscordNotifier posts an analysis embed to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
	log        *slog.Logger
}

func NewDiscordNotifier(webhookURL string, log *slog.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Notify sends the embed. Discord answers 204 on success; anything else,
// including transport errors, is reported as false and logged.
func (n *DiscordNotifier) Notify(ctx context.Context, doc models.Document, a models.Analysis) bool {
	payload, err := json.Marshal(webhookPayload{Embeds: []embed{buildEmbed(doc, a)}})
	if err != nil {
		n.log.Error("marshal discord payload", slog.Any("err", err), slog.String("id", doc.ID))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		n.log.Error("build discord request", slog.Any("err", err), slog.String("id", doc.ID))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error("discord notification failed", slog.Any("err", err), slog.String("id", doc.ID))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		n.log.Error("discord notification rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("id", doc.ID),
		)
		return false
	}

	n.log.Info("notification sent", slog.String("id", doc.ID))
	return true
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      embedFooter  `json:"footer"`
	Fields      []embedField `json:"fields"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func buildEmbed(doc models.Document, a models.Analysis) embed {
	title := doc.Title
	if title == "" {
		title = "Untitled"
	}

	source := doc.Source
	if source == "" {
		source = "unknown"
	}

	color := colorDefault
	switch a.Sentiment {
	case models.SentimentPositive:
		color = colorPositive
	case models.SentimentNegative:
		color = colorNegative
	}

	description := a.Summary
	if description == "" {
		description = "No summary available"
	}

	e := embed{
		Title:       title,
		Description: description,
		URL:         doc.URL,
		Color:       color,
		Timestamp:   doc.PublicationDate,
		Footer:      embedFooter{Text: fmt.Sprintf("Source: %s", source)},
		Fields:      []embedField{},
	}

	if len(a.Topics) > 0 {
		e.Fields = append(e.Fields, embedField{
			Name:   "Topics",
			Value:  strings.Join(a.Topics, ", "),
			Inline: true,
		})
	}

	sentiment := a.Sentiment
	if sentiment == "" {
		sentiment = models.SentimentNeutral
	}
	e.Fields = append(e.Fields, embedField{
		Name:   "Sentiment",
		Value:  sentiment,
		Inline: true,
	})

	if len(a.Facts) > 0 {
		facts := a.Facts
		if len(facts) > maxEmbedFacts {
			facts = facts[:maxEmbedFacts]
		}
		lines := make([]string, 0, len(facts))
		for _, fact := range facts {
			lines = append(lines, "• "+fact)
		}
		e.Fields = append(e.Fields, embedField{
			Name:  "Key facts",
			Value: strings.Join(lines, "\n"),
		})
	}

	if len(a.RelatedEntities) > 0 {
		e.Fields = append(e.Fields, embedField{
			Name:  "Related entities",
			Value: strings.Join(a.RelatedEntities, ", "),
		})
	}

	return e
}
