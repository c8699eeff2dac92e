package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/danbahadur2060/event/internal/logger"
)

var ErrNotConfigured = errors.New("ai api key not configured")

// EventDetails is what the generator knows about the event it writes about.
type EventDetails struct {
	Title       string
	Date        string // YYYY-MM-DD
	Time        string // HH:mm
	Location    string
	Venue       string
	Description string
}

// EmailDraft is a generated reminder email.
type EmailDraft struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Client generates reminder email copy through the Gemini REST API. A
// generation failure never fails the caller: it falls back to a plain
// template so reminders still go out.
type Client struct {
	http    *http.Client
	baseURL string
	model   string
	apiKey  string
	logger  *logger.Logger
}

func NewClient(httpClient *http.Client, baseURL, model, apiKey string, log *logger.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		logger:  log,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// GenerateReminderEmail asks the model for subject/html/text copy and falls
// back to FallbackDraft when the model is unavailable or returns garbage.
func (c *Client) GenerateReminderEmail(ctx context.Context, ev EventDetails) EmailDraft {
	draft := FallbackDraft(ev)

	text, err := c.generate(ctx, reminderPrompt(ev))
	if err != nil {
		c.logger.Warn("AI", fmt.Sprintf("email generation failed, using fallback: %v", err))
		return draft
	}

	match := jsonBlock.FindString(text)
	if match == "" {
		c.logger.Warn("AI", "model response contained no JSON, using fallback")
		return draft
	}

	var generated EmailDraft
	if err := json.Unmarshal([]byte(match), &generated); err != nil {
		c.logger.Warn("AI", fmt.Sprintf("model response was not valid JSON, using fallback: %v", err))
		return draft
	}

	if generated.Subject != "" {
		draft.Subject = generated.Subject
	}
	if generated.HTML != "" {
		draft.HTML = generated.HTML
	}
	if generated.Text != "" {
		draft.Text = generated.Text
	}
	return draft
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation service error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Error("AI", fmt.Sprintf("Failed to close generation response body: %v", err))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation service returned status: %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("generation response had no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func reminderPrompt(ev EventDetails) string {
	venue := ""
	if ev.Venue != "" {
		venue = ", " + ev.Venue
	}
	return fmt.Sprintf(`Write a concise reminder email about an upcoming event.
- Title: %s
- Date: %s
- Time: %s
- Location: %s%s
- Audience: Attendee
- Tone: friendly
- Include: brief agenda highlight, what to bring (if applicable), and a clear CTA to view details or manage booking.
Return JSON with keys: subject, html, text.`, ev.Title, ev.Date, ev.Time, ev.Location, venue)
}

// FallbackDraft is the deterministic template used when generation is not
// possible.
func FallbackDraft(ev EventDetails) EmailDraft {
	venue := ""
	if ev.Venue != "" {
		venue = ", " + ev.Venue
	}
	return EmailDraft{
		Subject: fmt.Sprintf("Reminder: %s", ev.Title),
		HTML: fmt.Sprintf("<p>Hi there,</p><p>This is a reminder for <strong>%s</strong> on <strong>%s</strong> at <strong>%s</strong> in %s%s.</p><p>See details and manage your booking on our site.</p>",
			ev.Title, ev.Date, ev.Time, ev.Location, venue),
		Text: fmt.Sprintf("Reminder: %s on %s at %s in %s%s.", ev.Title, ev.Date, ev.Time, ev.Location, venue),
	}
}
