package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const chatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// Message is one turn of an interview transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is an assistant turn plus its provenance, so callers can record
// whether the answer came from the live API or the scripted interviewer.
type Reply struct {
	Content string
	IsMock  bool
	Source  string // "openai" or "script"
	Model   string
}

// Preferences is the structured record extracted from a transcript.
type Preferences struct {
	Budget          string   `json:"budget"`
	CuisineTypes    []string `json:"cuisine_types"`
	Location        string   `json:"location"`
	Allergies       []string `json:"allergies"`
	Atmosphere      string   `json:"atmosphere"`
	SpecialRequests []string `json:"special_requests"`
}

// Extractor drives the interview conversation and distills preferences
// from it. Implementations must degrade rather than fail: an interview
// should never be blocked on an upstream outage.
type Extractor interface {
	Chat(ctx context.Context, transcript []Message) (Reply, error)
	Extract(ctx context.Context, transcript []Message) (Preferences, error)
}

// Client talks to the OpenAI chat completions API and falls back to the
// scripted interviewer when no key is configured or a call fails.
type Client struct {
	apiKey string
	model  string
	hc     *http.Client
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{apiKey: apiKey, model: model, hc: &http.Client{Timeout: timeout}}
}

func (c *Client) Chat(ctx context.Context, transcript []Message) (Reply, error) {
	if !c.live() {
		return Reply{Content: scriptedReply(transcript), IsMock: true, Source: "script"}, nil
	}
	content, err := c.complete(ctx, transcript, 500, 0.7)
	if err != nil {
		slog.Warn("chat completion failed, using scripted interviewer", "error", err)
		return Reply{Content: scriptedReply(transcript), IsMock: true, Source: "script"}, nil
	}
	return Reply{Content: content, Source: "openai", Model: c.model}, nil
}

func (c *Client) Extract(ctx context.Context, transcript []Message) (Preferences, error) {
	if !c.live() {
		return scriptedPreferences(transcript), nil
	}
	prompt := analysisPrompt(transcript)
	content, err := c.complete(ctx, []Message{{Role: "user", Content: prompt}}, 300, 0.3)
	if err != nil {
		slog.Warn("preference extraction failed, using keyword analysis", "error", err)
		return scriptedPreferences(transcript), nil
	}
	var prefs Preferences
	if err := json.Unmarshal([]byte(content), &prefs); err != nil {
		return scriptedPreferences(transcript), nil
	}
	return prefs, nil
}

func (c *Client) live() bool {
	return strings.HasPrefix(c.apiKey, "sk-")
}

func (c *Client) complete(ctx context.Context, msgs []Message, maxTokens int, temperature float64) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"model":       c.model,
		"messages":    msgs,
		"max_tokens":  maxTokens,
		"temperature": temperature,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chatCompletionsURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions: %d %s", resp.StatusCode, string(respBody))
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completions: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

func analysisPrompt(transcript []Message) string {
	var b strings.Builder
	b.WriteString(`Analyze the interview below and return the diner's restaurant preferences as JSON with keys: budget (e.g. "1000-2000"), cuisine_types (list), location, allergies (list), atmosphere, special_requests (list).

Interview:
`)
	for _, m := range transcript {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}
