package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel = "gemini-2.0-flash"
	geminiTimeout      = 60 * time.Second
)

// Gemini calls the Generative Language REST API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewGemini creates a Gemini generator. An empty model falls back to
// DefaultGeminiModel.
func NewGemini(apiKey, model string, logger *slog.Logger) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: geminiTimeout},
		logger:  logger.With("component", "llm", "model", model),
	}
}

// IsConfigured reports whether an API key is present.
func (g *Gemini) IsConfigured() bool {
	return g.apiKey != ""
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (g *Gemini) SetBaseURL(u string) {
	g.baseURL = u
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
}

type geminiBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText implements Generator.
func (g *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, []geminiPart{{Text: prompt}})
}

// GenerateVision implements Generator.
func (g *Gemini) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return g.generate(ctx, []geminiPart{
		{Text: prompt},
		{InlineData: &geminiBlob{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
	})
}

func (g *Gemini) generate(ctx context.Context, parts []geminiPart) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini: missing API key")
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || out.Error != nil {
		msg := resp.Status
		status := ""
		if out.Error != nil {
			msg = out.Error.Message
			status = out.Error.Status
		}
		if resp.StatusCode == http.StatusTooManyRequests ||
			status == "RESOURCE_EXHAUSTED" ||
			strings.Contains(strings.ToLower(msg), "quota") {
			return "", fmt.Errorf("gemini: %s: %w", msg, ErrQuotaExceeded)
		}
		return "", fmt.Errorf("gemini: status %d: %s", resp.StatusCode, msg)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: response carries no candidates")
	}

	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	g.logger.Debug("generation done", "prompt_bytes", len(payload), "output_bytes", len(text))
	return text, nil
}
