package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maheshsundaram/gemini-voice-input/internal/config"
	"github.com/maheshsundaram/gemini-voice-input/internal/domain"
)

const (
	transcribePrompt = "transcribe the following audio"
	requestTimeout   = 10 * time.Minute
)

// Generation parameters applied to every call. Not caller-configurable.
const (
	generationTemperature     = 0.1
	generationMaxOutputTokens = 2048
)

var safetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

const safetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"

// GeminiClient calls the Gemini generateContent API for one credential.
// Build one per caller-supplied token, or one at startup for the server
// default; the credential is never mutated after construction.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient validates the credential and returns a client bound to
// it. A blank or malformed credential fails construction; no request is
// attempted.
func NewGeminiClient(apiKey, model, baseURL string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if strings.ContainsAny(apiKey, " \t\r\n") {
		return nil, errors.New("gemini api key contains whitespace")
	}
	if model == "" {
		model = config.DefaultModel()
	}
	if baseURL == "" {
		baseURL = config.DefaultBaseURL()
	}

	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Transcribe sends one audio artifact for transcription and returns the
// transcribed text. A single attempt; upstream failures are returned to
// the caller unretried. An empty transcription is not an error.
func (c *GeminiClient) Transcribe(ctx context.Context, artifact domain.AudioArtifact) (string, error) {
	payload := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: transcribePrompt},
				{InlineData: &inlineData{
					MIMEType: domain.AudioMIMEType,
					Data:     base64.StdEncoding.EncodeToString(artifact.Bytes),
				}},
			},
		}},
		GenerationConfig: generationConfig{
			Temperature:     generationTemperature,
			MaxOutputTokens: generationMaxOutputTokens,
		},
		SafetySettings: safetySettings(),
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode transcription payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, buf)
	if err != nil {
		return "", fmt.Errorf("create transcription request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", c.decodeAPIError(resp)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	return strings.TrimSpace(sb.String()), nil
}

func (c *GeminiClient) decodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)

	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("gemini api error: status %d %s message %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
	}

	return fmt.Errorf("gemini api error: status %d body %s", resp.StatusCode, string(body))
}

func safetySettings() []safetySetting {
	settings := make([]safetySetting, 0, len(safetyCategories))
	for _, category := range safetyCategories {
		settings = append(settings, safetySetting{Category: category, Threshold: safetyThreshold})
	}
	return settings
}
