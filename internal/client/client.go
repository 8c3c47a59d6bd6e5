package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/maheshsundaram/gemini-voice-input/internal/domain"
)

const requestTimeout = 10 * time.Minute

// Client posts audio artifacts to the transcription gateway.
type Client struct {
	baseURL    string
	token      string // optional caller credential forwarded to the gateway
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Transcribe uploads one artifact and returns the transcribed text. The
// artifact is consumed by exactly this one call; no retry is attempted.
func (c *Client) Transcribe(ctx context.Context, artifact domain.AudioArtifact) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("audio_file", "recording.webm")
	if err != nil {
		return "", fmt.Errorf("create multipart file: %w", err)
	}

	if _, err := part.Write(artifact.Bytes); err != nil {
		return "", fmt.Errorf("write audio data: %w", err)
	}

	if c.token != "" {
		if err := writer.WriteField("gemini_api_token", c.token); err != nil {
			return "", fmt.Errorf("write token field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/transcribe", body)
	if err != nil {
		return "", fmt.Errorf("create transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", decodeGatewayError(resp)
	}

	var payload struct {
		Transcription string `json:"transcription"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode transcribe response: %w", err)
	}

	return payload.Transcription, nil
}

func decodeGatewayError(resp *http.Response) error {
	var gwErr struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}

	body, _ := io.ReadAll(resp.Body)

	if err := json.Unmarshal(body, &gwErr); err == nil && gwErr.Error != "" {
		if gwErr.Details != "" {
			return fmt.Errorf("gateway error: status %d %s: %s", resp.StatusCode, gwErr.Error, gwErr.Details)
		}
		return fmt.Errorf("gateway error: status %d %s", resp.StatusCode, gwErr.Error)
	}

	return fmt.Errorf("gateway error: status %d body %s", resp.StatusCode, string(body))
}
