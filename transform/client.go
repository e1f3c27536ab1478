package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"bridge-chat/errors"
)

// DefaultVariant is the simulated deficiency when none is configured.
const DefaultVariant = "deuteranopia"

// Client talks to the external color-blindness simulation service:
// POST /simulate-color-blind/{variant} with a multipart "image" field
// holding the image reference; 200 answers {"simulatedImageUrl": ...},
// anything else is a failure with no guaranteed body shape.
type Client struct {
	httpClient *http.Client
	baseURL    string
	variant    string
	log        *slog.Logger
}

func NewClient(baseURL, variant string, timeout time.Duration, log *slog.Logger) *Client {
	if variant == "" {
		variant = DefaultVariant
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		variant:    variant,
		log:        log,
	}
}

func (c *Client) SimulateColorBlind(ctx context.Context, imageURL string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("image", imageURL); err != nil {
		return "", &errors.TransformError{Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &errors.TransformError{Err: err}
	}

	url := fmt.Sprintf("%s/simulate-color-blind/%s", c.baseURL, c.variant)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", &errors.TransformError{Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &errors.TransformError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &errors.TransformError{StatusCode: resp.StatusCode}
	}

	var payload struct {
		SimulatedImageURL string `json:"simulatedImageUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &errors.TransformError{Err: err}
	}
	if payload.SimulatedImageURL == "" {
		return "", &errors.TransformError{Err: fmt.Errorf("empty simulatedImageUrl in response")}
	}

	c.log.Debug("Image simulated", "variant", c.variant, "url", payload.SimulatedImageURL)
	return payload.SimulatedImageURL, nil
}
