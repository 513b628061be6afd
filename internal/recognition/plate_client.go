package recognition

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

	"gatewarden/internal/common"
)

// PlateClient talks to the ALPR service over HTTP. The service detects the
// plate region, runs OCR on it, and returns the recognized text segments
// plus a reference to the annotated debug crop.
type PlateClient struct {
	baseURL string
	client  *http.Client
}

func NewPlateClient(baseURL string, timeout time.Duration) *PlateClient {
	return &PlateClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type plateResponse struct {
	Texts      []string `json:"texts"`
	DebugImage string   `json:"debug_image"`
	Error      string   `json:"error"`
}

func (c *PlateClient) ReadPlate(ctx context.Context, filename string, image []byte) (*PlateResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("plate ocr: build request: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("plate ocr: build request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("plate ocr: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", body)
	if err != nil {
		return nil, fmt.Errorf("plate ocr: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plate ocr: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("plate ocr: read response: %w", err)
	}

	var parsed plateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("plate ocr: decode response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		// The service reports "no plate detected" as a client error.
		msg := parsed.Error
		if msg == "" {
			msg = "no plate detected"
		}
		return nil, common.Wrap(common.ErrPlateUnreadable, "%s", msg)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("plate ocr: unexpected status %d", resp.StatusCode)
	}

	plate := NormalizePlate(parsed.Texts)
	if plate == "" {
		return nil, common.Wrap(common.ErrPlateUnreadable, "empty ocr result")
	}

	return &PlateResult{Plate: plate, DebugImage: parsed.DebugImage}, nil
}

// NormalizePlate joins the OCR text segments into the canonical plate form
// used for store lookups: uppercase with whitespace and separators removed.
func NormalizePlate(texts []string) string {
	var b strings.Builder
	for _, t := range texts {
		for _, r := range t {
			switch r {
			case ' ', '\t', '-', '.':
				continue
			}
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}
