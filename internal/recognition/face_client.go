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
)

// FaceClient talks to the face-recognition service over HTTP. The service
// returns the enrolled identity token (a user or guest id) or the Unknown
// sentinel, with a confidence score and demographic metadata either way.
type FaceClient struct {
	baseURL string
	client  *http.Client
}

func NewFaceClient(baseURL string, timeout time.Duration) *FaceClient {
	return &FaceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *FaceClient) Recognize(ctx context.Context, filename string, image []byte) (*FaceResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("face_image", filename)
	if err != nil {
		return nil, fmt.Errorf("face recognizer: build request: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("face recognizer: build request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("face recognizer: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize", body)
	if err != nil {
		return nil, fmt.Errorf("face recognizer: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face recognizer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face recognizer: unexpected status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("face recognizer: read response: %w", err)
	}

	result := &FaceResult{}
	if err := json.Unmarshal(respBody, result); err != nil {
		return nil, fmt.Errorf("face recognizer: decode response: %w", err)
	}
	if result.ID == "" {
		result.ID = UnknownIdentity
	}
	return result, nil
}
