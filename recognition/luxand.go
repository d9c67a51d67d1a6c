package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultLuxandBaseURL = "https://api.luxand.cloud"

// LuxandClient implements Matcher against the Luxand cloud API. Image
// payloads may be an https URL, a data URL, or raw base64.
type LuxandClient struct {
	baseURL    string
	token      string
	collection string
	client     *http.Client
}

func NewLuxandClient(token, collection string) *LuxandClient {
	return &LuxandClient{
		baseURL:    defaultLuxandBaseURL,
		token:      token,
		collection: collection,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Recognize searches enrolled persons for the face in image.
func (c *LuxandClient) Recognize(ctx context.Context, image string) (Result, error) {
	body, contentType, err := buildPhotoForm(image, "photo", nil)
	if err != nil {
		return Result{}, err
	}

	data, err := c.post(ctx, "/photo/search/v2", body, contentType)
	if err != nil {
		return Result{}, err
	}

	// The search endpoint returns an array of matched persons,
	// best match first.
	var matches []struct {
		UUID       string  `json:"uuid"`
		Similarity float64 `json:"similarity"`
	}
	if err := json.Unmarshal(data, &matches); err != nil {
		return Result{}, fmt.Errorf("error decoding recognition response: %w", err)
	}

	if len(matches) > 0 && matches[0].UUID != "" {
		return Result{
			Success:    true,
			FaceID:     matches[0].UUID,
			Confidence: matches[0].Similarity,
		}, nil
	}

	return Result{Success: false, Error: "Face not recognized"}, nil
}

// Register enrolls a new person from image and returns the assigned UUID.
func (c *LuxandClient) Register(ctx context.Context, userID, name string, image string) (string, error) {
	personName := name
	if personName == "" {
		personName = userID
	}
	fields := map[string]string{
		"name":  personName,
		"store": "1",
	}
	if c.collection != "" {
		fields["collections"] = c.collection
	}

	body, contentType, err := buildPhotoForm(image, "photos", fields)
	if err != nil {
		return "", err
	}

	data, err := c.post(ctx, "/v2/person", body, contentType)
	if err != nil {
		return "", err
	}

	var resp struct {
		Status  string `json:"status"`
		UUID    string `json:"uuid"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("error decoding registration response: %w", err)
	}

	if resp.Status != "success" || resp.UUID == "" {
		if resp.Message != "" {
			return "", fmt.Errorf("person registration failed: %s", resp.Message)
		}
		return "", fmt.Errorf("person registration failed")
	}
	return resp.UUID, nil
}

func (c *LuxandClient) post(ctx context.Context, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("token", c.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling recognition service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading recognition response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognition service error: %d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// buildPhotoForm assembles the multipart body. URL payloads go in as a plain
// field; base64 payloads are decoded and attached as a file part.
func buildPhotoForm(image, photoField string, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if strings.HasPrefix(image, "https://") {
		if err := w.WriteField(photoField, image); err != nil {
			return nil, "", err
		}
	} else {
		raw, err := decodeImagePayload(image)
		if err != nil {
			return nil, "", err
		}
		part, err := w.CreateFormFile(photoField, "photo.jpg")
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(raw); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func decodeImagePayload(image string) ([]byte, error) {
	payload := image
	// Strip a data URL prefix like "data:image/jpeg;base64,".
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, ","); idx >= 0 {
			payload = payload[idx+1:]
		}
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("image payload is not valid base64: %w", err)
	}
	return raw, nil
}
