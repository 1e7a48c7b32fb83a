package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	defaultGraphAPIBase = "https://graph.facebook.com"
	defaultAPIVersion   = "v20.0"
	defaultHTTPTimeout  = 10 * time.Second
)

// ErrMediaUpload indicates the two-step media send failed at the upload
// stage; the message is not sent at all.
var ErrMediaUpload = errors.New("whatsapp: media upload failed")

// Client sends messages through the WhatsApp Cloud API.
type Client struct {
	token        string
	phoneID      string
	apiVersion   string
	graphAPIBase string
	httpClient   *http.Client
}

// NewClient creates a Cloud API client for the given bot phone number.
func NewClient(token, phoneID, apiVersion string) *Client {
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	return &Client{
		token:        token,
		phoneID:      phoneID,
		apiVersion:   apiVersion,
		graphAPIBase: defaultGraphAPIBase,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// SetGraphAPIBase overrides the Graph API base URL (useful for testing).
func (c *Client) SetGraphAPIBase(base string) {
	c.graphAPIBase = base
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, text string, previewLinks bool) (*SendResponse, error) {
	return c.send(ctx, SendRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &SendText{PreviewURL: previewLinks, Body: text},
	})
}

// SendImage sends an already uploaded image by media handle.
func (c *Client) SendImage(ctx context.Context, to, mediaID, caption string) (*SendResponse, error) {
	return c.send(ctx, SendRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "image",
		Image:            &SendImage{ID: mediaID, Caption: caption},
	})
}

// SendLocation sends a map pin.
func (c *Client) SendLocation(ctx context.Context, to string, loc SendLocation) (*SendResponse, error) {
	return c.send(ctx, SendRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "location",
		Location:         &loc,
	})
}

// SendInteractiveList sends a selectable list message.
func (c *Client) SendInteractiveList(ctx context.Context, to string, interactive SendInteractive) (*SendResponse, error) {
	interactive.Type = "list"
	return c.send(ctx, SendRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive:      &interactive,
	})
}

// UploadMedia uploads binary content and returns the media handle to send
// by. Failures map to ErrMediaUpload so callers can refuse partial sends.
func (c *Client) UploadMedia(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}
	if err := writer.WriteField("type", mimeType); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}

	url := fmt.Sprintf("%s/%s/%s/media", c.graphAPIBase, c.apiVersion, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}

	var uploaded UploadResponse
	if err := json.Unmarshal(body, &uploaded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}
	if uploaded.Error != nil {
		return "", fmt.Errorf("%w: API error %d: %s", ErrMediaUpload, uploaded.Error.Code, uploaded.Error.Message)
	}
	if resp.StatusCode != http.StatusOK || uploaded.ID == "" {
		return "", fmt.Errorf("%w: unexpected status %d", ErrMediaUpload, resp.StatusCode)
	}
	return uploaded.ID, nil
}

func (c *Client) send(ctx context.Context, payload SendRequest) (*SendResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.graphAPIBase, c.apiVersion, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: send message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: read response: %w", err)
	}

	var sendResp SendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return nil, fmt.Errorf("whatsapp: unmarshal response: %w", err)
	}

	if sendResp.Error != nil {
		return &sendResp, fmt.Errorf("whatsapp: API error %d: %s", sendResp.Error.Code, sendResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return &sendResp, fmt.Errorf("whatsapp: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return &sendResp, nil
}
