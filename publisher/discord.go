// Package publisher delivers the rendered board and the relayed thread image
// to the chat channels.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/samgozman/fin-board/pkg/errlvl"
)

// DiscordPublisher posts messages and file attachments to a Discord
// incoming webhook.
type DiscordPublisher struct {
	WebhookURL string
	client     *http.Client
}

func NewDiscordPublisher(webhookURL string) (*DiscordPublisher, error) {
	if webhookURL == "" {
		return nil, newError(errlvl.FATAL, ErrMissingWebhookURL, nil)
	}
	return &DiscordPublisher{
		WebhookURL: webhookURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// PublishImage posts an image file with a text message as a multipart form.
func (d *DiscordPublisher) PublishImage(ctx context.Context, filename string, image []byte, content string) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("content", content); err != nil {
		return newError(errlvl.ERROR, errMultipartEncoding, err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return newError(errlvl.ERROR, errMultipartEncoding, err)
	}
	if _, err := fw.Write(image); err != nil {
		return newError(errlvl.ERROR, errMultipartEncoding, err)
	}
	if err := mw.Close(); err != nil {
		return newError(errlvl.ERROR, errMultipartEncoding, err)
	}

	return d.post(ctx, mw.FormDataContentType(), &body)
}

// PublishText posts a plain text message.
func (d *DiscordPublisher) PublishText(ctx context.Context, content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return newError(errlvl.ERROR, errRequestCreation, err)
	}
	return d.post(ctx, "application/json", bytes.NewReader(payload))
}

func (d *DiscordPublisher) post(ctx context.Context, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, body)
	if err != nil {
		return newError(errlvl.ERROR, errRequestCreation, err)
	}
	req.Header.Set("Content-Type", contentType)

	res, err := d.client.Do(req) //nolint:bodyclose
	if err != nil {
		return newError(errlvl.ERROR, errRequestFailed, err)
	}
	defer func(b io.ReadCloser) {
		_ = b.Close()
	}(res.Body)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 300))
		return newError(errlvl.ERROR, errBadStatus, fmt.Errorf("status %d: %s", res.StatusCode, string(snippet)))
	}
	return nil
}
