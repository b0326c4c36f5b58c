// Package ocr extracts text from screenshots via a vision-capable model.
package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"screen-assistant/llm"
)

// ErrNoText is returned when the model reports that the screenshot has no
// readable text. The pipeline surfaces it instead of sending an empty
// question to the answering model.
var ErrNoText = errors.New("no text detected in image")

const extractionPrompt = "Perform OCR on this image. Return ONLY the raw extracted text with:\n" +
	"- No formatting\n" +
	"- No XML/HTML tags\n" +
	"- No markdown\n" +
	"- No explanations\n" +
	"- Preserve line breaks accurately from the visual layout.\n" +
	"If no text found, return 'NO_TEXT_FOUND'"

const noTextMarker = "NO_TEXT_FOUND"

// Client sends screenshots to the vision endpoint and returns extracted text.
type Client struct {
	llm *llm.Client
}

func New(client *llm.Client) *Client {
	return &Client{llm: client}
}

// Extract performs OCR on PNG-encoded image data.
func (c *Client) Extract(ctx context.Context, imageData []byte) (string, error) {
	base64Image := base64.StdEncoding.EncodeToString(imageData)
	imageURL := fmt.Sprintf("data:image/png;base64,%s", base64Image)

	messages := []llm.Message{
		{
			Role: "user",
			Content: []llm.Content{
				{Type: "text", Text: extractionPrompt},
				{Type: "image_url", ImageURL: &llm.ImageURL{URL: imageURL}},
			},
		},
	}

	text, err := c.llm.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	text = cleanExtractedText(strings.TrimSpace(text))
	if text == "" || text == noTextMarker {
		return "", ErrNoText
	}
	return text, nil
}

// cleanExtractedText strips artifacts some vision models append to the
// extracted text.
func cleanExtractedText(text string) string {
	if text == "</image>" {
		return ""
	}
	if strings.HasSuffix(text, "</image>") {
		text = strings.TrimSuffix(text, "</image>")
	}
	return strings.TrimSpace(text)
}
