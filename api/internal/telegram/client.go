package telegram

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/handle"
	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/vision"
)

// Client talks to the cv-server and llm-server HTTP endpoints.
type Client struct {
	cv  *resty.Client
	llm *resty.Client
}

func NewClient(cvURL, llmURL string) *Client {
	return &Client{
		cv:  resty.New().SetBaseURL(strings.TrimRight(cvURL, "/")).SetTimeout(120 * time.Second),
		llm: resty.New().SetBaseURL(strings.TrimRight(llmURL, "/")).SetTimeout(180 * time.Second),
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// Segment posts the image to the segment endpoint, optionally filtered to a
// target label.
func (c *Client) Segment(ctx context.Context, img []byte, target string) (vision.Result, error) {
	var (
		out    vision.Result
		apiErr errorBody
	)
	resp, err := c.cv.R().
		SetContext(ctx).
		SetBody(handle.SegmentRequest{
			Image:  base64.StdEncoding.EncodeToString(img),
			Target: target,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/segment")
	if err != nil {
		return vision.Result{}, err
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return vision.Result{}, fmt.Errorf("segment: %s", apiErr.Error)
		}
		return vision.Result{}, fmt.Errorf("segment: status %d", resp.StatusCode())
	}
	return out, nil
}

// Ask posts the prompt to the llm endpoint and returns the reply.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	var (
		out    handle.LLMResponse
		apiErr errorBody
	)
	resp, err := c.llm.R().
		SetContext(ctx).
		SetBody(handle.LLMRequest{Prompt: prompt}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/llm")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return "", fmt.Errorf("llm: %s", apiErr.Error)
		}
		return "", fmt.Errorf("llm: status %d", resp.StatusCode())
	}
	return out.Response, nil
}

// Health pings both servers.
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.cv.R().SetContext(ctx).Get("/healthz"); err != nil {
		return fmt.Errorf("cv-server: %w", err)
	}
	if _, err := c.llm.R().SetContext(ctx).Get("/healthz"); err != nil {
		return fmt.Errorf("llm-server: %w", err)
	}
	return nil
}
