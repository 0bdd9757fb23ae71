package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"github.com/zapedidos/zapedidos/chatbotengine/domain"
)

// Config holds the messaging gateway connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the external WhatsApp messaging gateway. It implements
// domain.Sender for the chatbot engine.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *fasthttp.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: timeout,
		http:    &fasthttp.Client{},
	}
}

type textMessagePayload struct {
	InstanceID string `json:"instance_id"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
}

type mediaMessagePayload struct {
	InstanceID string `json:"instance_id"`
	Phone      string `json:"phone"`
	ImageURL   string `json:"image_url,omitempty"`
	MediaURL   string `json:"media_url,omitempty"`
	Caption    string `json:"caption,omitempty"`
}

// SendText delivers a text message through the gateway on behalf of the
// given instance. The phone is normalized to gateway format first.
func (c *Client) SendText(ctx context.Context, instance domain.Instance, phone, message string) error {
	payload := textMessagePayload{
		InstanceID: instance.InstanceID,
		Phone:      NormalizePhone(phone),
		Message:    message,
	}
	return c.post(ctx, "/messages/text", instance, payload.Phone, payload)
}

// SendMedia delivers a media message. The gateway's image endpoint takes the
// URL as image_url; the other media endpoints take media_url.
func (c *Client) SendMedia(ctx context.Context, instance domain.Instance, phone string, mediaType domain.ResponseType, mediaURL, caption string) error {
	payload := mediaMessagePayload{
		InstanceID: instance.InstanceID,
		Phone:      NormalizePhone(phone),
		Caption:    caption,
	}
	if mediaType == domain.ResponseImage {
		payload.ImageURL = mediaURL
	} else {
		payload.MediaURL = mediaURL
	}
	return c.post(ctx, "/messages/"+string(mediaType), instance, payload.Phone, payload)
}

func (c *Client) post(ctx context.Context, path string, instance domain.Instance, phone string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode message payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.SetBody(body)

	if err := c.http.DoTimeout(req, resp, c.requestTimeout(ctx)); err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("gateway rejected message: status %d: %s", code, resp.Body())
	}

	logrus.WithFields(logrus.Fields{
		"instance_id": instance.InstanceID,
		"phone":       phone,
	}).Debug("gateway message sent")
	return nil
}

// requestTimeout caps the configured timeout by the context deadline, since
// fasthttp does not take a context itself.
func (c *Client) requestTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

// NormalizePhone strips non-digits and prefixes the Brazilian country code
// for 11-digit local numbers, matching the gateway's expected format.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) == 11 && !strings.HasPrefix(digits, "55") {
		return "55" + digits
	}
	return digits
}
