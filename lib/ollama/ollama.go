package ollama

import (
	"context"
	"errors"
	"fmt"
	"matchcast-backend/lib/restyutil"
	"matchcast-backend/lib/telemetry"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("matchcast.lib.ollama")

const (
	DefaultBaseUrl = "https://ollama.com"
	DefaultModel   = "gpt-oss:120b-cloud"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var ErrEmptyResponse = errors.New("model returned an empty message")

type Options struct {
	BaseUrl string
	Model   string
	// sent as a bearer token when set, local ollama servers don't need one
	ApiKey  string
	Timeout time.Duration
}

// Client talks to the /api/chat endpoint of an ollama compatible server.
type Client struct {
	http  *resty.Client
	model string
}

func NewClient(opts Options) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute * 2
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseUrl, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetHeader("content-type", "application/json")
	if opts.ApiKey != "" {
		client.SetAuthToken(opts.ApiKey)
	}
	restyutil.Instrument(client, tracer, nil)

	return &Client{http: client, model: opts.Model}
}

func (c *Client) Model() string {
	return c.model
}

// Chat sends the conversation and returns the content of the reply.
func (c *Client) Chat(ctx context.Context, messages ...Message) (string, error) {
	ctx, span := tracer.Start(ctx, "Chat")
	defer span.End()
	span.SetAttributes(
		attribute.String("model", c.model),
		attribute.Int("messages", len(messages)),
	)

	var result chatResponse
	var failure errorResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:    c.model,
			Messages: messages,
			Stream:   false,
		}).
		SetResult(&result).
		SetError(&failure).
		Post("/api/chat")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat request failed")
		return "", fmt.Errorf("chat: %w", err)
	}
	if res.IsError() {
		err = fmt.Errorf("chat: status %d: %s", res.StatusCode(), failure.Error)
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat request rejected")
		return "", err
	}

	content := strings.TrimSpace(result.Message.Content)
	if content == "" {
		span.SetStatus(codes.Error, "empty response")
		return "", ErrEmptyResponse
	}
	return content, nil
}
