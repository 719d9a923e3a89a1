package livescore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// FetchError is returned when a feed responds with a non-2xx status
// (Status set) or cannot be reached at all (Err set).
type FetchError struct {
	Url    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s", e.Url, e.Err.Error())
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Url, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetch performs a single GET against `endpoint` (relative to the base url)
// bounded by the feed timeout. There are no retries.
func (c *Client) Fetch(ctx context.Context, endpoint string) (string, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("endpoint", endpoint))

	ctx, cancel := context.WithTimeout(ctx, c.feedTimeout)
	defer cancel()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		ferr := &FetchError{Url: endpoint, Err: err}
		span.RecordError(ferr)
		span.SetStatus(codes.Error, "request failed")
		return "", ferr
	}
	if res.IsError() || res.StatusCode() < 200 || res.StatusCode() >= 300 {
		ferr := &FetchError{Url: endpoint, Status: res.StatusCode()}
		span.RecordError(ferr)
		span.SetStatus(codes.Error, "unexpected status")
		return "", ferr
	}

	return res.String(), nil
}

func (c *Client) fetchDocument(ctx context.Context, endpoint string) (*goquery.Document, error) {
	body, err := c.Fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewBufferString(body))
}
