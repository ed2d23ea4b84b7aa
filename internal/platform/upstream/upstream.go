// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package upstream is the outbound HTTP layer shared by every provider adapter.

Architecture:

  - Timeout: every attempt has a fixed deadline (10s by default).
  - Retry: transient failures (network, 5xx, 429, payloads that do not parse)
    are retried a fixed number of times with a fixed sleep in between. Other
    4xx answers are deterministic and get a single attempt.
  - Budget: one token bucket per provider keeps shelfsync polite.
  - Classification: 404 becomes NotFound; every other failure, including a
    payload that does not decode, becomes UpstreamUnavailable.
*/
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/constants"
)

// maxBodyBytes caps provider responses, MangaDex pages are well under 1 MiB.
const maxBodyBytes = 8 << 20

// Policy describes the timeout, retry and rate budget of one provider.
type Policy struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
	RPS     float64
	Burst   int
}

// DefaultPolicy matches the defaults of the configuration.
func DefaultPolicy() Policy {
	return Policy{
		Timeout: 10 * time.Second,
		Retries: 3,
		Backoff: 2 * time.Second,
		RPS:     constants.ProviderRPS,
		Burst:   constants.ProviderBurst,
	}
}

// Response is a fully read provider response.
type Response struct {
	Status   int
	Header   http.Header
	Body     []byte
	FinalURL *url.URL
}

// Client performs requests on behalf of one provider.
type Client struct {
	provider   string
	httpClient *http.Client
	policy     Policy
	limiter    *rate.Limiter
}

// Option customises a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (tests, custom transports).
// Its Timeout is overwritten by the policy.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) { client.httpClient = httpClient }
}

// New builds a client for provider, e.g. "MangaDex".
func New(provider string, policy Policy, options ...Option) *Client {
	if policy.Retries < 1 {
		policy.Retries = 1
	}

	client := &Client{
		provider:   provider,
		httpClient: &http.Client{},
		policy:     policy,
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}
	if policy.RPS > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(policy.RPS), max(policy.Burst, 1))
	}

	for _, option := range options {
		option(client)
	}
	client.httpClient.Timeout = policy.Timeout

	return client
}

// Provider returns the human-readable provider name used in error messages.
func (client *Client) Provider() string {
	return client.provider
}

// RequestBuilder creates a fresh request for every attempt, bodies cannot be replayed.
type RequestBuilder func(ctx context.Context) (*http.Request, error)

// Get returns a builder for a plain GET with optional headers.
func Get(rawURL string, headers map[string]string) RequestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		for name, value := range headers {
			request.Header.Set(name, value)
		}
		return request, nil
	}
}

// Post returns a builder for a POST carrying body with the given content type.
func Post(rawURL, contentType string, body []byte, headers map[string]string) RequestBuilder {
	return Send(http.MethodPost, rawURL, contentType, body, headers)
}

// Send returns a builder for any method carrying body with the given content type.
func Send(method, rawURL, contentType string, body []byte, headers map[string]string) RequestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		request, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		request.Header.Set("Content-Type", contentType)
		for name, value := range headers {
			request.Header.Set(name, value)
		}
		return request, nil
	}
}

// Do runs the request with the retry policy. A 2xx response is returned as is;
// 404 yields NotFound without retrying. Errors are always *apperr.AppError.
func (client *Client) Do(ctx context.Context, build RequestBuilder) (*Response, error) {
	return client.DoParse(ctx, build, nil)
}

// Parse inspects the response of one successful attempt. An UpstreamUnavailable
// error (see [Client.Decode] and [Client.Malformed]) fails the attempt and is
// retried; any other error ends the call as is.
type Parse func(response *Response) error

// DoParse is [Client.Do] with parse run inside every attempt, so a malformed
// payload costs a retry rather than the whole call.
func (client *Client) DoParse(ctx context.Context, build RequestBuilder, parse Parse) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= client.policy.Retries; attempt++ {
		response, err := client.Once(ctx, build)
		if err == nil && parse != nil {
			err = malformedIsTransient(parse(response))
		}
		if err == nil {
			return response, nil
		}

		lastErr = err
		if !Retryable(err) || attempt == client.policy.Retries {
			break
		}

		if err := sleep(ctx, client.policy.Backoff); err != nil {
			return nil, apperr.UpstreamUnavailable(client.provider, err)
		}
	}

	return nil, Unwrap(lastErr)
}

// malformedIsTransient marks a payload rejected by a [Parse] as retryable.
func malformedIsTransient(err error) error {
	if err == nil {
		return nil
	}
	if ae := apperr.As(err); ae != nil && ae.Code == apperr.CodeUpstreamUnavailable {
		return &transientError{ae}
	}
	return err
}

// Once performs a single attempt. Bato uses it directly, each mirror gets exactly one try.
// The response is returned alongside a status error so callers can inspect the body.
func (client *Client) Once(ctx context.Context, build RequestBuilder) (*Response, error) {
	if err := client.limiter.Wait(ctx); err != nil {
		return nil, apperr.UpstreamUnavailable(client.provider, err)
	}

	request, err := build(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: build request: %w", client.provider, err))
	}
	if request.Header.Get("User-Agent") == "" {
		request.Header.Set("User-Agent", constants.UserAgent)
	}

	httpResponse, err := client.httpClient.Do(request)
	if err != nil {
		return nil, &transientError{apperr.UpstreamUnavailable(client.provider, err)}
	}
	defer httpResponse.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResponse.Body, maxBodyBytes))
	if err != nil {
		return nil, &transientError{apperr.UpstreamUnavailable(client.provider, err)}
	}

	response := &Response{
		Status:   httpResponse.StatusCode,
		Header:   httpResponse.Header,
		Body:     body,
		FinalURL: httpResponse.Request.URL,
	}

	switch {
	case httpResponse.StatusCode == http.StatusNotFound:
		return response, apperr.NotFound(client.provider + " entry")
	case httpResponse.StatusCode == http.StatusTooManyRequests || httpResponse.StatusCode >= 500:
		return response, &transientError{apperr.UpstreamUnavailable(client.provider,
			&StatusError{Code: httpResponse.StatusCode})}
	case httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299:
		return response, apperr.UpstreamUnavailable(client.provider,
			&StatusError{Code: httpResponse.StatusCode})
	}

	return response, nil
}

// GetJSON issues a GET with retries and decodes the JSON body into target.
// check, when not nil, validates the decoded payload; returning
// [Client.Malformed] from it retries the request.
func (client *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, target any, check func() error) error {
	return client.DoJSON(ctx, Get(rawURL, headers), target, check)
}

// DoJSON runs build with retries and decodes every 2xx body into target until
// one decodes and passes check.
func (client *Client) DoJSON(ctx context.Context, build RequestBuilder, target any, check func() error) error {
	_, err := client.DoParse(ctx, build, func(response *Response) error {
		if err := client.Decode(response.Body, target); err != nil {
			return err
		}
		if check != nil {
			return check()
		}
		return nil
	})
	return err
}

// Decode unmarshals body, reporting malformed payloads as UpstreamUnavailable.
// target is reset first so a retried attempt never sees a previous body.
func (client *Client) Decode(body []byte, target any) error {
	if value := reflect.ValueOf(target); value.Kind() == reflect.Pointer && !value.IsNil() {
		value.Elem().SetZero()
	}
	if err := json.Unmarshal(body, target); err != nil {
		return apperr.UpstreamUnavailable(client.provider, fmt.Errorf("malformed payload: %w", err))
	}
	return nil
}

// Malformed reports a payload that decoded but misses required fields.
func (client *Client) Malformed(reason string) error {
	return apperr.UpstreamUnavailable(client.provider, errors.New("malformed payload: "+reason))
}

// # Retry classification

// StatusError is the cause of an UpstreamUnavailable raised by a non-2xx answer.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status %d", e.Code) }

// StatusCode returns the provider status behind err, or 0 when err did not
// come from an HTTP answer.
func StatusCode(err error) int {
	var status *StatusError
	if errors.As(err, &status) {
		return status.Code
	}
	return 0
}

// transientError marks failures worth another attempt.
type transientError struct {
	*apperr.AppError
}

func (e *transientError) Unwrap() error { return e.AppError }

// Retryable reports whether err came from a transient failure.
func Retryable(err error) bool {
	var transient *transientError
	return errors.As(err, &transient)
}

// Unwrap strips the retry marker so callers only ever see *apperr.AppError.
func Unwrap(err error) error {
	var transient *transientError
	if errors.As(err, &transient) {
		return transient.AppError
	}
	return err
}

func sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
