package ai

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response from a provider.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	Type       string
	RequestID  string
	Raw        map[string]any
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("status %d: %s (request %s)", e.StatusCode, msg, e.RequestID)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, msg)
}

// AuthError indicates authentication/authorization failures (401/403).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.APIError.Error())
}

// RateLimitError indicates 429 responses and may include a Retry-After.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: wait about %ds before retrying: %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("rate limited: %s", e.APIError.Error())
}

// ModelNotFoundError indicates the requested model is not available.
type ModelNotFoundError struct{ *APIError }

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model not found: %s", e.APIError.Error())
}

type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

// QuotaExceededError indicates billing/quota problems.
type QuotaExceededError struct{ *APIError }

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s", e.APIError.Error())
}

type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("provider error: %s", e.APIError.Error()) }

// UnreachableError indicates the runtime could not be contacted at all.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("endpoint unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// decodeAPIError reads a bounded error body. Both the OpenAI shape
// {"error":{"message":..}} and flat {"error":".."} bodies are accepted.
func decodeAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: extractRequestID(resp)}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	apiErr.Raw = raw
	switch v := raw["error"].(type) {
	case string:
		apiErr.Message = v
	case map[string]any:
		if m, ok := v["message"].(string); ok {
			apiErr.Message = m
		}
		if c, ok := v["code"].(string); ok {
			apiErr.Code = c
		}
		if t, ok := v["type"].(string); ok {
			apiErr.Type = t
		}
	}
	if m, ok := raw["message"].(string); ok && apiErr.Message == "" {
		apiErr.Message = m
	}
	return apiErr
}

func classifyAPIError(apiErr *APIError, resp *http.Response) error {
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return &AuthError{APIError: apiErr}
	case apiErr.StatusCode == http.StatusTooManyRequests:
		if apiErr.Code == "insufficient_quota" || apiErr.Type == "insufficient_quota" {
			return &QuotaExceededError{APIError: apiErr}
		}
		rl := &RateLimitError{APIError: apiErr}
		if resp != nil {
			if secs, err := parseRetryAfterSeconds(resp.Header.Get("Retry-After")); err == nil {
				rl.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return rl
	case apiErr.StatusCode == http.StatusPaymentRequired:
		return &QuotaExceededError{APIError: apiErr}
	case apiErr.StatusCode == http.StatusNotFound || apiErr.Code == "model_not_found":
		return &ModelNotFoundError{APIError: apiErr}
	case apiErr.StatusCode >= 500:
		return &ServerError{APIError: apiErr}
	case apiErr.StatusCode >= 400:
		return &BadRequestError{APIError: apiErr}
	}
	return apiErr
}

func extractRequestID(resp *http.Response) string {
	for _, h := range []string{"X-Request-Id", "X-Request-ID", "Openai-Request-Id", "Cf-Ray"} {
		if v := resp.Header.Get(h); v != "" {
			return v
		}
	}
	return ""
}
