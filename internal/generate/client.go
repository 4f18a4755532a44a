package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"
)

// RawPair is a question/answer pair as returned by the model, before
// normalization. Either field may be empty; such pairs are dropped later.
type RawPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Attachment is an inline binary part of a generation request, e.g. the
// extracted page-range PDF or a page image.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// contentModel is the transport behind the client. Tests inject a fake; the
// production implementation is GeminiModel.
type contentModel interface {
	GenerateContent(ctx context.Context, prompt string, attachments []Attachment) (string, error)
}

// RetryPolicy bounds the retry loop for transient failures.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // delay before attempt 2; doubles per attempt
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 1500 * time.Millisecond}
}

// Client turns chunk content into raw question/answer pairs. All retrying
// lives here; callers treat any returned error as final.
type Client struct {
	model  contentModel
	policy RetryPolicy
	log    *slog.Logger
	stats  *Stats

	// sleep is swapped out in tests to record delays instead of waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(model contentModel, policy RetryPolicy, log *slog.Logger) *Client {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 1500 * time.Millisecond
	}
	return &Client{
		model:  model,
		policy: policy,
		log:    log,
		stats:  NewStats(time.Hour),
		sleep:  sleepCtx,
	}
}

// Stats exposes the rolling latency aggregate for the underlying model calls.
func (c *Client) Stats() *Stats { return c.stats }

// Generate produces raw pairs for one chunk. Blank text with no attachments
// short-circuits to an empty result without a call. On failure the returned
// error is a *GenerationError carrying the classified failure.
func (c *Client) Generate(ctx context.Context, text string, attachments []Attachment) ([]RawPair, error) {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return []RawPair{}, nil
	}

	prompt := BuildPrompt(text)

	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.policy.BaseDelay << (attempt - 2)
			if c.log != nil {
				c.log.Warn("retrying generation", "attempt", attempt, "delay", delay, "error", lastErr)
			}
			if err := c.sleep(ctx, delay); err != nil {
				return nil, &GenerationError{Class: ClassTransient, Attempts: attempt - 1, Err: err}
			}
		}

		start := time.Now()
		out, err := c.model.GenerateContent(ctx, prompt, attachments)
		c.stats.Record(time.Since(start).Milliseconds())
		if err != nil {
			switch class := Classify(err); class {
			case ClassAuthDenied, ClassLocation:
				// Not worth a second attempt.
				return nil, &GenerationError{Class: class, Attempts: attempt, Err: err}
			default:
				lastErr = err
				continue
			}
		}

		pairs, err := parsePairs(out)
		if err != nil {
			lastErr = err
			continue
		}
		return pairs, nil
	}

	class := ClassGeneric
	if Classify(lastErr) == ClassRateLimited {
		class = ClassRateLimited
	}
	return nil, &GenerationError{Class: class, Attempts: c.policy.MaxAttempts, Err: lastErr}
}

// Class buckets a generation failure for user-facing reporting.
type Class int

const (
	ClassTransient Class = iota
	ClassAuthDenied
	ClassLocation
	ClassRateLimited
	ClassGeneric
)

// Classify buckets an error from the model transport. Pure function of the
// error value, so the retry loop is testable without a live endpoint.
func Classify(err error) Class {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return ClassTransient
	}
	switch {
	case apiErr.Code == 403 && strings.Contains(strings.ToLower(apiErr.Message), "location"):
		return ClassLocation
	case apiErr.Code == 401 || apiErr.Code == 403 ||
		apiErr.Status == "PERMISSION_DENIED" || apiErr.Status == "UNAUTHENTICATED":
		return ClassAuthDenied
	case apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED":
		return ClassRateLimited
	default:
		return ClassTransient
	}
}

// GenerationError is the final, classified failure of a Generate call.
type GenerationError struct {
	Class    Class
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	switch e.Class {
	case ClassAuthDenied:
		return fmt.Sprintf("generation access denied: check the API key and account region: %v", e.Err)
	case ClassLocation:
		return fmt.Sprintf("the generation API is not available in your location: %v", e.Err)
	case ClassRateLimited:
		return fmt.Sprintf("rate limited after %d attempts: slow down and try again later: %v", e.Attempts, e.Err)
	default:
		return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
	}
}

func (e *GenerationError) Unwrap() error { return e.Err }

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// parsePairs decodes the model output as the required schema: a JSON array
// of {question, answer} objects. Anything else fails the attempt.
func parsePairs(s string) ([]RawPair, error) {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		s = m[1]
	}
	var pairs []RawPair
	if err := json.Unmarshal([]byte(s), &pairs); err != nil {
		return nil, fmt.Errorf("response does not match the pair schema: %w (raw: %s)", err, truncate(s, 200))
	}
	if pairs == nil {
		pairs = []RawPair{}
	}
	return pairs, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
