// Package assistant talks to the remote AI service that grades free text
// answers, generates flashcards and answers chat messages.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"resty.dev/v3"
)

type ValidateRequest struct {
	DeckID      string `json:"deckId"`
	FlashcardID string `json:"flashcardId"`
	UserAnswer  string `json:"userAnswer"`
}

type ValidateResponse struct {
	IsCorrect bool    `json:"isCorrect"`
	Score     float64 `json:"score"`
}

type GenerateRequest struct {
	Type        models.CardType `json:"type"`
	UserComment string          `json:"userComment"`
}

type ChatTurn struct {
	Role    models.ChatRole `json:"role"`
	Content string          `json:"content"`
}

type ChatRequest struct {
	UserID   string     `json:"userId"`
	Messages []ChatTurn `json:"messages"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// ResponseError is returned when the service answers with a non-2xx status.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
	retryDelay       time.Duration
}

type Option func(*Client)

// WithRetryDelay sets the base delay of the exponential backoff between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

func New(baseURL, apiKey string, timeout time.Duration, retryAttempts uint, opts ...Option) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}

	c := &Client{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
		retryDelay:       200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Close() error {
	return c.httpClient.Close()
}

// ValidateAnswer asks the service to grade a free text answer.
func (c *Client) ValidateAnswer(ctx context.Context, req ValidateRequest) (ValidateResponse, error) {
	log := logger.FromContext(ctx).WithPrefix("assistant").WithField("flashcard_id", req.FlashcardID)
	log.Debug("validating answer: deck_id=%s", req.DeckID)

	var result ValidateResponse
	err := c.do(ctx, func() error {
		var body ValidateResponse
		if err := c.post(ctx, "/flashcards/validate", req, &body); err != nil {
			return err
		}
		result = body
		return nil
	})
	if err != nil {
		log.Error("answer validation failed: %v", err)
		return ValidateResponse{}, err
	}
	log.Debug("answer validated: correct=%t, score=%.2f", result.IsCorrect, result.Score)
	return result, nil
}

// GenerateFlashcards asks the service to create cards in a deck. The service
// stores what it generates; only success or failure comes back.
func (c *Client) GenerateFlashcards(ctx context.Context, deckID string, req GenerateRequest) error {
	log := logger.FromContext(ctx).WithPrefix("assistant").WithField("deck_id", deckID)
	log.Debug("requesting flashcard generation: type=%s", req.Type)

	path := "/decks/" + url.PathEscape(deckID) + "/flashcards/generate"
	err := c.do(ctx, func() error {
		return c.post(ctx, path, req, nil)
	})
	if err != nil {
		log.Error("flashcard generation failed: %v", err)
		return err
	}
	log.Info("flashcard generation accepted")
	return nil
}

// Respond sends the recent conversation and returns the assistant's reply.
func (c *Client) Respond(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	log := logger.FromContext(ctx).WithPrefix("assistant").WithField("user_id", req.UserID)
	log.Debug("requesting chat reply: history=%d", len(req.Messages))

	var result ChatResponse
	err := c.do(ctx, func() error {
		var body ChatResponse
		if err := c.post(ctx, "/chat/respond", req, &body); err != nil {
			return err
		}
		if body.Reply == "" {
			return errors.New("empty reply")
		}
		result = body
		return nil
	})
	if err != nil {
		log.Error("chat reply failed: %v", err)
		return ChatResponse{}, err
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	r := c.httpClient.R().SetContext(ctx).SetBody(body)
	if result != nil {
		r = r.SetResult(result)
	}
	response, err := r.Post(path)
	if err != nil {
		return fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return &ResponseError{StatusCode: response.StatusCode(), Body: response.String()}
	}
	return nil
}

// do runs fn with exponential backoff, giving up at once on errors a retry
// cannot fix.
func (c *Client) do(ctx context.Context, fn func() error) error {
	var lastErr error
	err := retry.Do(
		func() error {
			err := fn()
			if err == nil {
				return nil
			}
			lastErr = err
			if ctx.Err() != nil || !isRetryableError(err) {
				return retry.Unrecoverable(err)
			}
			logger.FromContext(ctx).WithPrefix("assistant").Warn("retrying after error: %v", err)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetryAttempts+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if lastErr != nil {
		return lastErr
	}
	return err
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode >= http.StatusInternalServerError ||
			respErr.StatusCode == http.StatusTooManyRequests
	}

	// transport failures, timeouts and empty or truncated bodies
	return true
}
