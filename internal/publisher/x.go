package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"newsposter/internal/ratelimiter"

	"github.com/dghubble/oauth1"
)

const (
	XBaseURL = "https://api.twitter.com"

	xTweetsPath       = "/2/tweets"
	xTweetsEndpoint   = http.MethodPost + " " + xTweetsPath
	xClientTimeout    = 20 * time.Second
	xErrorBodyLimit   = 4096
	xRateLimitRetries = 1
)

type XCredentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

type xTweetRequest struct {
	Text string `json:"text"`
}

type xTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type xProblem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

// X posts to X (Twitter) API v2 on behalf of the user owning the access token.
type X struct {
	client      *http.Client
	baseURL     string
	rateLimiter *ratelimiter.RateLimiter
	log         *slog.Logger
}

func NewX(creds XCredentials, log *slog.Logger) *X {
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)

	client := config.Client(oauth1.NoContext, token)
	client.Timeout = xClientTimeout

	return NewXWithClient(client, XBaseURL, log)
}

// NewXWithClient uses client as is, so it must already sign requests.
func NewXWithClient(client *http.Client, baseURL string, log *slog.Logger) *X {
	return &X{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: ratelimiter.New(ratelimiter.DefaultMaxWait, log),
		log:         log,
	}
}

func (x *X) Publish(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("text is empty")
	}

	payload, err := json.Marshal(xTweetRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		if err = x.rateLimiter.Wait(ctx, xTweetsEndpoint); err != nil {
			return "", fmt.Errorf("wait for rate limit: %w", err)
		}

		id, statusCode, err := x.createTweet(ctx, payload)
		if statusCode == http.StatusTooManyRequests && attempt < xRateLimitRetries {
			x.log.WarnContext(ctx, "Tweet is rate limited, retrying after reset",
				"error", err,
				"attempt", attempt+1)

			continue
		}
		if err != nil {
			return "", err
		}

		return id, nil
	}
}

func (x *X) createTweet(ctx context.Context, payload []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+xTweetsPath, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			x.log.WarnContext(ctx, "Failed to close response body",
				"error", err,
				"endpoint", xTweetsEndpoint)
		}
	}()

	x.rateLimiter.Observe(xTweetsEndpoint, resp.StatusCode, resp.Header)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, xStatusError(resp)
	}

	var body xTweetResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}

	if body.Data.ID == "" {
		return "", resp.StatusCode, errors.New("tweet ID is missing")
	}

	return body.Data.ID, resp.StatusCode, nil
}

func xStatusError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, xErrorBodyLimit))
	if err != nil {
		return fmt.Errorf("unexpected status code (statusCode = %d)", resp.StatusCode)
	}

	var problem xProblem
	if json.Unmarshal(raw, &problem) == nil && (problem.Title != "" || problem.Detail != "") {
		return fmt.Errorf("unexpected status code (statusCode = %d, title = %s): %s",
			resp.StatusCode, problem.Title, problem.Detail)
	}

	return fmt.Errorf("unexpected status code (statusCode = %d): %s",
		resp.StatusCode, strings.TrimSpace(string(raw)))
}
