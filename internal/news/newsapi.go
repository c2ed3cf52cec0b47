package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newsposter/internal/domain"
)

const (
	NewsAPIBaseURL = "https://newsapi.org"

	newsAPIEverythingPath = "/v2/everything"
	newsAPIClientTimeout  = 20 * time.Second
	newsAPIMaxPageSize    = 100
	newsAPIErrorBodyLimit = 4096
)

var newsAPISortBy = map[string]string{
	SortByRecency: "publishedAt",
	"relevancy":   "relevancy",
	"popularity":  "popularity",
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"publishedAt"`
}

// NewsAPI searches newsapi.org's /v2/everything endpoint.
type NewsAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

func NewNewsAPI(apiKey string, log *slog.Logger) *NewsAPI {
	return NewNewsAPIWithBaseURL(apiKey, NewsAPIBaseURL, &http.Client{Timeout: newsAPIClientTimeout}, log)
}

func NewNewsAPIWithBaseURL(
	apiKey string,
	baseURL string,
	client *http.Client,
	log *slog.Logger,
) *NewsAPI {
	if client == nil {
		client = &http.Client{Timeout: newsAPIClientTimeout}
	}

	return &NewsAPI{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     log,
	}
}

func (n *NewsAPI) Search(ctx context.Context, query Query) ([]domain.Article, error) {
	topic := strings.TrimSpace(query.Topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is empty")
	}

	reqURL, err := n.searchURL(topic, query)
	if err != nil {
		return nil, fmt.Errorf("build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", n.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			n.log.WarnContext(ctx, "Failed to close response body",
				"error", err,
				"topic", topic)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, n.statusError(resp)
	}

	var body newsAPIResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if body.Status != "ok" {
		return nil, fmt.Errorf("unexpected response (status = %s, code = %s): %s",
			body.Status, body.Code, body.Message)
	}

	articles := make([]domain.Article, 0, len(body.Articles))
	for _, raw := range body.Articles {
		article, ok := raw.toArticle()
		if !ok {
			continue
		}

		articles = append(articles, article)
	}

	if query.MaxResults > 0 && len(articles) > query.MaxResults {
		articles = articles[:query.MaxResults]
	}

	return articles, nil
}

func (n *NewsAPI) searchURL(topic string, query Query) (string, error) {
	u, err := url.Parse(n.baseURL + newsAPIEverythingPath)
	if err != nil {
		return "", err
	}

	language := strings.TrimSpace(query.Language)
	if language == "" {
		language = DefaultLanguage
	}

	sortBy, ok := newsAPISortBy[query.SortBy]
	if !ok {
		sortBy = newsAPISortBy[SortByRecency]
	}

	params := url.Values{}
	params.Set("q", topic)
	params.Set("language", language)
	params.Set("sortBy", sortBy)
	if query.MaxResults > 0 {
		params.Set("pageSize", strconv.Itoa(min(query.MaxResults, newsAPIMaxPageSize)))
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}

func (n *NewsAPI) statusError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, newsAPIErrorBodyLimit))
	if err != nil {
		return fmt.Errorf("unexpected status code (statusCode = %d)", resp.StatusCode)
	}

	var body newsAPIResponse
	if json.Unmarshal(raw, &body) == nil && body.Code != "" {
		return fmt.Errorf("unexpected status code (statusCode = %d, code = %s): %s",
			resp.StatusCode, body.Code, body.Message)
	}

	return fmt.Errorf("unexpected status code (statusCode = %d): %s",
		resp.StatusCode, strings.TrimSpace(string(raw)))
}

// toArticle drops entries NewsAPI returns for removed content.
func (a newsAPIArticle) toArticle() (domain.Article, bool) {
	title := CleanText(a.Title)
	articleURL := strings.TrimSpace(a.URL)
	if title == "" || articleURL == "" || title == "[Removed]" {
		return domain.Article{}, false
	}

	var description string
	if a.Description != nil {
		description = CleanText(*a.Description)
	}

	var publishedAt time.Time
	if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(a.PublishedAt)); err == nil {
		publishedAt = parsed
	}

	return domain.Article{
		Title:       title,
		Description: description,
		URL:         articleURL,
		Source:      strings.TrimSpace(a.Source.Name),
		PublishedAt: publishedAt,
	}, true
}
