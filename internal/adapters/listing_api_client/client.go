package listing_api_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/contracts"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

const (
	defaultPageLimit = 100
	// Защита от API, который игнорирует offset и всегда отдаёт полную страницу
	maxPages = 1000
)

type Config struct {
	BaseURL    string
	APIKey     string
	Collection string
	PageLimit  int
	Timeout    time.Duration
}

// Client - репозиторий карточек поверх документного API (коллекция с limit/offset).
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	pageLimit  int
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("listing api client: base URL is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("listing api client: collection is required")
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaultPageLimit
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		pageLimit:  cfg.PageLimit,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) doRequest(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set(contextkeys.TraceIDHeader, traceID)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

func (c *Client) pageURL(offset int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.pageLimit))
	q.Set("offset", strconv.Itoa(offset))
	return fmt.Sprintf("%s/collections/%s/documents?%s", c.baseURL, url.PathEscape(c.collection), q.Encode())
}

// FetchAll выкачивает коллекцию постранично, пока сервер не вернёт пустую страницу.
// Документы, не прошедшие схему, отбрасываются и считаются в Rejected.
// Любая сетевая ошибка или не-2xx ответ прерывает загрузку целиком.
func (c *Client) FetchAll(ctx context.Context) (*domain.FetchResult, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "ListingApiClient",
		"method":     "FetchAll",
		"collection": c.collection,
	})

	result := &domain.FetchResult{Records: []domain.HotelRecord{}}

	offset := 0
	for page := 0; page < maxPages; page++ {
		docs, err := c.fetchPage(ctx, offset)
		if err != nil {
			clientLogger.Error("Failed to fetch listings page", err, port.Fields{"offset": offset})
			return nil, err
		}

		// сервер может урезать limit, поэтому конец коллекции - только пустая страница
		if len(docs) == 0 {
			clientLogger.Info("Listings fetched", port.Fields{
				"pages":    page,
				"records":  len(result.Records),
				"rejected": result.Rejected,
			})
			return result, nil
		}

		for _, raw := range docs {
			record, err := decodeDocument(raw)
			if err != nil {
				result.Rejected++
				clientLogger.Warn("Document rejected", port.Fields{"offset": offset, "reason": err.Error()})
				continue
			}
			result.Records = append(result.Records, record)
		}
		offset += len(docs)
	}

	err := fmt.Errorf("listing api returned more than %d non-empty pages", maxPages)
	clientLogger.Error("Pagination did not terminate", err, nil)
	return nil, err
}

func (c *Client) fetchPage(ctx context.Context, offset int) ([]json.RawMessage, error) {
	reqURL := c.pageURL(offset)

	resp, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request to listing api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("listing api returned non-success status code %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var docs []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode listing api response: %w", err)
	}
	return docs, nil
}

func decodeDocument(raw json.RawMessage) (domain.HotelRecord, error) {
	v, err := contracts.DecodeJSON(raw)
	if err != nil {
		return domain.HotelRecord{}, fmt.Errorf("document is not a valid JSON: %w", err)
	}
	if err := contracts.ValidateValue(contracts.HotelDocumentV1, v); err != nil {
		return domain.HotelRecord{}, err
	}

	var doc HotelDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.HotelRecord{}, fmt.Errorf("failed to map document: %w", err)
	}
	return doc.toDomain(), nil
}
