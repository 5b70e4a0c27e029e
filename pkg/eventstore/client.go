package eventstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/quhixcal/quhixcal/pkg/event"
	log "github.com/sirupsen/logrus"
)

// RequestIdHeader correlates client and service log lines.
const RequestIdHeader = "X-Request-Id"

const maxErrorBodyLength = 512

// Range selects expanded occurrences instead of anchor events. The zero Range means no expansion.
type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// MonthRange returns the range covering every day of the given month.
func MonthRange(year int, month time.Month) Range {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Range{From: from, To: from.AddDate(0, 1, -1)}
}

type Client interface {
	ListEvents(ctx context.Context, rng Range) ([]event.Event, error) // GET /events
	CreateEvent(ctx context.Context, e event.Event) error             // POST /events
}

type ClientImpl struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *ClientImpl {
	return &ClientImpl{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ListEvents retrieves the full event collection. An empty collection is not an error.
func (c *ClientImpl) ListEvents(ctx context.Context, rng Range) ([]event.Event, error) {
	endpoint := c.baseURL + "/events"
	if !rng.IsZero() {
		query := url.Values{}
		query.Set("from", event.FormatDate(rng.From))
		query.Set("to", event.FormatDate(rng.To))
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dtos []event.EventDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		err = fmt.Errorf("failed to decode events: %w", err)
		log.Error(err)
		return nil, err
	}
	if dtos == nil {
		err := errors.New("failed to decode events: expected a JSON array, got null")
		log.Error(err)
		return nil, err
	}

	events := make([]event.Event, 0, len(dtos))
	for _, dto := range dtos {
		events = append(events, event.DTOToEvent(dto))
	}
	return events, nil
}

// CreateEvent submits one event. The response body only signals success and is discarded.
func (c *ClientImpl) CreateEvent(ctx context.Context, e event.Event) error {
	dto := event.EventToDTO(e)
	dto.ID = ""
	body, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// do sends the request with a fresh request id and turns non-2xx answers into a StatusError.
func (c *ClientImpl) do(req *http.Request) (*http.Response, error) {
	requestId := ulid.Make().String()
	req.Header.Set(RequestIdHeader, requestId)
	logger := log.WithFields(log.Fields{"requestId": requestId, "method": req.Method, "url": req.URL.String()})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Errorf("Failed to execute request: %v", err)
		return nil, err
	}
	logger.WithField("duration", time.Since(start)).Debugf("event service answered %d", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		err := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
		logger.Error(err)
		return nil, err
	}
	return resp, nil
}
