package nance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"ProposalBoard/internal/domain"
	"ProposalBoard/internal/ports"
)

// Client reads proposals and space metadata from the Nance API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var _ ports.ProposalSource = (*Client)(nil)
var _ ports.SpaceSource = (*Client)(nil)

// NewClient creates a reusable HTTP client; a nil httpClient gets a 15s timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    T      `json:"data"`
}

type proposalDTO struct {
	Hash                  string `json:"hash"`
	Title                 string `json:"title"`
	Status                string `json:"status"`
	ProposalID            *int   `json:"proposalId"`
	GovernanceCycle       *int   `json:"governanceCycle"`
	AuthorAddress         string `json:"authorAddress"`
	VoteURL               string `json:"voteURL"`
	TemperatureCheckVotes []int  `json:"temperatureCheckVotes"`
}

type proposalsPacket struct {
	Proposals        []proposalDTO `json:"proposals"`
	PrivateProposals []proposalDTO `json:"privateProposals"`
	HasMore          bool          `json:"hasMore"`
}

type spaceDTO struct {
	Name         string `json:"name"`
	CurrentCycle int    `json:"currentCycle"`
	CurrentEvent struct {
		Title string `json:"title"`
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"currentEvent"`
	SnapshotSpace string `json:"snapshotSpace"`
}

// FetchProposals loads one page of a space's proposal list.
func (c *Client) FetchProposals(ctx context.Context, req domain.PageRequest) (domain.RawPage, error) {
	endpoint, err := buildProposalsURL(c.baseURL, req)
	if err != nil {
		return domain.RawPage{}, err
	}

	var env envelope[proposalsPacket]
	if err := c.get(ctx, endpoint, &env); err != nil {
		return domain.RawPage{}, fmt.Errorf("proposals of %s: %w", req.Space, err)
	}

	items := make([]domain.ProposalRecord, 0, len(env.Data.Proposals))
	for _, dto := range env.Data.Proposals {
		items = append(items, toRecord(dto))
	}

	var drafts []domain.ProposalRecord
	for _, dto := range env.Data.PrivateProposals {
		drafts = append(drafts, toRecord(dto))
	}

	c.debug("nance page", "space", req.Space, "page", req.Page, "count", len(items), "drafts", len(drafts), "has_more", env.Data.HasMore)
	return domain.RawPage{Number: req.Page, Items: items, HasMore: env.Data.HasMore, PrivateProposals: drafts}, nil
}

// SpaceInfo loads space metadata including the current governance event.
func (c *Client) SpaceInfo(ctx context.Context, space string) (domain.SpaceInfo, error) {
	endpoint, err := url.JoinPath(c.baseURL, space)
	if err != nil {
		return domain.SpaceInfo{}, fmt.Errorf("invalid base url %s: %w", c.baseURL, err)
	}

	var env envelope[spaceDTO]
	if err := c.get(ctx, endpoint, &env); err != nil {
		return domain.SpaceInfo{}, fmt.Errorf("space %s: %w", space, err)
	}

	return domain.SpaceInfo{
		Name:         env.Data.Name,
		CurrentCycle: env.Data.CurrentCycle,
		CurrentEvent: domain.CycleEvent{
			Title: env.Data.CurrentEvent.Title,
			Start: parseTime(env.Data.CurrentEvent.Start),
			End:   parseTime(env.Data.CurrentEvent.End),
		},
		SnapshotSpace: env.Data.SnapshotSpace,
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, v interface{ failure() error }) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrSpaceNotFound
	}
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return v.failure()
}

func (e *envelope[T]) failure() error {
	if e.Success {
		return nil
	}
	if e.Error == "" {
		return errors.New("nance reported failure")
	}
	return fmt.Errorf("nance error: %s", e.Error)
}

func toRecord(dto proposalDTO) domain.ProposalRecord {
	rec := domain.ProposalRecord{
		ID:              dto.Hash,
		ProposalNumber:  dto.ProposalID,
		Title:           plainTitle(dto.Title),
		Status:          domain.ParseStatus(dto.Status),
		GovernanceCycle: dto.GovernanceCycle,
		AuthorAddress:   dto.AuthorAddress,
		VoteReferenceID: strings.TrimSpace(dto.VoteURL),
	}
	if len(dto.TemperatureCheckVotes) >= 2 {
		rec.TemperatureCheckVotes = &[2]int{dto.TemperatureCheckVotes[0], dto.TemperatureCheckVotes[1]}
	}
	return rec
}

// plainTitle reduces titles that arrive as HTML fragments to their visible
// text. Any other title only has its entities unescaped, so literal angle
// brackets in plain titles survive.
func plainTitle(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !isFragment(trimmed) {
		return html.UnescapeString(trimmed)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil || doc.Find("body *").Length() == 0 {
		return html.UnescapeString(trimmed)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// isFragment reports whether s is wrapped in markup, like "<p>...</p>".
func isFragment(s string) bool {
	return strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">")
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func buildProposalsURL(base string, req domain.PageRequest) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", base, err)
	}
	parsed = parsed.JoinPath(req.Space, "proposals")

	query := parsed.Query()
	if req.Cycle != nil {
		query.Set("cycle", strconv.Itoa(*req.Cycle))
	}
	if req.Keyword != "" {
		query.Set("keyword", req.Keyword)
	}
	query.Set("limit", strconv.Itoa(req.Limit))
	query.Set("page", strconv.Itoa(req.Page))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
