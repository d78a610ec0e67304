package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"ProposalBoard/internal/domain"
	"ProposalBoard/internal/ports"
)

// maxPerQuery is the hub's cap on `first` and on id_in lists.
const maxPerQuery = domain.MaxVotesPerRequest

const tallyQuery = `query ProposalsByID($first: Int, $proposalIds: [String]) {
  proposals(first: $first, where: {id_in: $proposalIds}) {
    id
    type
    state
    choices
    scores
    scores_total
    votes
    start
    end
  }
}`

const proposalVotesQuery = `query VotesOfProposal($first: Int, $skip: Int, $orderBy: String, $id: String) {
  votes(first: $first, skip: $skip, where: {proposal: $id}, orderBy: $orderBy, orderDirection: desc) {
    id
    voter
    vp
    created
    choice
    reason
    app
    proposal {
      id
      type
      choices
    }
  }
}`

const votedQuery = `query VotedProposals($first: Int, $voter: String, $proposalIds: [String]) {
  votes(first: $first, where: {voter: $voter, proposal_in: $proposalIds}) {
    id
    choice
    created
    proposal {
      id
      type
      choices
    }
  }
}`

// Client talks to a Snapshot hub over its GraphQL endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *slog.Logger
	group    singleflight.Group
}

var _ ports.VoteSource = (*Client)(nil)
var _ ports.VoteListSource = (*Client)(nil)

// NewClient creates a hub client; a nil httpClient gets a 20s timeout.
func NewClient(hubURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		endpoint: strings.TrimSuffix(hubURL, "/") + "/graphql",
		apiKey:   apiKey,
		http:     httpClient,
		logger:   logger,
	}
}

type proposalDTO struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	State       string    `json:"state"`
	Choices     []string  `json:"choices"`
	Scores      []float64 `json:"scores"`
	ScoresTotal float64   `json:"scores_total"`
	Votes       int       `json:"votes"`
	Start       int64     `json:"start"`
	End         int64     `json:"end"`
}

type voteDTO struct {
	ID       string          `json:"id"`
	Voter    string          `json:"voter"`
	VP       float64         `json:"vp"`
	Choice   json.RawMessage `json:"choice"`
	Reason   string          `json:"reason"`
	App      string          `json:"app"`
	Created  int64           `json:"created"`
	Proposal struct {
		ID      string   `json:"id"`
		Type    string   `json:"type"`
		Choices []string `json:"choices"`
	} `json:"proposal"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data T `json:"data"`
}

// FetchVotes resolves tallies for ids and, when voter is set, the voter's
// markers on the same ids. Identical concurrent batches share one round trip;
// the shared fetch outlives any single caller's cancellation and is bounded
// by the HTTP client timeout.
func (c *Client) FetchVotes(ctx context.Context, ids []string, voter string) (domain.VoteBatch, error) {
	if len(ids) == 0 {
		return domain.VoteBatch{Tallies: map[string]domain.VoteTally{}}, nil
	}

	key := batchKey(ids, voter)
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.fetchBatch(flightCtx, ids, voter)
	})

	select {
	case <-ctx.Done():
		return domain.VoteBatch{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.VoteBatch{}, res.Err
		}
		if res.Shared {
			c.debug("vote batch shared", "ids", len(ids))
		}
		return cloneBatch(res.Val.(domain.VoteBatch)), nil
	}
}

func (c *Client) fetchBatch(ctx context.Context, ids []string, voter string) (domain.VoteBatch, error) {
	var mu sync.Mutex
	batch := domain.VoteBatch{Tallies: make(map[string]domain.VoteTally, len(ids))}
	if voter != "" {
		batch.Voted = map[string]domain.VotedMarker{}
	}

	g, gctx := errgroup.WithContext(ctx)
	for chunk := range slices.Chunk(ids, maxPerQuery) {
		g.Go(func() error {
			tallies, err := c.fetchTallies(gctx, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			maps.Copy(batch.Tallies, tallies)
			mu.Unlock()
			return nil
		})
		if voter == "" {
			continue
		}
		g.Go(func() error {
			voted, err := c.fetchVoted(gctx, chunk, voter)
			if err != nil {
				return err
			}
			mu.Lock()
			maps.Copy(batch.Voted, voted)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.VoteBatch{}, err
	}

	c.debug("vote batch fetched", "ids", len(ids), "tallies", len(batch.Tallies), "voted", len(batch.Voted))
	return batch, nil
}

func (c *Client) fetchTallies(ctx context.Context, ids []string) (map[string]domain.VoteTally, error) {
	var resp graphQLResponse[struct {
		Proposals []proposalDTO `json:"proposals"`
	}]
	vars := map[string]any{"first": len(ids), "proposalIds": ids}
	if err := c.post(ctx, tallyQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("tallies: %w", err)
	}

	tallies := make(map[string]domain.VoteTally, len(resp.Data.Proposals))
	for _, dto := range resp.Data.Proposals {
		tallies[dto.ID] = domain.VoteTally{
			Choices:     dto.Choices,
			Scores:      dto.Scores,
			TotalVotes:  dto.Votes,
			Type:        dto.Type,
			State:       dto.State,
			ScoresTotal: dto.ScoresTotal,
			Start:       unixTime(dto.Start),
			End:         unixTime(dto.End),
		}
	}
	return tallies, nil
}

func (c *Client) fetchVoted(ctx context.Context, ids []string, voter string) (map[string]domain.VotedMarker, error) {
	var resp graphQLResponse[struct {
		Votes []voteDTO `json:"votes"`
	}]
	vars := map[string]any{
		"first":       len(ids),
		"voter":       voter,
		"proposalIds": ids,
	}
	if err := c.post(ctx, votedQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("voted proposals: %w", err)
	}

	voted := make(map[string]domain.VotedMarker, len(resp.Data.Votes))
	for _, dto := range resp.Data.Votes {
		voted[dto.Proposal.ID] = domain.VotedMarker{
			ProposalID: dto.Proposal.ID,
			Voter:      voter,
			Choice:     ChoiceLabel(dto.Proposal.Type, dto.Choice, dto.Proposal.Choices),
			CastAt:     unixTime(dto.Created),
		}
	}
	return voted, nil
}

// FetchProposalVotes loads one page of the votes cast on a proposal, newest
// or heaviest first.
func (c *Client) FetchProposalVotes(ctx context.Context, req domain.VotesRequest) ([]domain.VoteRecord, error) {
	var resp graphQLResponse[struct {
		Votes []voteDTO `json:"votes"`
	}]
	vars := map[string]any{
		"first":   min(req.First, maxPerQuery),
		"skip":    req.Skip,
		"orderBy": string(req.OrderBy),
		"id":      req.ProposalID,
	}
	if err := c.post(ctx, proposalVotesQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("votes of %s: %w", req.ProposalID, err)
	}

	votes := make([]domain.VoteRecord, 0, len(resp.Data.Votes))
	for _, dto := range resp.Data.Votes {
		votes = append(votes, domain.VoteRecord{
			ID:          dto.ID,
			Voter:       dto.Voter,
			Choice:      ChoiceLabel(dto.Proposal.Type, dto.Choice, dto.Proposal.Choices),
			VotingPower: dto.VP,
			Reason:      dto.Reason,
			App:         dto.App,
			Created:     unixTime(dto.Created),
		})
	}
	return votes, nil
}

func (c *Client) post(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var failure struct {
		Errors []graphQLError `json:"errors"`
	}
	if err := json.Unmarshal(raw, &failure); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(failure.Errors) > 0 {
		messages := make([]string, 0, len(failure.Errors))
		for _, e := range failure.Errors {
			messages = append(messages, e.Message)
		}
		return fmt.Errorf("graphql: %s", strings.Join(messages, "; "))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func batchKey(ids []string, voter string) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return voter + "|" + strings.Join(sorted, ",")
}

// cloneBatch copies the maps so callers sharing a flight never alias each other.
func cloneBatch(b domain.VoteBatch) domain.VoteBatch {
	return domain.VoteBatch{Tallies: maps.Clone(b.Tallies), Voted: maps.Clone(b.Voted)}
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
