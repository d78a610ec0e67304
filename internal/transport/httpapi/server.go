package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ProposalBoard/internal/domain"
)

const requestIDHeader = "X-Request-ID"

// maxPagesPerRequest bounds the size parameter of a single list request.
const maxPagesPerRequest = 20

// ListService produces ranked proposal windows.
type ListService interface {
	FetchPages(ctx context.Context, q domain.Query, address string, size int) (domain.ProposalListPage, error)
}

// CycleService reports the current governance event of a space.
type CycleService interface {
	Countdown(ctx context.Context, space string) (domain.SpaceInfo, domain.Countdown, error)
}

// VoteService pages through the votes cast on one proposal.
type VoteService interface {
	List(ctx context.Context, q domain.VotesQuery) (domain.VoteList, error)
}

// Service exposes the proposal board as a JSON API.
type Service struct {
	engine       *gin.Engine
	lists        ListService
	cycles       CycleService
	votes        VoteService
	defaultLimit int
	now          func() time.Time
	logger       *slog.Logger
	server       *http.Server
}

// NewService registers the routes. defaultLimit applies when a request omits limit.
func NewService(listenAddr string, lists ListService, cycles CycleService, votes VoteService, defaultLimit int, logger *slog.Logger) *Service {
	r := gin.New()
	s := &Service{
		engine:       r,
		lists:        lists,
		cycles:       cycles,
		votes:        votes,
		defaultLimit: defaultLimit,
		now:          time.Now,
		logger:       logger,
		server:       &http.Server{Addr: listenAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second},
	}

	r.Use(gin.Recovery(), s.requestID(), s.accessLog())
	r.GET("/healthz", s.handleHealth)
	api := r.Group("/api/spaces/:space")
	api.GET("/proposals", s.handleProposals)
	api.GET("/cycle", s.handleCycle)
	r.GET("/api/votes/:proposal", s.handleVotes)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called.
func (s *Service) Start() error {
	s.info("http api listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", s.server.Addr, err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type proposalView struct {
	ID                    string     `json:"id"`
	ProposalNumber        *int       `json:"proposalId,omitempty"`
	Title                 string     `json:"title"`
	Status                string     `json:"status"`
	GovernanceCycle       *int       `json:"governanceCycle,omitempty"`
	AuthorAddress         string     `json:"authorAddress,omitempty"`
	VoteKey               string     `json:"voteKey,omitempty"`
	TemperatureCheckVotes *[2]int    `json:"temperatureCheckVotes,omitempty"`
	VoteResults           *tallyView `json:"voteResults,omitempty"`
}

type tallyView struct {
	Choices     []string  `json:"choices"`
	Scores      []float64 `json:"scores"`
	Votes       int       `json:"votes"`
	Type        string    `json:"type,omitempty"`
	State       string    `json:"state,omitempty"`
	ScoresTotal float64   `json:"scoresTotal"`
	Window      string    `json:"window"`
	WindowLabel string    `json:"windowLabel,omitempty"`
}

type votedView struct {
	Choice string    `json:"choice"`
	CastAt time.Time `json:"castAt"`
}

type draftView struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	AuthorAddress string `json:"authorAddress,omitempty"`
}

type proposalsResponse struct {
	Proposals        []proposalView       `json:"proposals"`
	PrivateProposals []draftView          `json:"privateProposals,omitempty"`
	HasMore          bool                 `json:"hasMore"`
	Pages            int                  `json:"pages"`
	Voted            map[string]votedView `json:"voted"`
	Empty            bool                 `json:"empty"`
	Degraded         bool                 `json:"degraded"`
	DegradedReason   string               `json:"degradedReason,omitempty"`
}

type voteView struct {
	ID          string    `json:"id"`
	Voter       string    `json:"voter"`
	Choice      string    `json:"choice"`
	VotingPower float64   `json:"vp"`
	Reason      string    `json:"reason,omitempty"`
	App         string    `json:"app,omitempty"`
	Created     time.Time `json:"created"`
}

type votesResponse struct {
	Proposal string     `json:"proposal"`
	Votes    []voteView `json:"votes"`
	Total    int        `json:"total"`
	Tally    *tallyView `json:"tally,omitempty"`
}

type cycleResponse struct {
	Space         string    `json:"space"`
	SnapshotSpace string    `json:"snapshotSpace,omitempty"`
	Cycle         int       `json:"cycle"`
	Event         string    `json:"event"`
	EndsAt        time.Time `json:"endsAt"`
	RemainingSecs int64     `json:"remainingSeconds"`
	Label         string    `json:"label"`
}

func (s *Service) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Service) handleProposals(c *gin.Context) {
	q, size, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := s.lists.FetchPages(c.Request.Context(), q, c.Query("address"), size)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.toResponse(page))
}

func (s *Service) handleCycle(c *gin.Context) {
	space := c.Param("space")
	info, cd, err := s.cycles.Countdown(c.Request.Context(), space)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, cycleResponse{
		Space:         space,
		SnapshotSpace: info.SnapshotSpace,
		Cycle:         cd.Cycle,
		Event:         cd.Event,
		EndsAt:        cd.EndsAt,
		RemainingSecs: int64(cd.Remaining / time.Second),
		Label:         cd.Label,
	})
}

func (s *Service) handleVotes(c *gin.Context) {
	q, err := parseVotesQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := s.votes.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	resp := votesResponse{
		Proposal: domain.VoteKey(q.ProposalID),
		Votes:    make([]voteView, 0, len(list.Votes)),
		Total:    list.Total,
	}
	for _, v := range list.Votes {
		resp.Votes = append(resp.Votes, voteView{
			ID:          v.ID,
			Voter:       v.Voter,
			Choice:      v.Choice,
			VotingPower: v.VotingPower,
			Reason:      v.Reason,
			App:         v.App,
			Created:     v.Created,
		})
	}
	if list.Tally != nil {
		resp.Tally = s.tally(list.Tally)
	}
	c.JSON(http.StatusOK, resp)
}

func parseVotesQuery(c *gin.Context) (domain.VotesQuery, error) {
	q := domain.VotesQuery{
		ProposalID: c.Param("proposal"),
		OrderBy:    domain.VoteOrder(c.Query("orderBy")),
		With:       domain.VoteField(c.Query("with")),
	}
	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			return domain.VotesQuery{}, fmt.Errorf("skip: %w", err)
		}
		q.Skip = skip
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return domain.VotesQuery{}, fmt.Errorf("limit: %w", err)
		}
		q.Limit = limit
	}
	return q, nil
}

func (s *Service) parseQuery(c *gin.Context) (domain.Query, int, error) {
	q := domain.Query{
		Space:    c.Param("space"),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Limit:    s.defaultLimit,
		SortBy:   domain.SortKey(c.Query("sortBy")),
		SortDesc: true,
	}

	if raw := c.Query("cycle"); raw != "" {
		cycle, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Query{}, 0, fmt.Errorf("cycle: %w", err)
		}
		q.Cycle = &cycle
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Query{}, 0, fmt.Errorf("limit: %w", err)
		}
		q.Limit = limit
	}
	if raw := c.Query("sortDesc"); raw != "" {
		desc, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Query{}, 0, fmt.Errorf("sortDesc: %w", err)
		}
		q.SortDesc = desc
	}
	if raw := c.Query("showDrafts"); raw != "" {
		drafts, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Query{}, 0, fmt.Errorf("showDrafts: %w", err)
		}
		q.ShowDrafts = drafts
	}

	size := 1
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPagesPerRequest {
			return domain.Query{}, 0, fmt.Errorf("size must be between 1 and %d", maxPagesPerRequest)
		}
		size = n
	}

	if err := q.Validate(); err != nil {
		return domain.Query{}, 0, err
	}
	return q, size, nil
}

func (s *Service) tally(t *domain.VoteTally) *tallyView {
	return tallyAt(t, s.now())
}

func tallyAt(t *domain.VoteTally, now time.Time) *tallyView {
	window := t.Window(now)
	return &tallyView{
		Choices:     t.Choices,
		Scores:      t.Scores,
		Votes:       t.TotalVotes,
		Type:        t.Type,
		State:       t.State,
		ScoresTotal: t.ScoresTotal,
		Window:      string(window.Phase),
		WindowLabel: window.Label,
	}
}

func (s *Service) toResponse(page domain.ProposalListPage) proposalsResponse {
	now := s.now()
	resp := proposalsResponse{
		Proposals:      make([]proposalView, 0, len(page.Items)),
		HasMore:        page.HasMore,
		Pages:          len(page.Pages),
		Voted:          make(map[string]votedView, len(page.Voted)),
		Empty:          page.Empty,
		Degraded:       page.Degraded,
		DegradedReason: page.DegradedReason,
	}

	for _, item := range page.Items {
		view := proposalView{
			ID:                    item.ID,
			ProposalNumber:        item.ProposalNumber,
			Title:                 item.Title,
			Status:                string(item.Status),
			GovernanceCycle:       item.GovernanceCycle,
			AuthorAddress:         item.AuthorAddress,
			VoteKey:               item.VoteKey(),
			TemperatureCheckVotes: item.TemperatureCheckVotes,
		}
		if item.VoteResults != nil {
			view.VoteResults = tallyAt(item.VoteResults, now)
		}
		resp.Proposals = append(resp.Proposals, view)
	}
	for _, draft := range page.PrivateProposals {
		resp.PrivateProposals = append(resp.PrivateProposals, draftView{
			ID:            draft.ID,
			Title:         draft.Title,
			Status:        string(draft.Status),
			AuthorAddress: draft.AuthorAddress,
		})
	}

	for id, marker := range page.Voted {
		resp.Voted[id] = votedView{Choice: marker.Choice, CastAt: marker.CastAt}
	}
	return resp
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSpaceNotFound), errors.Is(err, domain.ErrVoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSourceUnavailable), errors.Is(err, domain.ErrVoteSourceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Service) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if s.logger == nil {
			return
		}
		s.logger.Info("request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Service) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
