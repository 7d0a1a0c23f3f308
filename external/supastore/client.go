// Package supastore is a PostgREST read/write client for a Supabase-style
// data plane. It implements the domain repository interfaces over the
// REST surface instead of a SQL driver, which is why the embedded game
// relation resolver lives here: PostgREST is the only backend that
// delivers a joined row as object-or-singleton-array-or-null.
package supastore

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/gridironpool/pickem/internal/domain/game"
	"github.com/gridironpool/pickem/internal/domain/pick"
	"github.com/gridironpool/pickem/internal/domain/team"
	"github.com/gridironpool/pickem/internal/domain/user"
	"github.com/gridironpool/pickem/internal/domain/week"
	"github.com/gridironpool/pickem/internal/platform/logging"
	"github.com/gridironpool/pickem/internal/platform/resilience"
	"github.com/gridironpool/pickem/internal/usecase"
)

var errSupastoreTransient = crerr.New("supastore transient failure")

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	http           *fasthttp.Client
	baseURL        string
	apiKey         string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:         strings.TrimSpace(cfg.APIKey),
		timeout:        timeout,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// --- user.Repository

func (c *Client) ListUsers(ctx context.Context) ([]user.User, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "id.asc")

	var rows []userRow
	if err := c.getJSON(ctx, "users", query, &rows); err != nil {
		return nil, err
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (c *Client) GetUserByID(ctx context.Context, id string) (user.User, bool, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("id", "eq."+id)
	query.Set("limit", "1")

	var rows []userRow
	if err := c.getJSON(ctx, "users", query, &rows); err != nil {
		return user.User{}, false, err
	}
	if len(rows) == 0 {
		return user.User{}, false, nil
	}
	return rows[0].toDomain(), true, nil
}

// --- team.Repository

func (c *Client) ListTeams(ctx context.Context) ([]team.Team, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "id.asc")

	var rows []teamRow
	if err := c.getJSON(ctx, "teams", query, &rows); err != nil {
		return nil, err
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (c *Client) GetTeamByID(ctx context.Context, id string) (team.Team, bool, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("id", "eq."+id)
	query.Set("limit", "1")

	var rows []teamRow
	if err := c.getJSON(ctx, "teams", query, &rows); err != nil {
		return team.Team{}, false, err
	}
	if len(rows) == 0 {
		return team.Team{}, false, nil
	}
	return rows[0].toDomain(), true, nil
}

// --- week.Repository

func (c *Client) ListWeeks(ctx context.Context) ([]week.Week, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "id.asc")

	var rows []weekRow
	if err := c.getJSON(ctx, "weeks", query, &rows); err != nil {
		return nil, err
	}

	out := make([]week.Week, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (c *Client) GetWeekByTime(ctx context.Context, at time.Time) (week.Week, bool, error) {
	stamp := formatPostgrestTime(at)
	query := url.Values{}
	query.Set("select", "*")
	query.Set("start_date", "lte."+stamp)
	query.Set("end_date", "gte."+stamp)
	query.Set("limit", "1")

	var rows []weekRow
	if err := c.getJSON(ctx, "weeks", query, &rows); err != nil {
		return week.Week{}, false, err
	}
	if len(rows) == 0 {
		return week.Week{}, false, nil
	}
	return rows[0].toDomain(), true, nil
}

// --- game.Repository

func (c *Client) ListGames(ctx context.Context) ([]game.Game, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "week.asc,kickoff_time.asc,id.asc")

	var rows []gameRow
	if err := c.getJSON(ctx, "games", query, &rows); err != nil {
		return nil, err
	}

	return gamesToDomain(rows), nil
}

func (c *Client) ListGamesByWeek(ctx context.Context, weekID int) ([]game.Game, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("week", "eq."+strconv.Itoa(weekID))
	query.Set("order", "kickoff_time.asc,id.asc")

	var rows []gameRow
	if err := c.getJSON(ctx, "games", query, &rows); err != nil {
		return nil, err
	}

	return gamesToDomain(rows), nil
}

func (c *Client) GetGameByID(ctx context.Context, id string) (game.Game, bool, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("id", "eq."+id)
	query.Set("limit", "1")

	var rows []gameRow
	if err := c.getJSON(ctx, "games", query, &rows); err != nil {
		return game.Game{}, false, err
	}
	if len(rows) == 0 {
		return game.Game{}, false, nil
	}
	return rows[0].toDomain(), true, nil
}

// SetGameWinner asks PostgREST for the updated representation so a
// write-once violation shows up as zero returned rows, not silence.
func (c *Client) SetGameWinner(ctx context.Context, gameID, winnerTeamID string) error {
	query := url.Values{}
	query.Set("id", "eq."+gameID)
	query.Set("cancelled", "is.false")
	query.Set("winner_id", "is.null")

	body, err := sonic.Marshal(map[string]string{"winner_id": winnerTeamID})
	if err != nil {
		return crerr.Wrap(err, "marshal winner update")
	}

	raw, err := c.do(ctx, fasthttp.MethodPatch, "games", query, body, "return=representation")
	if err != nil {
		return fmt.Errorf("set winner game=%s: %w", gameID, err)
	}

	var rows []gameRow
	if err := sonic.Unmarshal(raw, &rows); err != nil {
		return crerr.Wrap(err, "unmarshal winner update result")
	}
	if len(rows) == 0 {
		return crerr.Newf("game %s is not open for a result", gameID)
	}

	return nil
}

func (c *Client) SetGameCancelled(ctx context.Context, gameID string) error {
	query := url.Values{}
	query.Set("id", "eq."+gameID)
	query.Set("winner_id", "is.null")

	body, err := sonic.Marshal(map[string]bool{"cancelled": true})
	if err != nil {
		return crerr.Wrap(err, "marshal cancel update")
	}

	raw, err := c.do(ctx, fasthttp.MethodPatch, "games", query, body, "return=representation")
	if err != nil {
		return fmt.Errorf("cancel game=%s: %w", gameID, err)
	}

	var rows []gameRow
	if err := sonic.Unmarshal(raw, &rows); err != nil {
		return crerr.Wrap(err, "unmarshal cancel update result")
	}
	if len(rows) == 0 {
		return crerr.Newf("game %s cannot be cancelled", gameID)
	}

	return nil
}

// --- pick.Repository

func (c *Client) ListPicks(ctx context.Context) ([]pick.Pick, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "user_id.asc,game_id.asc")

	var rows []pickRow
	if err := c.getJSON(ctx, "picks", query, &rows); err != nil {
		return nil, err
	}

	return picksToDomain(rows), nil
}

func (c *Client) ListPicksByGameIDs(ctx context.Context, gameIDs []string) ([]pick.Pick, error) {
	if len(gameIDs) == 0 {
		return []pick.Pick{}, nil
	}

	query := url.Values{}
	query.Set("select", "*")
	query.Set("game_id", inFilter(gameIDs))
	query.Set("order", "user_id.asc,game_id.asc")

	var rows []pickRow
	if err := c.getJSON(ctx, "picks", query, &rows); err != nil {
		return nil, err
	}

	return picksToDomain(rows), nil
}

func (c *Client) ListPicksByUser(ctx context.Context, userID string, gameIDs []string) ([]pick.Pick, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("user_id", "eq."+userID)
	if len(gameIDs) > 0 {
		query.Set("game_id", inFilter(gameIDs))
	}
	query.Set("order", "game_id.asc")

	var rows []pickRow
	if err := c.getJSON(ctx, "picks", query, &rows); err != nil {
		return nil, err
	}

	return picksToDomain(rows), nil
}

// ListPicksByUserWithGames embeds the game relation. Week scoping uses an
// inner join so picks outside the week drop out server-side; the unscoped
// listing keeps picks whose game is gone, resolved to a nil Game.
func (c *Client) ListPicksByUserWithGames(ctx context.Context, userID string, weekID *int) ([]pick.WithGame, error) {
	query := url.Values{}
	query.Set("user_id", "eq."+userID)
	query.Set("order", "game_id.asc")
	if weekID != nil {
		query.Set("select", "*,games!inner(*)")
		query.Set("games.week", "eq."+strconv.Itoa(*weekID))
	} else {
		query.Set("select", "*,games(*)")
	}

	var rows []pickRow
	if err := c.getJSON(ctx, "picks", query, &rows); err != nil {
		return nil, err
	}

	out := make([]pick.WithGame, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomainWithGame())
	}
	return out, nil
}

func (c *Client) UpsertPicks(ctx context.Context, picks []pick.Pick) error {
	if len(picks) == 0 {
		return nil
	}

	rows := make([]pickInsertRow, 0, len(picks))
	for _, p := range picks {
		rows = append(rows, pickInsertRow{
			UserID:         p.UserID,
			GameID:         p.GameID,
			SelectedTeamID: p.SelectedTeamID,
			DoubleDown:     p.DoubleDown,
			SubmittedAt:    formatPostgrestTime(p.SubmittedAt),
		})
	}

	body, err := sonic.Marshal(rows)
	if err != nil {
		return crerr.Wrap(err, "marshal picks upsert")
	}

	if _, err := c.do(ctx, fasthttp.MethodPost, "picks", nil, body, "resolution=merge-duplicates,return=minimal"); err != nil {
		return fmt.Errorf("upsert %d picks: %w", len(picks), err)
	}

	return nil
}

// --- transport

// getJSON collapses identical concurrent reads through singleflight; the
// shared raw body is decoded per caller.
func (c *Client) getJSON(ctx context.Context, table string, query url.Values, target any) error {
	key := table + "?" + query.Encode()

	value, err, _ := c.flight.Do(key, func() (any, error) {
		return c.do(ctx, fasthttp.MethodGet, table, query, nil, "")
	})
	if err != nil {
		return err
	}

	raw, ok := value.([]byte)
	if !ok {
		return crerr.Newf("unexpected singleflight value type %T", value)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrapf(err, "unmarshal %s response", table)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body []byte, prefer string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, crerr.New("supastore base url is required")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "supastore circuit breaker rejected request", "table", table, "state", c.breaker.State())
			return nil, fmt.Errorf("%w: supastore is temporarily unavailable: %v", usecase.ErrDependencyUnavailable, err)
		}
	}

	requestURI := c.buildURI(table, query)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := c.roundTrip(ctx, method, requestURI, body, prefer)
		c.recordCircuitResult(err)
		if err == nil {
			return raw, nil
		}

		lastErr = err
		if !stderrors.Is(err, errSupastoreTransient) {
			return nil, err
		}
		if attempt < c.maxRetries {
			c.logger.WarnContext(ctx, "supastore request retry", "table", table, "attempt", attempt+1, "error", err)
		}
	}

	return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, lastErr)
}

func (c *Client) roundTrip(ctx context.Context, method, requestURI string, body []byte, prefer string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(requestURI)
	req.Header.SetMethod(method)
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	if len(body) > 0 {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, ctx.Err()
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", errSupastoreTransient, method, requestURI, err)
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		raw := resp.Body()
		if isRetryableStatus(status) {
			return nil, fmt.Errorf("%w: %s %s status=%d body=%s", errSupastoreTransient, method, requestURI, status, previewJSON(raw))
		}
		return nil, crerr.Newf("supastore %s %s status=%d body=%s", method, requestURI, status, previewJSON(raw))
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}

func (c *Client) buildURI(table string, query url.Values) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	_, _ = buf.WriteString("/rest/v1/")
	_, _ = buf.WriteString(table)
	if len(query) > 0 {
		_, _ = buf.WriteString("?")
		_, _ = buf.WriteString(query.Encode())
	}

	return buf.String()
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled || c.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errSupastoreTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= 500
}

func inFilter(values []string) string {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)

	quoted := make([]string, 0, len(sorted))
	for _, v := range sorted {
		quoted = append(quoted, `"`+strings.ReplaceAll(v, `"`, ``)+`"`)
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}

func gamesToDomain(rows []gameRow) []game.Game {
	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

func picksToDomain(rows []pickRow) []pick.Pick {
	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
