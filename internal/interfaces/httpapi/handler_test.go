package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/gridironpool/pickem/internal/infrastructure/repository/memory"
	"github.com/gridironpool/pickem/internal/platform/cache"
	"github.com/gridironpool/pickem/internal/platform/logging"
	"github.com/gridironpool/pickem/internal/usecase"
)

const testJobToken = "test-job-token"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	userRepo := memory.NewUserRepository(memory.SeedUsers())
	teamRepo := memory.NewTeamRepository(memory.SeedTeams())
	weekRepo := memory.NewWeekRepository(memory.SeedWeeks())
	gameRepo := memory.NewGameRepository(memory.SeedGames())
	pickRepo := memory.NewPickRepository(gameRepo, memory.SeedPicks())

	logger := logging.NewNop()
	leaderboardService := usecase.NewLeaderboardService(userRepo, gameRepo, pickRepo, 2)
	pickService := usecase.NewPickService(userRepo, gameRepo, pickRepo)
	scheduleService := usecase.NewScheduleService(weekRepo, gameRepo, teamRepo, cache.NewStore(time.Minute))
	resultService := usecase.NewResultService(gameRepo)
	recomputeService := usecase.NewRecomputeService(gameRepo, leaderboardService, nil, logger, 2)
	jobOrchestrator := usecase.NewJobOrchestratorService(nil, usecase.JobOrchestratorConfig{}, logger)

	handler := NewHandler(
		leaderboardService,
		pickService,
		scheduleService,
		resultService,
		recomputeService,
		jobOrchestrator,
		logger,
	)

	return NewRouter(handler, logger, false, nil, testJobToken)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) {
	t.Helper()

	envelope := struct {
		APIVersion string `json:"apiVersion"`
		Data       any    `json:"data"`
	}{Data: data}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.APIVersion != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %q", envelope.APIVersion)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestGetWeeklyLeaderboard(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard/weeks/1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var rows []weeklyLeaderboardRowDTO
	decodeEnvelope(t, rec, &rows)

	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	top := rows[0]
	if top.UserID != "usr-ana" || top.Rank != 1 {
		t.Fatalf("expected usr-ana at rank 1, got %s at rank %d", top.UserID, top.Rank)
	}
	// Double down on the 10-point hawks win doubles it; the lions miss
	// scores zero against the shared two-game denominator.
	if top.TotalPoints != 20 || top.Correct != 1 || top.Attempts != 2 || top.AccuracyPct != 50 {
		t.Fatalf("unexpected top row: %+v", top)
	}
	if len(top.Picks) != 2 {
		t.Fatalf("expected 2 picks on top row, got %d", len(top.Picks))
	}
}

func TestGetWeeklyLeaderboard_BadWeekID(t *testing.T) {
	router := newTestRouter(t)

	for _, raw := range []string{"abc", "0", "-3"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard/weeks/"+raw, nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("week %q: expected status 400, got %d", raw, rec.Code)
		}
	}
}

func TestGetSeasonLeaderboard(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard/overall", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var rows []leaderboardRowDTO
	decodeEnvelope(t, rec, &rows)

	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].UserID != "usr-ana" || rows[0].TotalPoints != 20 {
		t.Fatalf("unexpected season leader: %+v", rows[0])
	}
}

func TestListWeeksAndTeams(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/weeks", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list weeks: expected status 200, got %d", rec.Code)
	}
	var weeks []weekDTO
	decodeEnvelope(t, rec, &weeks)
	if len(weeks) != 18 || weeks[0].ID != 1 {
		t.Fatalf("unexpected weeks: len=%d", len(weeks))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/teams", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list teams: expected status 200, got %d", rec.Code)
	}
	var teams []teamDTO
	decodeEnvelope(t, rec, &teams)
	if len(teams) != 6 {
		t.Fatalf("expected 6 teams, got %d", len(teams))
	}
}

func TestListGamesByWeek_EmbedsTeams(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/weeks/1/games", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var games []gameDTO
	decodeEnvelope(t, rec, &games)

	if len(games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games))
	}
	// Lowest difficulty sorts first.
	if games[0].ID != "gm-2026-w1-col-lio" || games[0].Home.ShortName != "COL" || games[0].Away.ShortName != "LIO" {
		t.Fatalf("unexpected first game: %+v", games[0])
	}
}

func TestListGamesByWeek_EmptyWeekIsEmptyArray(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/weeks/17/games", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("expected empty data array, got %s", rec.Body.String())
	}
}

func TestListPicksByUser(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/usr-ana/picks", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var picks []pickWithGameDTO
	decodeEnvelope(t, rec, &picks)
	if len(picks) != 2 {
		t.Fatalf("expected 2 picks, got %d", len(picks))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/usr-dee/picks?week=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	decodeEnvelope(t, rec, &picks)
	if len(picks) != 0 {
		t.Fatalf("expected 0 picks, got %d", len(picks))
	}
}

func TestListPicksByUser_UnknownUser(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/usr-ghost/picks", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestListPicksByUser_BadWeekQuery(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/usr-ana/picks?week=abc", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSubmitPicks_RejectsBadPayloads(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"user_id": "usr-ana"`, http.StatusBadRequest},
		{"unknown field", `{"user_id":"usr-ana","picks":[{"game_id":"gm-2026-w2-bea-col","selected_team_id":"tm-bears","dobule_down":true}]}`, http.StatusBadRequest},
		{"missing user id", `{"picks":[{"game_id":"gm-2026-w2-bea-col","selected_team_id":"tm-bears"}]}`, http.StatusBadRequest},
		{"empty picks", `{"user_id":"usr-ana","picks":[]}`, http.StatusBadRequest},
		{"unknown user", `{"user_id":"usr-ghost","picks":[{"game_id":"gm-2026-w2-bea-col","selected_team_id":"tm-bears"}]}`, http.StatusNotFound},
		{"unknown game", `{"user_id":"usr-ana","picks":[{"game_id":"gm-ghost","selected_team_id":"tm-bears"}]}`, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/v1/picks", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRecordResult_FlowsIntoLeaderboard(t *testing.T) {
	router := newTestRouter(t)

	body := `{"game_id":"gm-2026-w2-bea-col","winner_team_id":"tm-colts"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/results", strings.NewReader(body))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("record result: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard/weeks/2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("weekly leaderboard: expected status 200, got %d", rec.Code)
	}

	var rows []weeklyLeaderboardRowDTO
	decodeEnvelope(t, rec, &rows)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].UserID != "usr-cam" || rows[0].TotalPoints != 4 {
		t.Fatalf("expected usr-cam leading week 2 with 4 points, got %+v", rows[0])
	}
}

func TestRecordResult_RejectsAmbiguousPayload(t *testing.T) {
	router := newTestRouter(t)

	for _, body := range []string{
		`{"game_id":"gm-2026-w2-bea-col"}`,
		`{"game_id":"gm-2026-w2-bea-col","winner_team_id":"tm-colts","cancelled":true}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/results", strings.NewReader(body))
		req.Header.Set("X-Internal-Job-Token", testJobToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected status 400, got %d", body, rec.Code)
		}
	}
}

func TestInternalRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/v1/internal/jobs/recompute", "/v1/internal/results"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status 401, got %d", path, rec.Code)
		}
	}
}

func TestRunRecomputeJob(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/recompute", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result usecase.RecomputeResult
	decodeEnvelope(t, rec, &result)
	if result.WeekCount != 2 {
		t.Fatalf("expected 2 weeks swept, got %d", result.WeekCount)
	}
	if result.FailedWeeks != 0 {
		t.Fatalf("expected no failed weeks, got %d", result.FailedWeeks)
	}
}
