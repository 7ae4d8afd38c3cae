package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"BingoPulse/internal/domain/models"
	"BingoPulse/internal/usecase"
	xhttp "BingoPulse/pkg/http"

	"github.com/labstack/echo/v4"
)

type stubPredictions struct {
	state     models.PredictionState
	fetchErr  error
	fetches   int
	lastInput string
}

func (s *stubPredictions) State() models.PredictionState { return s.state }

func (s *stubPredictions) SetAnalysisWindow(_ context.Context, candidate string) (bool, error) {
	s.lastInput = candidate
	w, ok := models.ParseAnalysisWindow(candidate)
	if !ok {
		return false, nil
	}
	s.state.Window = w
	return true, s.FetchAll(context.Background())
}

func (s *stubPredictions) FetchAll(context.Context) error {
	s.fetches++
	return s.fetchErr
}

type stubWatchdog struct {
	outcome usecase.Outcome
	err     error
	forced  int
}

func (w *stubWatchdog) Status() models.WatchdogStatus { return models.WatchdogStatus{Running: true} }

func (w *stubWatchdog) ForceRefresh(context.Context) (usecase.Outcome, error) {
	w.forced++
	return w.outcome, w.err
}

type stubLedger struct {
	state     models.LedgerState
	lastQuery models.BetQuery
	placed    []models.PlaceBetRequest
	placeErr  error
	cancelled []int64
}

func (l *stubLedger) State() models.LedgerState { return l.state }

func (l *stubLedger) FetchBets(_ context.Context, q models.BetQuery) error {
	l.lastQuery = q
	l.state.Query = q
	return nil
}

func (l *stubLedger) FetchStats(context.Context) {}

func (l *stubLedger) PlaceBet(_ context.Context, req models.PlaceBetRequest) ([]models.Bet, error) {
	if l.placeErr != nil {
		return nil, l.placeErr
	}
	l.placed = append(l.placed, req)
	return []models.Bet{{ID: 1, BetType: req.BetType, Status: models.BetPending}}, nil
}

func (l *stubLedger) SettleBets(context.Context) (*models.SettlementSummary, error) {
	return &models.SettlementSummary{SettledCount: 2, DrawTerm: "113000100"}, nil
}

func (l *stubLedger) CancelBet(_ context.Context, id int64) (*models.CancelAck, error) {
	l.cancelled = append(l.cancelled, id)
	return &models.CancelAck{OK: true, ID: id}, nil
}

func (l *stubLedger) NextDraw(context.Context) (*models.NextDraw, error) {
	return &models.NextDraw{Term: "113000101"}, nil
}

type stubAnalysis struct {
	metric  models.Metric
	query   models.AnalysisQuery
	windows []int
}

func (a *stubAnalysis) Metric(_ context.Context, m models.Metric, q models.AnalysisQuery) (json.RawMessage, error) {
	a.metric, a.query = m, q
	return json.RawMessage(`{"ok":true}`), nil
}

func (a *stubAnalysis) BasicBatch(_ context.Context, windows []int, topN int) (map[int]models.Ranking, error) {
	a.windows = windows
	out := make(map[int]models.Ranking, len(windows))
	for _, w := range windows {
		out[w] = models.Ranking{PeriodRange: w}
	}
	return out, nil
}

func (a *stubAnalysis) DrawByTerm(_ context.Context, term string) (*models.DrawRecord, error) {
	if term == "404" {
		return nil, &xhttp.StatusError{Status: http.StatusNotFound, Detail: "draw not found"}
	}
	return &models.DrawRecord{Term: term}, nil
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

type fixture struct {
	e    *echo.Echo
	pred *stubPredictions
	wd   *stubWatchdog
	led  *stubLedger
	an   *stubAnalysis
}

func newFixture(limiter RefreshLimiter) *fixture {
	f := &fixture{
		e:    echo.New(),
		pred: &stubPredictions{state: models.PredictionState{Window: 50}},
		wd:   &stubWatchdog{},
		led:  &stubLedger{},
		an:   &stubAnalysis{},
	}
	NewDashboardEchoHandler(nil, f.pred, f.wd, f.led, f.an, limiter).RegisterRoutes(f.e)
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, resp.Data)
	}
}

func TestSetWindowAppliesValidInput(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodPut, "/api/window", `{"window":"30"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var out WindowResponse
	decodeData(t, rec, &out)
	if !out.Applied || out.Window != 30 || f.pred.fetches != 1 {
		t.Fatalf("unexpected response %+v, fetches=%d", out, f.pred.fetches)
	}
}

func TestSetWindowIgnoresInvalidInput(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodPut, "/api/window", `{"window":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var out WindowResponse
	decodeData(t, rec, &out)
	if out.Applied || out.Window != 50 || f.pred.fetches != 0 {
		t.Fatalf("invalid window should be a no-op: %+v fetches=%d", out, f.pred.fetches)
	}
	if f.pred.lastInput != "3" {
		t.Fatalf("candidate passed as %q", f.pred.lastInput)
	}
}

func TestSetWindowZeroOrMissingIsNoOp(t *testing.T) {
	for body, want := range map[string]string{`{"window":0}`: "0", `{}`: ""} {
		f := newFixture(nil)
		rec := f.do(http.MethodPut, "/api/window", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", body, rec.Code)
		}
		var out WindowResponse
		decodeData(t, rec, &out)
		if out.Applied || out.Window != 50 || f.pred.fetches != 0 {
			t.Fatalf("%s: should be a no-op: %+v fetches=%d", body, out, f.pred.fetches)
		}
		if f.pred.lastInput != want {
			t.Fatalf("%s: candidate passed as %q", body, f.pred.lastInput)
		}
	}
}

func TestRefreshSupersededIsAccepted(t *testing.T) {
	f := newFixture(nil)
	f.pred.fetchErr = usecase.ErrSuperseded
	if rec := f.do(http.MethodPost, "/api/refresh", ""); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
}

func TestRefreshFailureIsBadGateway(t *testing.T) {
	f := newFixture(nil)
	f.pred.fetchErr = errors.New("connection refused")
	if rec := f.do(http.MethodPost, "/api/refresh", ""); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestForcedRefreshUsesWatchdog(t *testing.T) {
	f := newFixture(nil)
	f.wd.outcome = usecase.Changed
	rec := f.do(http.MethodPost, "/api/refresh?force=true", "")
	if rec.Code != http.StatusOK || f.wd.forced != 1 || f.pred.fetches != 0 {
		t.Fatalf("status %d forced=%d fetches=%d", rec.Code, f.wd.forced, f.pred.fetches)
	}
	var out RefreshResponse
	decodeData(t, rec, &out)
	if out.Outcome != "changed" {
		t.Fatalf("outcome %q", out.Outcome)
	}
}

func TestRefreshRateLimited(t *testing.T) {
	f := newFixture(denyAll{})
	if rec := f.do(http.MethodPost, "/api/refresh", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if f.pred.fetches != 0 {
		t.Fatalf("limited refresh must not fetch")
	}
}

func TestDrawNotFoundKeepsUpstreamStatus(t *testing.T) {
	f := newFixture(nil)
	if rec := f.do(http.MethodGet, "/api/draws/404", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/draws/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMetricRoutes(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodGet, "/api/analysis/cold-hot-cycle?window=30&top_n=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if f.an.metric != models.MetricColdHotCycle || f.an.query.Window != 30 || f.an.query.TopN != 5 {
		t.Fatalf("unexpected call %s %+v", f.an.metric, f.an.query)
	}
	if rec := f.do(http.MethodGet, "/api/analysis/astrology", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown metric: %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/analysis/cold_hot_cycle?window=2", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("small window: %d", rec.Code)
	}
}

func TestBasicBatch(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodGet, "/api/analysis/basic-batch?windows=30,50,100", "")
	if rec.Code != http.StatusOK || len(f.an.windows) != 3 {
		t.Fatalf("status %d windows %v", rec.Code, f.an.windows)
	}
	if rec := f.do(http.MethodGet, "/api/analysis/basic-batch?windows=30,4", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBetsDefaultsPage(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodGet, "/api/bets?status=pending", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if f.led.lastQuery.Limit != 50 || f.led.lastQuery.Status != models.BetPending {
		t.Fatalf("unexpected query %+v", f.led.lastQuery)
	}
	if rec := f.do(http.MethodGet, "/api/bets?status=void", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d", rec.Code)
	}
}

func TestPlaceBet(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodPost, "/api/bets", `{"bet_type":"basic","star_level":3,"selected_numbers":["01","02","03"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.led.placed) != 1 || f.led.placed[0].Multiplier != 1 || f.led.placed[0].BetPeriods != 1 {
		t.Fatalf("defaults not applied: %+v", f.led.placed)
	}

	rec = f.do(http.MethodPost, "/api/bets", `{"bet_type":"basic","star_level":3,"selected_numbers":["01"]}`)
	if rec.Code != http.StatusBadRequest || len(f.led.placed) != 1 {
		t.Fatalf("mismatched selection: %d", rec.Code)
	}
}

func TestPlaceBetRejectedKeepsUpstreamDetail(t *testing.T) {
	f := newFixture(nil)
	f.led.placeErr = &usecase.LedgerError{
		Op:      "place_bet",
		Message: "betting closed",
		Err:     &xhttp.StatusError{Status: http.StatusUnprocessableEntity, Detail: "betting closed"},
	}
	rec := f.do(http.MethodPost, "/api/bets", `{"bet_type":"high_low","selected_option":"大"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "betting closed") {
		t.Fatalf("detail lost: %s", rec.Body.String())
	}
}

func TestCancelBet(t *testing.T) {
	f := newFixture(nil)
	if rec := f.do(http.MethodDelete, "/api/bets/7", ""); rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if len(f.led.cancelled) != 1 || f.led.cancelled[0] != 7 {
		t.Fatalf("cancelled %v", f.led.cancelled)
	}
	if rec := f.do(http.MethodDelete, "/api/bets/x", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStatsUnavailable(t *testing.T) {
	f := newFixture(nil)
	if rec := f.do(http.MethodGet, "/api/stats", ""); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
