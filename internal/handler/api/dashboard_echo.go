package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"BingoPulse/internal/domain/models"
	"BingoPulse/internal/usecase"
	xhttp "BingoPulse/pkg/http"
	xlogger "BingoPulse/pkg/logger"
	"BingoPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// DashboardEchoHandler exposes the stores over HTTP for the dashboard UI.
type DashboardEchoHandler struct {
	logger      *xlogger.Logger
	predictions PredictionStore
	watchdog    WatchdogControl
	ledger      LedgerStore
	analysis    AnalysisService
	limiter     RefreshLimiter
}

func NewDashboardEchoHandler(
	logger *xlogger.Logger,
	predictions PredictionStore,
	watchdog WatchdogControl,
	ledger LedgerStore,
	analysis AnalysisService,
	limiter RefreshLimiter,
) *DashboardEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &DashboardEchoHandler{
		logger:      logger.Named("api"),
		predictions: predictions,
		watchdog:    watchdog,
		ledger:      ledger,
		analysis:    analysis,
		limiter:     limiter,
	}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/snapshot", h.Snapshot)
	g.POST("/refresh", h.Refresh)
	g.PUT("/window", h.SetWindow)
	g.GET("/watchdog", h.Watchdog)

	g.GET("/draws/:term", h.Draw)
	g.GET("/analysis/basic-batch", h.BasicBatch)
	g.GET("/analysis/:metric", h.Metric)

	g.GET("/ledger", h.Ledger)
	g.GET("/bets", h.Bets)
	g.POST("/bets", h.PlaceBet)
	g.POST("/bets/settle", h.Settle)
	g.DELETE("/bets/:id", h.CancelBet)
	g.GET("/stats", h.Stats)
	g.GET("/next-draw", h.NextDraw)
}

func (h *DashboardEchoHandler) Snapshot(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, h.predictions.State())
}

// Refresh reruns the fan-out fetch. With force=true the backend is first
// asked to recompute and the watchdog decides whether to refetch.
func (h *DashboardEchoHandler) Refresh(c echo.Context) error {
	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("refresh rate exceeded"))
	}
	ctx := c.Request().Context()

	if force, _ := strconv.ParseBool(c.QueryParam("force")); force && h.watchdog != nil {
		outcome, err := h.watchdog.ForceRefresh(ctx)
		if err != nil && !errors.Is(err, usecase.ErrSuperseded) {
			h.logger.Warn("forced refresh failed", xlogger.Error(err))
			return upstreamError(c, err)
		}
		return xhttp.SuccessResponse(c, RefreshResponse{Outcome: outcome.String(), Pending: err != nil, State: h.predictions.State()})
	}

	err := h.predictions.FetchAll(ctx)
	switch {
	case errors.Is(err, usecase.ErrSuperseded):
		return xhttp.AcceptedResponse(c, RefreshResponse{Pending: true, State: h.predictions.State()})
	case err != nil:
		h.logger.Warn("refresh failed", xlogger.Error(err))
		return upstreamError(c, err)
	}
	return xhttp.SuccessResponse(c, RefreshResponse{State: h.predictions.State()})
}

// SetWindow applies a new analysis window. Input that is not a valid window
// is ignored and reported with applied=false.
func (h *DashboardEchoHandler) SetWindow(c echo.Context) error {
	req := &WindowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var candidate string
	if req.Window != nil {
		candidate = fmt.Sprint(req.Window)
	}

	applied, err := h.predictions.SetAnalysisWindow(c.Request().Context(), candidate)
	pending := errors.Is(err, usecase.ErrSuperseded)
	if err != nil && !pending {
		h.logger.Warn("window refetch failed", xlogger.String("window", candidate), xlogger.Error(err))
		return upstreamError(c, err)
	}
	st := h.predictions.State()
	return xhttp.SuccessResponse(c, WindowResponse{Applied: applied, Window: st.Window, Pending: pending, State: st})
}

func (h *DashboardEchoHandler) Watchdog(c echo.Context) error {
	if h.watchdog == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("watchdog disabled"))
	}
	return xhttp.SuccessResponse(c, h.watchdog.Status())
}

func (h *DashboardEchoHandler) Draw(c echo.Context) error {
	term := c.Param("term")
	if _, err := strconv.ParseUint(term, 10, 64); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid draw term %q", term))
	}
	d, err := h.analysis.DrawByTerm(c.Request().Context(), term)
	if err != nil {
		return upstreamError(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.SuccessResponse(c, d)
}

func (h *DashboardEchoHandler) Metric(c echo.Context) error {
	m, ok := models.ParseMetric(c.Param("metric"))
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown metric %q", c.Param("metric")))
	}
	q := &models.AnalysisQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, q); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	raw, err := h.analysis.Metric(c.Request().Context(), m, *q)
	if err != nil {
		h.logger.Error("metric read failed", xlogger.String("metric", string(m)), xlogger.Error(err))
		return upstreamError(c, err)
	}
	return xhttp.SuccessResponse(c, raw)
}

func (h *DashboardEchoHandler) BasicBatch(c echo.Context) error {
	req := &BasicBatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	windows, ok := util.ParseIntList(req.Windows)
	if !ok || len(windows) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("windows must be a comma separated list of integers"))
	}
	for _, w := range windows {
		if w < models.MinAnalysisWindow {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("window %d below minimum %d", w, models.MinAnalysisWindow))
		}
	}
	res, err := h.analysis.BasicBatch(c.Request().Context(), windows, req.TopN)
	if err != nil {
		return upstreamError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Ledger(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.ledger.State())
}

func (h *DashboardEchoHandler) Bets(c echo.Context) error {
	q := &models.BetQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, q); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.ledger.FetchBets(c.Request().Context(), *q); err != nil && !errors.Is(err, usecase.ErrSuperseded) {
		return upstreamError(c, err)
	}
	st := h.ledger.State()
	return xhttp.ListResponse(c, st.Bets, st.Total, st.Query.Limit, st.Query.Offset)
}

func (h *DashboardEchoHandler) PlaceBet(c echo.Context) error {
	req := &models.PlaceBetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := req.CheckSelection(); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_INVALID_SELECTION", "numbers", err.Error(), http.StatusBadRequest))
	}
	bets, err := h.ledger.PlaceBet(c.Request().Context(), *req)
	if err != nil {
		return h.mutationError(c, err)
	}
	return xhttp.CreatedResponse(c, BetMutationResponse{Bets: bets, Ledger: h.ledger.State()})
}

func (h *DashboardEchoHandler) Settle(c echo.Context) error {
	sum, err := h.ledger.SettleBets(c.Request().Context())
	if err != nil {
		return h.mutationError(c, err)
	}
	return xhttp.SuccessResponse(c, BetMutationResponse{Settled: sum, Ledger: h.ledger.State()})
}

func (h *DashboardEchoHandler) CancelBet(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid bet id %q", c.Param("id")))
	}
	ack, err := h.ledger.CancelBet(c.Request().Context(), id)
	if err != nil {
		return h.mutationError(c, err)
	}
	return xhttp.SuccessResponse(c, BetMutationResponse{Cancel: ack, Ledger: h.ledger.State()})
}

func (h *DashboardEchoHandler) Stats(c echo.Context) error {
	h.ledger.FetchStats(c.Request().Context())
	st := h.ledger.State()
	if st.Stats == nil {
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("stats unavailable"))
	}
	return xhttp.SuccessResponse(c, st.Stats)
}

func (h *DashboardEchoHandler) NextDraw(c echo.Context) error {
	nd, err := h.ledger.NextDraw(c.Request().Context())
	if err != nil {
		return upstreamError(c, err)
	}
	return xhttp.SuccessResponse(c, nd)
}

// mutationError maps a rejected ledger mutation. Backend rejections keep
// their status and detail.
func (h *DashboardEchoHandler) mutationError(c echo.Context, err error) error {
	if errors.Is(err, usecase.ErrClosed) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_SHUTTING_DOWN", "", err.Error(), http.StatusServiceUnavailable))
	}
	return upstreamError(c, err)
}

// upstreamError reports a failed backend read or write.
func upstreamError(c echo.Context, err error) error {
	return xhttp.AppErrorResponse(c, xhttp.FromUpstream(err))
}
