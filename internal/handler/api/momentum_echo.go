package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"MomentumRank/internal/domain/models"
	"MomentumRank/internal/service/metrics"
	"MomentumRank/internal/service/ratelimit"
	"MomentumRank/internal/usecase"
	xhttp "MomentumRank/pkg/http"
	xlogger "MomentumRank/pkg/logger"
	"MomentumRank/pkg/util"
)

var _ xhttp.Handler = (*MomentumEchoHandler)(nil)

// MomentumEchoHandler serves the momentum rankings over echo.
type MomentumEchoHandler struct {
	logger    *xlogger.Logger
	svc       *usecase.MomentumService
	refresh   *ratelimit.Limiter
	metrics   *metrics.API
	maxUpload int64
}

// NewMomentumEchoHandler wires the handler. refresh may be nil to disable
// limiting of forced recomputations; maxUploadBytes bounds ticker uploads.
func NewMomentumEchoHandler(
	logger *xlogger.Logger,
	svc *usecase.MomentumService,
	refresh *ratelimit.Limiter,
	m *metrics.API,
	maxUploadBytes int64,
) *MomentumEchoHandler {
	return &MomentumEchoHandler{
		logger:    logger,
		svc:       svc,
		refresh:   refresh,
		metrics:   m,
		maxUpload: maxUploadBytes,
	}
}

func (h *MomentumEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/momentum", h.Momentum)
	g.GET("/momentum/top", h.Top)
	g.GET("/momentum/bottom", h.Bottom)
	g.GET("/momentum/candidates", h.Candidates)
	g.GET("/momentum/history", h.History)
	g.GET("/industries", h.Industries)
	g.POST("/universe", h.Upload)
}

func (h *MomentumEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Momentum returns the full report for the latest date.
func (h *MomentumEchoHandler) Momentum(c echo.Context) error {
	req := &models.MomentumQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	params, err := h.params(c, req.Universe, req.Start, req.End, req.Refresh)
	if err != nil {
		return h.fail(c, "momentum", err)
	}

	rep, err := h.svc.Report(c.Request().Context(), params, 0)
	if err != nil {
		return h.fail(c, "momentum", err)
	}
	h.metrics.Served("momentum", rep.FromCache)
	return xhttp.CachedResponse(c, time.Minute, rep)
}

// Top returns up to n Strong Buy rows.
func (h *MomentumEchoHandler) Top(c echo.Context) error {
	return h.slice(c, "top", func(rep *models.Report) []models.ReportRow { return rep.Top })
}

// Bottom returns up to n Strong Sell rows.
func (h *MomentumEchoHandler) Bottom(c echo.Context) error {
	return h.slice(c, "bottom", func(rep *models.Report) []models.ReportRow { return rep.Bottom })
}

func (h *MomentumEchoHandler) slice(c echo.Context, endpoint string, pick func(*models.Report) []models.ReportRow) error {
	req := &models.SliceQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	params, err := h.params(c, req.Universe, req.Start, req.End, req.Refresh)
	if err != nil {
		return h.fail(c, endpoint, err)
	}

	rep, err := h.svc.Report(c.Request().Context(), params, req.N)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	h.metrics.Served(endpoint, rep.FromCache)
	rows := pick(rep)
	if rows == nil {
		rows = []models.ReportRow{}
	}
	return xhttp.SuccessResponse(c, models.SliceResponse{
		RunID:     rep.RunID,
		LastDate:  util.FormatDate(rep.LastDate),
		FromCache: rep.FromCache,
		Partial:   rep.Partial,
		Rows:      rows,
	})
}

// Candidates returns n long and n short trade candidates.
func (h *MomentumEchoHandler) Candidates(c echo.Context) error {
	req := &models.SliceQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	params, err := h.params(c, req.Universe, req.Start, req.End, req.Refresh)
	if err != nil {
		return h.fail(c, "candidates", err)
	}

	rep, err := h.svc.Report(c.Request().Context(), params, req.N)
	if err != nil {
		return h.fail(c, "candidates", err)
	}
	h.metrics.Served("candidates", rep.FromCache)
	cands := rep.Candidates
	if cands == nil {
		cands = []models.CandidateRow{}
	}
	return xhttp.SuccessResponse(c, models.CandidatesResponse{
		RunID:      rep.RunID,
		LastDate:   util.FormatDate(rep.LastDate),
		FromCache:  rep.FromCache,
		Partial:    rep.Partial,
		Candidates: cands,
	})
}

// History returns the long-form rows of one symbol, undefined momentum included.
func (h *MomentumEchoHandler) History(c echo.Context) error {
	req := &models.HistoryQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	params, err := h.params(c, req.Universe, req.Start, req.End, false)
	if err != nil {
		return h.fail(c, "history", err)
	}

	symbol := util.NormalizeSymbol(req.Symbol)
	rows, err := h.svc.History(c.Request().Context(), params, symbol)
	if err != nil {
		return h.fail(c, "history", err)
	}
	if len(rows) == 0 {
		return h.fail(c, "history", xhttp.NotFoundError(fmt.Sprintf("no momentum rows for %s", symbol)))
	}
	h.metrics.Served("history", false)
	return xhttp.SuccessResponse(c, models.SymbolHistoryResponse{Symbol: symbol, Rows: rows})
}

// Industries returns the industry breakdown of a universe.
func (h *MomentumEchoHandler) Industries(c echo.Context) error {
	req := &models.UniverseQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	shares, err := h.svc.Industries(c.Request().Context(), models.Universe{Token: strings.ToLower(req.Universe)})
	if err != nil {
		return h.fail(c, "industries", err)
	}
	h.metrics.Served("industries", false)
	return xhttp.SuccessResponse(c, shares)
}

// Upload registers a ticker CSV sent either as the raw body or as the
// multipart field "file".
func (h *MomentumEchoHandler) Upload(c echo.Context) error {
	raw, err := h.readUpload(c)
	if err != nil {
		return h.fail(c, "universe", err)
	}

	u, set, err := h.svc.RegisterUniverse(c.Request().Context(), raw)
	if err != nil {
		return h.fail(c, "universe", err)
	}
	h.metrics.Uploaded(len(set.Tickers))
	if h.logger != nil {
		h.logger.Info("universe registered",
			xlogger.String("token", u.Token),
			xlogger.Int("symbols", len(set.Tickers)),
		)
	}
	return xhttp.CreatedResponse(c, models.UniverseUploadResponse{Token: u.Token, Symbols: len(set.Tickers)})
}

func (h *MomentumEchoHandler) readUpload(c echo.Context) ([]byte, error) {
	var r io.Reader = c.Request().Body
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, xhttp.FieldError("file", "multipart field \"file\" is required").WithError(err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		r = f
	}

	limit := h.maxUpload
	if limit <= 0 {
		limit = 1 << 20
	}
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, xhttp.TooLargeError("file", limit)
	}
	if len(raw) == 0 {
		return nil, xhttp.FieldError("file", "empty ticker file")
	}
	return raw, nil
}

// params turns validated query strings into service parameters. A forced
// refresh consumes a token from the caller's bucket.
func (h *MomentumEchoHandler) params(c echo.Context, universe, start, end string, refresh bool) (models.CalculateParams, error) {
	p := models.CalculateParams{Universe: models.Universe{Token: strings.ToLower(universe)}, UseCache: true}

	var ok bool
	if p.Start, ok = xhttp.ParseDate(start); !ok {
		return p, xhttp.FieldError("start", fmt.Sprintf("invalid start date %q", start))
	}
	if p.End, ok = xhttp.ParseDate(end); !ok {
		return p, xhttp.FieldError("end", fmt.Sprintf("invalid end date %q", end))
	}

	if refresh {
		if h.refresh != nil && !h.refresh.Allow(c.RealIP()) {
			h.metrics.Rejected()
			return p, xhttp.TooManyRequestsError("refresh limit reached, serving from cache is still allowed")
		}
		p.UseCache = false
	}
	return p, nil
}

// fail maps domain errors to AppErrors and writes them.
func (h *MomentumEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	h.metrics.Error(endpoint, appErr.Code)
	if h.logger != nil {
		log := h.logger.Warn
		if appErr.Status >= http.StatusInternalServerError {
			log = h.logger.Error
		}
		log("momentum request failed",
			xlogger.String("endpoint", endpoint),
			xlogger.String("code", appErr.Code),
			xlogger.Error(err),
		)
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, models.ErrNoPriceData):
		return xhttp.UnprocessableError("ERR_NO_PRICE_DATA", "no price data for the selected universe and range").WithError(err)
	case errors.Is(err, models.ErrNoMomentumData):
		return xhttp.UnprocessableError("ERR_NO_MOMENTUM_DATA", "not enough history to compute momentum").WithError(err)
	case errors.Is(err, models.ErrNoValidMomentum):
		return xhttp.UnprocessableError("ERR_NO_VALID_MOMENTUM", "no valid momentum values in the selected range").WithError(err)
	case errors.Is(err, models.ErrUnknownUniverse):
		return xhttp.NotFoundError("unknown universe token").WithError(err)
	case errors.Is(err, models.ErrInvalidTickerFile), errors.Is(err, models.ErrInvalidRange):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("momentum computation failed").WithError(err)
	}
}
