package http

import (
	"context"
	"net/http"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
)

// ReportService определяет интерфейс финансовых отчетов
type ReportService interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	Summary(ctx context.Context, dr domain.DateRange) (*domain.FinancialSummary, error)
	Comparison(ctx context.Context, period domain.ReportPeriod) (*domain.PeriodComparison, error)
	BreakEven(ctx context.Context, dr domain.DateRange) (*domain.BreakEvenAnalysis, error)
}

// ReportHandler обрабатывает запросы финансовых отчетов
type ReportHandler struct {
	reportService ReportService
	logger        logger.Logger
	now           func() time.Time
}

// NewReportHandler создает новый handler
func NewReportHandler(reportService ReportService, logger logger.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
		now:           time.Now,
	}
}

// Dashboard возвращает сводку для главной страницы
// GET /api/v1/financial-reports/dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reportService.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "build dashboard")
		return
	}

	respondData(w, http.StatusOK, d)
}

// Summary возвращает итоги за период; по умолчанию - текущий месяц
// GET /api/v1/financial-reports/summary?from=&to=
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	dr, err := h.period(r)
	if err != nil {
		respondServiceError(w, h.logger, err, "build summary")
		return
	}

	s, err := h.reportService.Summary(r.Context(), dr)
	if err != nil {
		respondServiceError(w, h.logger, err, "build summary")
		return
	}

	respondData(w, http.StatusOK, s)
}

// Comparison сравнивает текущий период с предыдущим
// GET /api/v1/financial-reports/comparison?period=week|month|year
func (h *ReportHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	period := domain.ReportPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = domain.PeriodMonth
	}

	c, err := h.reportService.Comparison(r.Context(), period)
	if err != nil {
		respondServiceError(w, h.logger, err, "build comparison")
		return
	}

	respondData(w, http.StatusOK, c)
}

// BreakEven возвращает анализ точки безубыточности; по умолчанию - текущий месяц
// GET /api/v1/financial-reports/break-even?from=&to=
func (h *ReportHandler) BreakEven(w http.ResponseWriter, r *http.Request) {
	dr, err := h.period(r)
	if err != nil {
		respondServiceError(w, h.logger, err, "build break-even analysis")
		return
	}

	b, err := h.reportService.BreakEven(r.Context(), dr)
	if err != nil {
		respondServiceError(w, h.logger, err, "build break-even analysis")
		return
	}

	respondData(w, http.StatusOK, b)
}

func (h *ReportHandler) period(r *http.Request) (domain.DateRange, error) {
	q := r.URL.Query()
	if q.Get("from") == "" && q.Get("to") == "" {
		current, _, err := domain.PeriodMonth.Bounds(h.now())
		return current, err
	}
	return domain.ParseDateRange(q.Get("from"), q.Get("to"))
}
