package report

import (
	"context"
	"fmt"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const dashboardKey = "fleet:report:dashboard"

var tracer = otel.Tracer("github.com/frontandrew/fleet/internal/usecase/report")

// Cache - хранилище готовых сводок (Redis)
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Config - параметры расчета отчетов
type Config struct {
	FixedMonthlyCosts float64
	DashboardTTL      time.Duration
}

// Service считает финансовые отчеты по данным автопарка
type Service struct {
	vehicleRepo     repository.VehicleRepository
	rentalRepo      repository.RentalRepository
	maintenanceRepo repository.MaintenanceRepository
	fuelRepo        repository.FuelEntryRepository
	protocolRepo    repository.ProtocolRepository
	cache           Cache
	cfg             Config
	logger          logger.Logger
	now             func() time.Time
}

// NewService создает новый экземпляр ReportService. cache может быть nil
func NewService(
	vehicleRepo repository.VehicleRepository,
	rentalRepo repository.RentalRepository,
	maintenanceRepo repository.MaintenanceRepository,
	fuelRepo repository.FuelEntryRepository,
	protocolRepo repository.ProtocolRepository,
	cache Cache,
	cfg Config,
	logger logger.Logger,
) *Service {
	return &Service{
		vehicleRepo:     vehicleRepo,
		rentalRepo:      rentalRepo,
		maintenanceRepo: maintenanceRepo,
		fuelRepo:        fuelRepo,
		protocolRepo:    protocolRepo,
		cache:           cache,
		cfg:             cfg,
		logger:          logger,
		now:             time.Now,
	}
}

// Dashboard возвращает сводку по автопарку; результат кэшируется на DashboardTTL
func (s *Service) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	ctx, span := tracer.Start(ctx, "report.Dashboard")
	defer span.End()

	if s.cache != nil {
		var cached domain.Dashboard
		if err := s.cache.GetJSON(ctx, dashboardKey, &cached); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &cached, nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	now := s.now().UTC()

	vehicles, _, err := s.vehicleRepo.List(ctx, repository.VehicleFilter{})
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to list vehicles: %w", err))
	}

	rentals := []*domain.FleetRental{}
	for _, status := range []domain.RentalStatus{domain.RentalStatusActive, domain.RentalStatusScheduled} {
		items, _, err := s.rentalRepo.List(ctx, repository.RentalFilter{Status: status})
		if err != nil {
			return nil, fail(span, fmt.Errorf("failed to list rentals: %w", err))
		}
		rentals = append(rentals, items...)
	}

	month, _, _ := domain.PeriodMonth.Bounds(now)
	summary, err := s.summarize(ctx, month)
	if err != nil {
		return nil, fail(span, err)
	}

	openProtocols, err := s.protocolRepo.CountOpen(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to count open protocols: %w", err))
	}

	dashboard := domain.BuildDashboard(now, vehicles, rentals, summary, openProtocols)

	if s.cache != nil && s.cfg.DashboardTTL > 0 {
		if err := s.cache.SetJSON(ctx, dashboardKey, dashboard, s.cfg.DashboardTTL); err != nil {
			s.logger.Warn("Failed to cache dashboard", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return &dashboard, nil
}

// Summary возвращает финансовые итоги за период
func (s *Service) Summary(ctx context.Context, dr domain.DateRange) (*domain.FinancialSummary, error) {
	ctx, span := tracer.Start(ctx, "report.Summary", trace.WithAttributes(periodAttributes(dr)...))
	defer span.End()

	if err := dr.Validate(); err != nil {
		return nil, err
	}
	summary, err := s.summarize(ctx, dr)
	if err != nil {
		return nil, fail(span, err)
	}
	return &summary, nil
}

// Comparison сравнивает текущий период (неделя, месяц, год) с предыдущим
func (s *Service) Comparison(ctx context.Context, period domain.ReportPeriod) (*domain.PeriodComparison, error) {
	ctx, span := tracer.Start(ctx, "report.Comparison", trace.WithAttributes(
		attribute.String("report.period", string(period)),
	))
	defer span.End()

	current, previous, err := period.Bounds(s.now())
	if err != nil {
		return nil, err
	}

	currentSummary, err := s.summarize(ctx, current)
	if err != nil {
		return nil, fail(span, err)
	}
	previousSummary, err := s.summarize(ctx, previous)
	if err != nil {
		return nil, fail(span, err)
	}

	comparison := domain.Compare(period, currentSummary, previousSummary)
	return &comparison, nil
}

// BreakEven считает точку безубыточности за период
func (s *Service) BreakEven(ctx context.Context, dr domain.DateRange) (*domain.BreakEvenAnalysis, error) {
	ctx, span := tracer.Start(ctx, "report.BreakEven", trace.WithAttributes(periodAttributes(dr)...))
	defer span.End()

	if err := dr.Validate(); err != nil {
		return nil, err
	}
	summary, err := s.summarize(ctx, dr)
	if err != nil {
		return nil, fail(span, err)
	}

	analysis := domain.BreakEven(summary)
	return &analysis, nil
}

// summarize загружает завершенные аренды и журналы расходов за период
func (s *Service) summarize(ctx context.Context, dr domain.DateRange) (domain.FinancialSummary, error) {
	rentals, _, err := s.rentalRepo.List(ctx, repository.RentalFilter{
		Status:      domain.RentalStatusCompleted,
		EndDateFrom: &dr.From,
		EndDateTo:   &dr.To,
	})
	if err != nil {
		return domain.FinancialSummary{}, fmt.Errorf("failed to list completed rentals: %w", err)
	}

	journal := repository.JournalFilter{Period: &dr}
	maintenance, err := s.maintenanceRepo.List(ctx, journal)
	if err != nil {
		return domain.FinancialSummary{}, fmt.Errorf("failed to list maintenance: %w", err)
	}
	fuel, err := s.fuelRepo.List(ctx, journal)
	if err != nil {
		return domain.FinancialSummary{}, fmt.Errorf("failed to list fuel entries: %w", err)
	}

	return domain.Summarize(dr, rentals, maintenance, fuel, s.cfg.FixedMonthlyCosts), nil
}

func periodAttributes(dr domain.DateRange) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("report.from", dr.From.Format(time.DateOnly)),
		attribute.String("report.to", dr.To.Format(time.DateOnly)),
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
