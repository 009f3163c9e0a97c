package protocol

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/infrastructure/events"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/google/uuid"
)

// ProtocolInput - данные приемки автомобиля
type ProtocolInput struct {
	VehicleMake      string               `json:"vehicle_make" validate:"required"`
	VehicleModel     string               `json:"vehicle_model"`
	LicensePlate     string               `json:"license_plate" validate:"required"`
	VIN              string               `json:"vin,omitempty"`
	Mileage          int                  `json:"mileage"`
	FuelLevel        int                  `json:"fuel_level"`
	OwnerName        string               `json:"owner_name" validate:"required"`
	OwnerPhone       string               `json:"owner_phone"`
	OwnerEmail       string               `json:"owner_email,omitempty"`
	SelectedServices []domain.ServiceItem `json:"selected_services"`
	IntakeNotes      string               `json:"intake_notes,omitempty"`
	Damages          []string             `json:"damages"`
	ReceivedAt       *time.Time           `json:"received_at,omitempty"`
}

// CommentRequest - новый комментарий
type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// Author - кто оставляет комментарий или создает протокол
type Author struct {
	ID   uuid.UUID
	Name string
}

// Details - протокол с вычисляемыми полями для интерфейса
type Details struct {
	*domain.CarReceptionProtocol
	TotalPrice      float64                 `json:"total_price"`
	NextAction      *domain.ProtocolAction  `json:"next_action,omitempty"`
	AllowedStatuses []domain.ProtocolStatus `json:"allowed_statuses"`
}

// ProtocolList - страница протоколов
type ProtocolList struct {
	Items []*Details `json:"items"`
	Total int        `json:"total"`
}

// Service ведет протоколы приемки автомобилей в сервис
type Service struct {
	protocolRepo repository.ProtocolRepository
	publisher    events.Publisher
	logger       logger.Logger
	now          func() time.Time
}

// NewService создает новый экземпляр ProtocolService
func NewService(protocolRepo repository.ProtocolRepository, publisher events.Publisher, logger logger.Logger) *Service {
	return &Service{
		protocolRepo: protocolRepo,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// NewDetails дополняет протокол суммой и следующим действием
func NewDetails(p *domain.CarReceptionProtocol) *Details {
	d := &Details{
		CarReceptionProtocol: p,
		TotalPrice:           p.TotalPrice(),
		AllowedStatuses:      p.Status.AllowedNextStatuses(),
	}
	if action, ok := p.NextAction(); ok {
		d.NextAction = &action
	}
	return d
}

// ListProtocols возвращает страницу протоколов
func (s *Service) ListProtocols(ctx context.Context, filter repository.ProtocolFilter) (*ProtocolList, error) {
	protocols, total, err := s.protocolRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}

	items := make([]*Details, 0, len(protocols))
	for _, p := range protocols {
		items = append(items, NewDetails(p))
	}
	return &ProtocolList{Items: items, Total: total}, nil
}

// GetProtocol возвращает протокол с комментариями
func (s *Service) GetProtocol(ctx context.Context, id uuid.UUID) (*Details, error) {
	p, err := s.protocolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewDetails(p), nil
}

// CreateProtocol регистрирует прием автомобиля; номер присваивает хранилище
func (s *Service) CreateProtocol(ctx context.Context, req *ProtocolInput, createdBy *uuid.UUID) (*Details, error) {
	p := &domain.CarReceptionProtocol{
		Status:     domain.ProtocolStatusNew,
		ReceivedAt: s.now().UTC(),
		CreatedBy:  createdBy,
	}
	req.applyTo(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.protocolRepo.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create protocol", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create protocol: %w", err)
	}

	s.logger.Info("Reception protocol created", map[string]interface{}{
		"protocol_id": p.ID,
		"number":      p.Number,
	})
	s.publish(ctx, events.New(events.ProtocolCreated, p.ID, map[string]interface{}{
		"number":        p.Number,
		"license_plate": p.LicensePlate,
		"total_price":   p.TotalPrice(),
	}))

	return NewDetails(p), nil
}

// UpdateProtocol меняет данные приемки, пока протокол не закрыт
func (s *Service) UpdateProtocol(ctx context.Context, id uuid.UUID, req *ProtocolInput) (*Details, error) {
	p, err := s.protocolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsClosed() {
		return nil, domain.ErrProtocolClosed
	}

	req.applyTo(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.protocolRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update protocol: %w", err)
	}
	return NewDetails(p), nil
}

// UpdateStatus переводит протокол на следующий этап
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProtocolStatus) (*Details, error) {
	p, err := s.protocolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := p.Status
	if err := p.TransitionTo(status, s.now().UTC()); err != nil {
		return nil, err
	}

	if err := s.protocolRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update protocol status: %w", err)
	}

	s.logger.Info("Protocol status changed", map[string]interface{}{
		"protocol_id": p.ID,
		"from":        from,
		"to":          p.Status,
	})
	s.publish(ctx, events.New(events.ProtocolStatusChanged, p.ID, events.StatusChange{
		From: string(from),
		To:   string(p.Status),
	}))

	return NewDetails(p), nil
}

// AddComment добавляет комментарий к протоколу. Завершенный или отмененный
// протокол комментариев не принимает
func (s *Service) AddComment(ctx context.Context, id uuid.UUID, req *CommentRequest, author Author) (*domain.ProtocolComment, error) {
	c := &domain.ProtocolComment{
		ProtocolID: id,
		AuthorName: strings.TrimSpace(author.Name),
		Text:       strings.TrimSpace(req.Text),
	}
	if author.ID != uuid.Nil {
		authorID := author.ID
		c.AuthorID = &authorID
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p, err := s.protocolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsClosed() {
		return nil, domain.ErrProtocolClosed
	}

	if err := s.protocolRepo.AddComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteProtocol удаляет протокол вместе с комментариями
func (s *Service) DeleteProtocol(ctx context.Context, id uuid.UUID) error {
	return s.protocolRepo.Delete(ctx, id)
}

// publish отправляет событие; ошибка публикации только логируется
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("Failed to publish event", map[string]interface{}{
			"type":  e.Type,
			"error": err.Error(),
		})
	}
}

func (in *ProtocolInput) applyTo(p *domain.CarReceptionProtocol) {
	p.VehicleMake = strings.TrimSpace(in.VehicleMake)
	p.VehicleModel = strings.TrimSpace(in.VehicleModel)
	p.LicensePlate = in.LicensePlate
	p.VIN = strings.ToUpper(strings.TrimSpace(in.VIN))
	p.Mileage = in.Mileage
	p.FuelLevel = in.FuelLevel
	p.OwnerName = strings.TrimSpace(in.OwnerName)
	p.OwnerPhone = strings.TrimSpace(in.OwnerPhone)
	p.OwnerEmail = strings.TrimSpace(in.OwnerEmail)
	p.SelectedServices = in.SelectedServices
	p.IntakeNotes = in.IntakeNotes
	p.Damages = in.Damages
	if in.ReceivedAt != nil {
		p.ReceivedAt = in.ReceivedAt.UTC()
	}
}
