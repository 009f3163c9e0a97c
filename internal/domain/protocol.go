package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProtocolStatus - этап протокола приемки автомобиля в сервис
type ProtocolStatus string

const (
	ProtocolStatusNew            ProtocolStatus = "NEW"
	ProtocolStatusInProgress     ProtocolStatus = "IN_PROGRESS"
	ProtocolStatusReadyForPickup ProtocolStatus = "READY_FOR_PICKUP"
	ProtocolStatusCompleted      ProtocolStatus = "COMPLETED"
	ProtocolStatusCancelled      ProtocolStatus = "CANCELLED"
)

var protocolTransitions = transitionTable[ProtocolStatus]{
	ProtocolStatusNew:            {ProtocolStatusInProgress, ProtocolStatusCancelled},
	ProtocolStatusInProgress:     {ProtocolStatusReadyForPickup, ProtocolStatusCancelled},
	ProtocolStatusReadyForPickup: {ProtocolStatusCompleted},
}

// Основное действие, которое интерфейс предлагает для каждого незавершенного статуса
var protocolNextActions = map[ProtocolStatus]ProtocolAction{
	ProtocolStatusNew:            {Status: ProtocolStatusInProgress, Label: "Start work"},
	ProtocolStatusInProgress:     {Status: ProtocolStatusReadyForPickup, Label: "Mark ready for pickup"},
	ProtocolStatusReadyForPickup: {Status: ProtocolStatusCompleted, Label: "Hand over to owner"},
}

// ProtocolAction - следующий шаг протокола
type ProtocolAction struct {
	Status ProtocolStatus `json:"status"`
	Label  string         `json:"label"`
}

// ServiceItem - выбранная услуга
type ServiceItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ProtocolComment - комментарий к протоколу
type ProtocolComment struct {
	ID         uuid.UUID  `json:"id"`
	ProtocolID uuid.UUID  `json:"protocol_id"`
	AuthorID   *uuid.UUID `json:"author_id,omitempty"`
	AuthorName string     `json:"author_name"`
	Text       string     `json:"text"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CarReceptionProtocol - протокол приемки автомобиля на обслуживание
type CarReceptionProtocol struct {
	ID               uuid.UUID      `json:"id"`
	Number           string         `json:"number"`
	VehicleMake      string         `json:"vehicle_make"`
	VehicleModel     string         `json:"vehicle_model"`
	LicensePlate     string         `json:"license_plate"`
	VIN              string         `json:"vin,omitempty"`
	Mileage          int            `json:"mileage"`
	FuelLevel        int            `json:"fuel_level"`
	OwnerName        string         `json:"owner_name"`
	OwnerPhone       string         `json:"owner_phone"`
	OwnerEmail       string         `json:"owner_email,omitempty"`
	SelectedServices []ServiceItem  `json:"selected_services"`
	IntakeNotes      string         `json:"intake_notes,omitempty"`
	Damages          []string       `json:"damages"`
	Status           ProtocolStatus `json:"status"`
	ReceivedAt       time.Time      `json:"received_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CreatedBy        *uuid.UUID     `json:"created_by,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Comments []*ProtocolComment `json:"comments"`
}

// ProtocolNumber формирует номер протокола вида PR/2026/10/0001
func ProtocolNumber(at time.Time, seq int) string {
	return fmt.Sprintf("PR/%04d/%02d/%04d", at.Year(), int(at.Month()), seq)
}

// TotalPrice возвращает сумму выбранных услуг
func (p *CarReceptionProtocol) TotalPrice() float64 {
	var total float64
	for _, s := range p.SelectedServices {
		total += s.Price
	}
	return round2(total)
}

// IsClosed проверяет, завершен ли протокол
func (p *CarReceptionProtocol) IsClosed() bool {
	return p.Status.IsTerminal()
}

// NextAction возвращает действие для кнопки следующего шага
func (p *CarReceptionProtocol) NextAction() (ProtocolAction, bool) {
	return p.Status.NextAction()
}

// TransitionTo переводит протокол в новый статус, проставляя дату завершения
func (p *CarReceptionProtocol) TransitionTo(next ProtocolStatus, at time.Time) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	status, err := transition(protocolTransitions, p.Status, next)
	if err != nil {
		return err
	}
	p.Status = status
	if status == ProtocolStatusCompleted {
		p.CompletedAt = &at
	}
	return nil
}

// Validate проверяет корректность данных протокола
func (p *CarReceptionProtocol) Validate() error {
	if strings.TrimSpace(p.VehicleMake) == "" || strings.TrimSpace(p.OwnerName) == "" {
		return ErrInvalidProtocolData
	}
	if strings.TrimSpace(p.OwnerPhone) == "" && strings.TrimSpace(p.OwnerEmail) == "" {
		return ErrInvalidProtocolData
	}
	p.LicensePlate = NormalizeLicensePlate(p.LicensePlate)
	if p.LicensePlate == "" {
		return ErrInvalidLicensePlate
	}
	if p.Mileage < 0 {
		return ErrInvalidMileage
	}
	if !validFuelLevel(p.FuelLevel) {
		return ErrInvalidFuelLevel
	}
	for _, s := range p.SelectedServices {
		if strings.TrimSpace(s.Name) == "" || s.Price < 0 {
			return ErrInvalidProtocolData
		}
	}
	if !p.Status.IsValid() {
		return ErrInvalidStatus
	}
	if p.SelectedServices == nil {
		p.SelectedServices = []ServiceItem{}
	}
	if p.Damages == nil {
		p.Damages = []string{}
	}
	return nil
}

// Validate проверяет комментарий
func (c *ProtocolComment) Validate() error {
	if c.ProtocolID == uuid.Nil || strings.TrimSpace(c.Text) == "" {
		return ErrInvalidCommentData
	}
	if len(c.Text) > 2000 {
		return ErrInvalidCommentData
	}
	return nil
}

// NextAction возвращает действие для кнопки следующего шага; для завершенных статусов - false
func (s ProtocolStatus) NextAction() (ProtocolAction, bool) {
	a, ok := protocolNextActions[s]
	return a, ok
}

// AllowedNextStatuses возвращает статусы, в которые можно перевести протокол
func (s ProtocolStatus) AllowedNextStatuses() []ProtocolStatus {
	return protocolTransitions.next(s)
}

// IsTerminal проверяет, завершен ли жизненный цикл
func (s ProtocolStatus) IsTerminal() bool {
	return s == ProtocolStatusCompleted || s == ProtocolStatusCancelled
}

// IsValid проверяет, что значение входит в перечисление
func (s ProtocolStatus) IsValid() bool {
	_, ok := ProtocolStatusLabels[s]
	return ok
}
