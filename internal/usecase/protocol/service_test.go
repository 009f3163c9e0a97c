package protocol

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/infrastructure/events"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC)

type fixture struct {
	protocols *mocks.ProtocolRepository
	events    *events.Recorder
	service   *Service
}

func newFixture() *fixture {
	f := &fixture{
		protocols: new(mocks.ProtocolRepository),
		events:    &events.Recorder{},
	}
	f.service = NewService(f.protocols, f.events, logger.NewNoop())
	f.service.now = func() time.Time { return fixedNow }
	return f
}

func validInput() *ProtocolInput {
	return &ProtocolInput{
		VehicleMake:  "Volkswagen",
		VehicleModel: "Golf",
		LicensePlate: "kr 9876a",
		Mileage:      120500,
		FuelLevel:    40,
		OwnerName:    "Piotr Zielinski",
		OwnerPhone:   "+48 600 100 200",
		SelectedServices: []domain.ServiceItem{
			{Name: "Oil change", Price: 250},
			{Name: "Brake pads", Price: 420.5},
		},
	}
}

func protocolIn(status domain.ProtocolStatus) *domain.CarReceptionProtocol {
	return &domain.CarReceptionProtocol{
		ID:           uuid.New(),
		Number:       "PR/2026/10/0007",
		VehicleMake:  "Volkswagen",
		LicensePlate: "KR9876A",
		OwnerName:    "Piotr Zielinski",
		OwnerPhone:   "+48600100200",
		Status:       status,
		ReceivedAt:   fixedNow.Add(-48 * time.Hour),
	}
}

func TestService_CreateProtocol(t *testing.T) {
	f := newFixture()
	f.protocols.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.CarReceptionProtocol) bool {
		return p.Status == domain.ProtocolStatusNew && p.ReceivedAt.Equal(fixedNow) && p.LicensePlate == "KR9876A"
	})).Run(func(args mock.Arguments) {
		p := args.Get(1).(*domain.CarReceptionProtocol)
		p.ID = uuid.New()
		p.Number = domain.ProtocolNumber(p.ReceivedAt, 1)
	}).Return(nil)

	details, err := f.service.CreateProtocol(context.Background(), validInput(), nil)

	require.NoError(t, err)
	assert.Equal(t, "PR/2026/10/0001", details.Number)
	assert.Equal(t, 670.5, details.TotalPrice)
	require.NotNil(t, details.NextAction)
	assert.Equal(t, domain.ProtocolStatusInProgress, details.NextAction.Status)
	assert.Equal(t, []string{}, details.Damages)
	assert.Equal(t, []events.Type{events.ProtocolCreated}, f.events.Types())
}

func TestService_CreateProtocol_Invalid(t *testing.T) {
	f := newFixture()
	in := validInput()
	in.OwnerPhone = ""

	_, err := f.service.CreateProtocol(context.Background(), in, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidProtocolData)
	f.protocols.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name          string
		from          domain.ProtocolStatus
		to            domain.ProtocolStatus
		expectedErr   error
		wantCompleted bool
	}{
		{name: "Начало работ", from: domain.ProtocolStatusNew, to: domain.ProtocolStatusInProgress},
		{name: "Готов к выдаче", from: domain.ProtocolStatusInProgress, to: domain.ProtocolStatusReadyForPickup},
		{name: "Выдача владельцу", from: domain.ProtocolStatusReadyForPickup, to: domain.ProtocolStatusCompleted, wantCompleted: true},
		{name: "Пропуск этапа", from: domain.ProtocolStatusNew, to: domain.ProtocolStatusCompleted, expectedErr: domain.ErrInvalidStatusTransition},
		{name: "Из завершенного", from: domain.ProtocolStatusCompleted, to: domain.ProtocolStatusInProgress, expectedErr: domain.ErrInvalidStatusTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			p := protocolIn(tt.from)
			f.protocols.On("GetByID", mock.Anything, p.ID).Return(p, nil)
			f.protocols.On("Update", mock.Anything, p).Return(nil)

			details, err := f.service.UpdateStatus(context.Background(), p.ID, tt.to)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				f.protocols.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, details.Status)
			if tt.wantCompleted {
				require.NotNil(t, details.CompletedAt)
				assert.True(t, details.CompletedAt.Equal(fixedNow))
				assert.Nil(t, details.NextAction)
			}
			assert.Equal(t, []events.Type{events.ProtocolStatusChanged}, f.events.Types())
		})
	}
}

func TestService_UpdateProtocol_Closed(t *testing.T) {
	f := newFixture()
	p := protocolIn(domain.ProtocolStatusCancelled)
	f.protocols.On("GetByID", mock.Anything, p.ID).Return(p, nil)

	_, err := f.service.UpdateProtocol(context.Background(), p.ID, validInput())
	assert.ErrorIs(t, err, domain.ErrProtocolClosed)
}

func TestService_AddComment(t *testing.T) {
	t.Run("Комментарий сотрудника", func(t *testing.T) {
		f := newFixture()
		p := protocolIn(domain.ProtocolStatusInProgress)
		protocolID := p.ID
		author := Author{ID: uuid.New(), Name: "Marta"}
		f.protocols.On("GetByID", mock.Anything, protocolID).Return(p, nil)
		f.protocols.On("AddComment", mock.Anything, mock.MatchedBy(func(c *domain.ProtocolComment) bool {
			return c.ProtocolID == protocolID && *c.AuthorID == author.ID && c.Text == "Client called"
		})).Return(nil)

		c, err := f.service.AddComment(context.Background(), protocolID, &CommentRequest{Text: "  Client called "}, author)

		require.NoError(t, err)
		assert.Equal(t, "Marta", c.AuthorName)
	})

	t.Run("Пустой текст", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.AddComment(context.Background(), uuid.New(), &CommentRequest{Text: "   "}, Author{})
		assert.ErrorIs(t, err, domain.ErrInvalidCommentData)
	})

	t.Run("Протокол не найден", func(t *testing.T) {
		f := newFixture()
		f.protocols.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrProtocolNotFound)

		_, err := f.service.AddComment(context.Background(), uuid.New(), &CommentRequest{Text: "hi"}, Author{Name: "Marta"})
		assert.ErrorIs(t, err, domain.ErrProtocolNotFound)
		f.protocols.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything)
	})
}

func TestService_AddComment_Closed(t *testing.T) {
	for _, status := range []domain.ProtocolStatus{domain.ProtocolStatusCompleted, domain.ProtocolStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			p := protocolIn(status)
			f.protocols.On("GetByID", mock.Anything, p.ID).Return(p, nil)

			c, err := f.service.AddComment(context.Background(), p.ID, &CommentRequest{Text: "Client called"}, Author{Name: "Marta"})

			assert.ErrorIs(t, err, domain.ErrProtocolClosed)
			assert.Nil(t, c)
			f.protocols.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything)
		})
	}
}

func TestDetails_JSON(t *testing.T) {
	d := NewDetails(protocolIn(domain.ProtocolStatusInProgress))

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "PR/2026/10/0007", decoded["number"])
	assert.Equal(t, "IN_PROGRESS", decoded["status"])
	assert.Equal(t, "READY_FOR_PICKUP", decoded["next_action"].(map[string]interface{})["status"])
}
