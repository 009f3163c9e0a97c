package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleTransitions(t *testing.T) {
	allowed := map[VehicleStatus][]VehicleStatus{
		VehicleStatusAvailable:    {VehicleStatusRented, VehicleStatusMaintenance, VehicleStatusOutOfService},
		VehicleStatusRented:       {VehicleStatusAvailable, VehicleStatusMaintenance},
		VehicleStatusMaintenance:  {VehicleStatusAvailable, VehicleStatusOutOfService},
		VehicleStatusOutOfService: {VehicleStatusAvailable, VehicleStatusMaintenance},
	}

	for _, from := range AllVehicleStatuses() {
		for _, to := range AllVehicleStatuses() {
			v := &FleetVehicle{Status: from}
			err := v.TransitionTo(to)

			if contains(allowed[from], to) {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, v.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidStatusTransition, "%s -> %s", from, to)
				assert.Equal(t, from, v.Status)
			}
		}
	}

	v := &FleetVehicle{Status: VehicleStatusAvailable}
	assert.ErrorIs(t, v.TransitionTo("BROKEN"), ErrInvalidStatus)
}

func TestRentalTransitions(t *testing.T) {
	allowed := map[RentalStatus][]RentalStatus{
		RentalStatusScheduled: {RentalStatusActive, RentalStatusCancelled},
		RentalStatusActive:    {RentalStatusCompleted},
	}

	for _, from := range AllRentalStatuses() {
		for _, to := range AllRentalStatuses() {
			r := &FleetRental{Status: from}
			err := r.TransitionTo(to)
			if contains(allowed[from], to) {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.ErrorIs(t, err, ErrInvalidStatusTransition, "%s -> %s", from, to)
			}
		}
	}

	assert.True(t, RentalStatusCompleted.IsTerminal())
	assert.Empty(t, RentalStatusCancelled.AllowedNextStatuses())
}

func TestProtocolTransitions(t *testing.T) {
	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	p := &CarReceptionProtocol{Status: ProtocolStatusNew}

	action, ok := p.NextAction()
	require.True(t, ok)
	assert.Equal(t, ProtocolStatusInProgress, action.Status)

	require.NoError(t, p.TransitionTo(ProtocolStatusInProgress, at))
	require.NoError(t, p.TransitionTo(ProtocolStatusReadyForPickup, at))
	assert.ErrorIs(t, p.TransitionTo(ProtocolStatusCancelled, at), ErrInvalidStatusTransition)
	require.NoError(t, p.TransitionTo(ProtocolStatusCompleted, at))

	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, at, *p.CompletedAt)
	assert.True(t, p.IsClosed())

	_, ok = p.NextAction()
	assert.False(t, ok, "для завершенного протокола нет следующего шага")
}

func TestProtocolNextActionCoversOpenStatuses(t *testing.T) {
	for _, s := range AllProtocolStatuses() {
		action, ok := s.NextAction()
		if s.IsTerminal() {
			assert.False(t, ok, s)
			continue
		}
		require.True(t, ok, s)
		assert.Contains(t, s.AllowedNextStatuses(), action.Status)
		assert.NotEmpty(t, action.Label)
	}
}

func TestRental_Validate(t *testing.T) {
	valid := func() *FleetRental {
		return &FleetRental{
			VehicleID:      uuid.New(),
			ClientName:     "Anna Nowak",
			Status:         RentalStatusScheduled,
			StartDate:      day(1),
			PlannedEndDate: day(3),
			FuelLevelStart: 100,
			DailyRate:      150,
		}
	}

	assert.NoError(t, valid().Validate())

	r := valid()
	r.PlannedEndDate = r.StartDate
	assert.ErrorIs(t, r.Validate(), ErrInvalidDateRange)

	r = valid()
	r.FuelLevelStart = 120
	assert.ErrorIs(t, r.Validate(), ErrInvalidFuelLevel)

	r = valid()
	r.MileageStart = 1000
	end := 900
	r.MileageEnd = &end
	assert.ErrorIs(t, r.Validate(), ErrInvalidMileage)

	r = valid()
	r.ClientName = " "
	assert.ErrorIs(t, r.Validate(), ErrInvalidRentalData)
}

func TestRental_Amounts(t *testing.T) {
	r := &FleetRental{
		StartDate:      day(1),
		PlannedEndDate: day(4),
		DailyRate:      100,
		DamageCost:     50,
	}
	assert.Equal(t, 3, r.Days())
	assert.Equal(t, 350.0, r.TotalAmount())

	// Неполные сутки округляются вверх
	returned := day(4).Add(2 * time.Hour)
	r.ActualEndDate = &returned
	assert.Equal(t, 4, r.Days())

	// Минимум одни сутки
	short := &FleetRental{StartDate: day(1), PlannedEndDate: day(1).Add(time.Hour), DailyRate: 80}
	assert.Equal(t, 80.0, short.TotalAmount())
}

func TestVehicle_ValidateAndService(t *testing.T) {
	v := &FleetVehicle{
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2022,
		LicensePlate: "wx 12345",
		VIN:          "jtdkb20u093123456",
		Category:     VehicleCategoryCompact,
		UsageType:    UsageTypeReplacement,
		FuelType:     FuelTypeHybrid,
		Status:       VehicleStatusAvailable,
	}
	require.NoError(t, v.Validate())
	assert.Equal(t, "WX12345", v.LicensePlate)
	assert.Equal(t, "JTDKB20U093123456", v.VIN)

	v.VIN = "SHORT"
	assert.ErrorIs(t, v.Validate(), ErrInvalidVIN)

	now := day(15)
	assert.False(t, v.NeedsService(now))

	next := 50000
	v.NextServiceMileage = &next
	v.CurrentMileage = 49200
	assert.True(t, v.NeedsService(now))

	v.NextServiceMileage = nil
	soon := day(20)
	v.NextServiceDate = &soon
	assert.True(t, v.NeedsService(now))

	assert.False(t, v.RecordMileage(100))
	assert.True(t, v.RecordMileage(49300))
	assert.Equal(t, 49300, v.CurrentMileage)
}

func contains[S comparable](list []S, v S) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
