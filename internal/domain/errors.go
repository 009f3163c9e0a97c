package domain

import "errors"

// Доменные ошибки - используются во всех слоях приложения

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidUserData    = errors.New("invalid user data")
	ErrInvalidRole        = errors.New("invalid user role")
	ErrUserInactive       = errors.New("user is inactive")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Vehicle errors
var (
	ErrVehicleNotFound      = errors.New("vehicle not found")
	ErrVehicleAlreadyExists = errors.New("vehicle already exists")
	ErrInvalidLicensePlate  = errors.New("invalid license plate")
	ErrInvalidVIN           = errors.New("invalid vin")
	ErrInvalidVehicleData   = errors.New("invalid vehicle data")
	ErrVehicleInactive      = errors.New("vehicle is inactive")
	ErrVehicleUnavailable   = errors.New("vehicle is not available")
)

// Rental errors
var (
	ErrRentalNotFound    = errors.New("rental not found")
	ErrInvalidRentalData = errors.New("invalid rental data")
	ErrRentalOverlap     = errors.New("vehicle already booked for this period")
	ErrRentalNotEditable = errors.New("rental can no longer be modified")
	ErrInvalidFuelLevel  = errors.New("invalid fuel level")
	ErrInvalidMileage    = errors.New("invalid mileage")
)

// Maintenance & fuel errors
var (
	ErrMaintenanceNotFound    = errors.New("maintenance record not found")
	ErrInvalidMaintenanceData = errors.New("invalid maintenance data")
	ErrFuelEntryNotFound      = errors.New("fuel entry not found")
	ErrInvalidFuelEntryData   = errors.New("invalid fuel entry data")
)

// Protocol errors
var (
	ErrProtocolNotFound    = errors.New("protocol not found")
	ErrInvalidProtocolData = errors.New("invalid protocol data")
	ErrProtocolClosed      = errors.New("protocol is closed")
	ErrInvalidCommentData  = errors.New("invalid comment data")
)

// Image errors
var (
	ErrImageNotFound          = errors.New("image not found")
	ErrInvalidImageData       = errors.New("invalid image data")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrImageTooLarge          = errors.New("image too large")
)

// Общие ошибки жизненного цикла и диапазонов
var (
	ErrInvalidDateRange        = errors.New("invalid date range")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrConcurrentModification  = errors.New("entity was modified concurrently")
	ErrInvalidReportPeriod     = errors.New("invalid report period")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// General errors
var (
	ErrInternal   = errors.New("internal server error")
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)
