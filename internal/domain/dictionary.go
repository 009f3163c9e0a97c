package domain

// Справочники подписей и цветов для всех перечислений.
// Каждый элемент перечисления должен иметь ровно одну подпись и ровно один цвет.

// AllVehicleStatuses возвращает все статусы автомобиля
func AllVehicleStatuses() []VehicleStatus {
	return []VehicleStatus{VehicleStatusAvailable, VehicleStatusRented, VehicleStatusMaintenance, VehicleStatusOutOfService}
}

// AllVehicleCategories возвращает все классы автомобилей
func AllVehicleCategories() []VehicleCategory {
	return []VehicleCategory{
		VehicleCategoryEconomy, VehicleCategoryCompact, VehicleCategoryStandard,
		VehicleCategoryPremium, VehicleCategorySUV, VehicleCategoryVan,
	}
}

// AllUsageTypes возвращает все назначения автомобилей
func AllUsageTypes() []VehicleUsageType {
	return []VehicleUsageType{UsageTypeRental, UsageTypeReplacement, UsageTypeCompany}
}

// AllFuelTypes возвращает все типы топлива
func AllFuelTypes() []FuelType {
	return []FuelType{FuelTypePetrol, FuelTypeDiesel, FuelTypeHybrid, FuelTypeElectric, FuelTypeLPG}
}

// AllRentalStatuses возвращает все статусы аренды
func AllRentalStatuses() []RentalStatus {
	return []RentalStatus{RentalStatusScheduled, RentalStatusActive, RentalStatusCompleted, RentalStatusCancelled}
}

// AllMaintenanceTypes возвращает все виды обслуживания
func AllMaintenanceTypes() []MaintenanceType {
	return []MaintenanceType{
		MaintenanceTypeOilChange, MaintenanceTypeTireChange, MaintenanceTypeInspection,
		MaintenanceTypeBrakes, MaintenanceTypeRepair, MaintenanceTypeBodywork, MaintenanceTypeOther,
	}
}

// AllProtocolStatuses возвращает все статусы протокола приемки
func AllProtocolStatuses() []ProtocolStatus {
	return []ProtocolStatus{
		ProtocolStatusNew, ProtocolStatusInProgress, ProtocolStatusReadyForPickup,
		ProtocolStatusCompleted, ProtocolStatusCancelled,
	}
}

var VehicleStatusLabels = map[VehicleStatus]string{
	VehicleStatusAvailable:    "Available",
	VehicleStatusRented:       "Rented",
	VehicleStatusMaintenance:  "In maintenance",
	VehicleStatusOutOfService: "Out of service",
}

var VehicleStatusColors = map[VehicleStatus]string{
	VehicleStatusAvailable:    "green",
	VehicleStatusRented:       "blue",
	VehicleStatusMaintenance:  "orange",
	VehicleStatusOutOfService: "red",
}

var VehicleCategoryLabels = map[VehicleCategory]string{
	VehicleCategoryEconomy:  "Economy",
	VehicleCategoryCompact:  "Compact",
	VehicleCategoryStandard: "Standard",
	VehicleCategoryPremium:  "Premium",
	VehicleCategorySUV:      "SUV",
	VehicleCategoryVan:      "Van",
}

var VehicleCategoryColors = map[VehicleCategory]string{
	VehicleCategoryEconomy:  "gray",
	VehicleCategoryCompact:  "teal",
	VehicleCategoryStandard: "blue",
	VehicleCategoryPremium:  "purple",
	VehicleCategorySUV:      "brown",
	VehicleCategoryVan:      "indigo",
}

var UsageTypeLabels = map[VehicleUsageType]string{
	UsageTypeRental:      "Rental",
	UsageTypeReplacement: "Replacement car",
	UsageTypeCompany:     "Company car",
}

var UsageTypeColors = map[VehicleUsageType]string{
	UsageTypeRental:      "blue",
	UsageTypeReplacement: "cyan",
	UsageTypeCompany:     "gray",
}

var FuelTypeLabels = map[FuelType]string{
	FuelTypePetrol:   "Petrol",
	FuelTypeDiesel:   "Diesel",
	FuelTypeHybrid:   "Hybrid",
	FuelTypeElectric: "Electric",
	FuelTypeLPG:      "LPG",
}

var FuelTypeColors = map[FuelType]string{
	FuelTypePetrol:   "amber",
	FuelTypeDiesel:   "slate",
	FuelTypeHybrid:   "lime",
	FuelTypeElectric: "green",
	FuelTypeLPG:      "sky",
}

var RentalStatusLabels = map[RentalStatus]string{
	RentalStatusScheduled: "Scheduled",
	RentalStatusActive:    "Active",
	RentalStatusCompleted: "Completed",
	RentalStatusCancelled: "Cancelled",
}

var RentalStatusColors = map[RentalStatus]string{
	RentalStatusScheduled: "yellow",
	RentalStatusActive:    "blue",
	RentalStatusCompleted: "green",
	RentalStatusCancelled: "gray",
}

var MaintenanceTypeLabels = map[MaintenanceType]string{
	MaintenanceTypeOilChange:  "Oil change",
	MaintenanceTypeTireChange: "Tire change",
	MaintenanceTypeInspection: "Inspection",
	MaintenanceTypeBrakes:     "Brakes",
	MaintenanceTypeRepair:     "Repair",
	MaintenanceTypeBodywork:   "Bodywork",
	MaintenanceTypeOther:      "Other",
}

var MaintenanceTypeColors = map[MaintenanceType]string{
	MaintenanceTypeOilChange:  "amber",
	MaintenanceTypeTireChange: "slate",
	MaintenanceTypeInspection: "blue",
	MaintenanceTypeBrakes:     "red",
	MaintenanceTypeRepair:     "orange",
	MaintenanceTypeBodywork:   "purple",
	MaintenanceTypeOther:      "gray",
}

var ProtocolStatusLabels = map[ProtocolStatus]string{
	ProtocolStatusNew:            "New",
	ProtocolStatusInProgress:     "In progress",
	ProtocolStatusReadyForPickup: "Ready for pickup",
	ProtocolStatusCompleted:      "Completed",
	ProtocolStatusCancelled:      "Cancelled",
}

var ProtocolStatusColors = map[ProtocolStatus]string{
	ProtocolStatusNew:            "gray",
	ProtocolStatusInProgress:     "blue",
	ProtocolStatusReadyForPickup: "yellow",
	ProtocolStatusCompleted:      "green",
	ProtocolStatusCancelled:      "red",
}

// DictionaryEntry - элемент справочника для клиента
type DictionaryEntry struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Dictionaries - все справочники одним ответом
type Dictionaries struct {
	VehicleStatuses   []DictionaryEntry `json:"vehicle_statuses"`
	VehicleCategories []DictionaryEntry `json:"vehicle_categories"`
	UsageTypes        []DictionaryEntry `json:"usage_types"`
	FuelTypes         []DictionaryEntry `json:"fuel_types"`
	RentalStatuses    []DictionaryEntry `json:"rental_statuses"`
	MaintenanceTypes  []DictionaryEntry `json:"maintenance_types"`
	ProtocolStatuses  []DictionaryEntry `json:"protocol_statuses"`
}

// BuildDictionaries собирает справочники в порядке объявления перечислений
func BuildDictionaries() Dictionaries {
	return Dictionaries{
		VehicleStatuses:   entries(AllVehicleStatuses(), VehicleStatusLabels, VehicleStatusColors),
		VehicleCategories: entries(AllVehicleCategories(), VehicleCategoryLabels, VehicleCategoryColors),
		UsageTypes:        entries(AllUsageTypes(), UsageTypeLabels, UsageTypeColors),
		FuelTypes:         entries(AllFuelTypes(), FuelTypeLabels, FuelTypeColors),
		RentalStatuses:    entries(AllRentalStatuses(), RentalStatusLabels, RentalStatusColors),
		MaintenanceTypes:  entries(AllMaintenanceTypes(), MaintenanceTypeLabels, MaintenanceTypeColors),
		ProtocolStatuses:  entries(AllProtocolStatuses(), ProtocolStatusLabels, ProtocolStatusColors),
	}
}

func entries[E ~string](values []E, labels, colors map[E]string) []DictionaryEntry {
	out := make([]DictionaryEntry, 0, len(values))
	for _, v := range values {
		out = append(out, DictionaryEntry{Value: string(v), Label: labels[v], Color: colors[v]})
	}
	return out
}
