package domain

import "github.com/google/uuid"

// BlockedVehicleIDs возвращает автомобили, занятые арендами в указанном диапазоне.
// Пересечение проверяется заново, фильтру хранилища не доверяем.
func BlockedVehicleIDs(dr DateRange, rentals []*FleetRental) map[uuid.UUID]struct{} {
	blocked := make(map[uuid.UUID]struct{}, len(rentals))
	for _, r := range rentals {
		if r == nil || !r.Occupies(dr) {
			continue
		}
		blocked[r.VehicleID] = struct{}{}
	}
	return blocked
}

// AvailableVehicles возвращает автомобили, свободные в указанном диапазоне.
// В результат попадают только активные автомобили в статусе AVAILABLE,
// не занятые ни одной арендой; порядок входного списка сохраняется.
func AvailableVehicles(vehicles []*FleetVehicle, rentals []*FleetRental, dr DateRange) []*FleetVehicle {
	blocked := BlockedVehicleIDs(dr, rentals)

	available := make([]*FleetVehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v == nil || !v.IsRentable() {
			continue
		}
		if _, busy := blocked[v.ID]; busy {
			continue
		}
		available = append(available, v)
	}
	return available
}

// HasConflict проверяет, пересекается ли аренда с другими арендами того же автомобиля
func HasConflict(candidate *FleetRental, existing []*FleetRental) bool {
	dr := DateRange{From: candidate.StartDate, To: candidate.EndDate()}
	for _, r := range existing {
		if r == nil || r.ID == candidate.ID || r.VehicleID != candidate.VehicleID {
			continue
		}
		if r.Occupies(dr) {
			return true
		}
	}
	return false
}
