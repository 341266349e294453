package domain

import "time"

type CenterStatus string

const (
	CenterStatusActive      CenterStatus = "active"
	CenterStatusInactive    CenterStatus = "inactive"
	CenterStatusMaintenance CenterStatus = "maintenance"
)

type Center struct {
	ID        int64
	Name      string
	Address   string
	City      string
	Capacity  int
	Status    CenterStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
