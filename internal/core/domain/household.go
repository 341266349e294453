package domain

import "time"

type HouseholdStatus string

const (
	HouseholdStatusActive    HouseholdStatus = "active"
	HouseholdStatusInactive  HouseholdStatus = "inactive"
	HouseholdStatusSuspended HouseholdStatus = "suspended"
)

type PriorityLevel string

const (
	PriorityCritical PriorityLevel = "critical"
	PriorityHigh     PriorityLevel = "high"
	PriorityMedium   PriorityLevel = "medium"
	PriorityLow      PriorityLevel = "low"
)

type Household struct {
	ID         int64
	FamilyName string
	FamilySize int
	Priority   PriorityLevel
	Status     HouseholdStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
