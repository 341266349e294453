package domain

import "time"

type PackageCategory string

const (
	CategoryFood      PackageCategory = "food"
	CategoryMedical   PackageCategory = "medical"
	CategoryShelter   PackageCategory = "shelter"
	CategoryHygiene   PackageCategory = "hygiene"
	CategoryEducation PackageCategory = "education"
	CategoryEmergency PackageCategory = "emergency"
)

type AidPackage struct {
	ID       int64
	Name     string
	Category PackageCategory
	// ValidityPeriodDays is the cooldown window for this package.
	// Zero means the configured default applies.
	ValidityPeriodDays int
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
