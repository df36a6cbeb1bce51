package services

import "github.com/diewo77/colegio/internal/models"

// ComputeCharge returns the base tuition fee for a level, 0 for unknown levels.
func ComputeCharge(level models.EducationLevel) float64 {
	switch level {
	case models.LevelPrimary:
		return 1000
	case models.LevelBasic:
		return 2000
	case models.LevelHighSchool:
		return 3500
	default:
		return 0
	}
}

// ComputeInstallment returns the monthly installment for a level times months.
func ComputeInstallment(level models.EducationLevel, months int) float64 {
	if months <= 0 {
		return 0
	}
	var monthly float64
	switch level {
	case models.LevelPrimary:
		monthly = 100
	case models.LevelBasic:
		monthly = 200
	case models.LevelHighSchool:
		monthly = 350
	}
	return monthly * float64(months)
}
