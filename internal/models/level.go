package models

// EducationLevel is the level a student is enrolled in.
// Values match the ones stored by the original school records.
type EducationLevel string

const (
	LevelPrimary    EducationLevel = "Primaria"
	LevelBasic      EducationLevel = "Basico"
	LevelHighSchool EducationLevel = "Bachillerato"
)

// EducationLevels lists the supported levels in display order.
func EducationLevels() []EducationLevel {
	return []EducationLevel{LevelPrimary, LevelBasic, LevelHighSchool}
}

// Valid reports whether l is one of the supported levels.
func (l EducationLevel) Valid() bool {
	switch l {
	case LevelPrimary, LevelBasic, LevelHighSchool:
		return true
	}
	return false
}

// LabelCode returns the i18n code used to display the level.
func (l EducationLevel) LabelCode() string {
	switch l {
	case LevelPrimary:
		return "level_primary"
	case LevelBasic:
		return "level_basic"
	case LevelHighSchool:
		return "level_high_school"
	default:
		return "level_unknown"
	}
}
