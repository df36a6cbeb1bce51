package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEducationLevel_Valid(t *testing.T) {
	tests := []struct {
		level EducationLevel
		want  bool
	}{
		{LevelPrimary, true},
		{LevelBasic, true},
		{LevelHighSchool, true},
		{"Bachiller", false},
		{"", false},
		{"primaria", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.Valid())
		})
	}
}

func TestEducationLevel_LabelCode(t *testing.T) {
	assert.Equal(t, "level_primary", LevelPrimary.LabelCode())
	assert.Equal(t, "level_high_school", LevelHighSchool.LabelCode())
	assert.Equal(t, "level_unknown", EducationLevel("x").LabelCode())
}

func TestStudent_EnsureID(t *testing.T) {
	s := &Student{}
	s.EnsureID()
	assert.Len(t, s.ID, 36)

	keep := &Student{ID: "fixed"}
	keep.EnsureID()
	assert.Equal(t, "fixed", keep.ID)
}

func TestStudent_Summary(t *testing.T) {
	s := Student{ID: "a", Name: "Ana", Age: 9, EducationLevel: LevelBasic, Charge: 2000}
	assert.Equal(t, StudentSummary{ID: "a", Name: "Ana", Age: 9, EducationLevel: LevelBasic}, s.Summary())
	assert.True(t, s.HasBalance())
}

func TestPayment_Prepare(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("x", -3*3600))
	p := &Payment{}
	p.Prepare(now)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, time.UTC, p.Date.Location())
	assert.True(t, p.Date.Equal(now))

	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := &Payment{ID: "p1", Date: fixed}
	q.Prepare(now)
	assert.Equal(t, "p1", q.ID)
	assert.Equal(t, fixed, q.Date)
}
