package grading

import (
	"time"

	"github.com/dkonate/ecolia/core"
	"github.com/dkonate/ecolia/storage/record"
)

// Grade is one raw mark, scored out of MaxScale.
type Grade struct {
	record.Meta
	StudentID string    `json:"studentId"`
	SubjectID string    `json:"subjectId"`
	PeriodID  string    `json:"periodId"`
	ClassID   string    `json:"classId"`
	Value     float64   `json:"value"`
	MaxScale  float64   `json:"maxScale"`
	Date      time.Time `json:"date"`
}

// Normalized rescales the grade to the common 20-point maximum.
func (g Grade) Normalized() float64 {
	return g.Value / g.MaxScale * 20
}

// ComputedAverage is a memoized per-period average; recomputed and
// overwritten whenever grades change, never authoritative.
type ComputedAverage struct {
	record.Meta
	StudentID  string    `json:"studentId"`
	ClassID    string    `json:"classId"`
	PeriodID   string    `json:"periodId"`
	Average    float64   `json:"average"`
	ComputedAt time.Time `json:"computedAt"`
}

// NewGrade contains information needed to save one mark.
type NewGrade struct {
	StudentID string  `json:"studentId" validate:"required"`
	SubjectID string  `json:"subjectId" validate:"required"`
	PeriodID  string  `json:"periodId" validate:"required"`
	ClassID   string  `json:"classId" validate:"required"`
	Value     float64 `json:"value" validate:"gte=0"`
}

func (ng *NewGrade) Validate() error {
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.SubjectID = core.CleanString(ng.SubjectID)
	ng.PeriodID = core.CleanString(ng.PeriodID)
	ng.ClassID = core.CleanString(ng.ClassID)
	return core.TranslateValidationError(core.Validate.Struct(ng))
}
