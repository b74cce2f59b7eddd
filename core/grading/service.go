package grading

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/dkonate/ecolia/core"
	"github.com/dkonate/ecolia/core/school"
)

type (
	Repository interface {
		// GradeFor finds the mark for one (student, subject, period, class) cell.
		GradeFor(studentID, subjectID, periodID, classID string) (Grade, bool, error)
		CreateGrade(Grade) (Grade, error)
		UpdateGrade(id string, mutate func(*Grade)) (Grade, bool, error)
		// GradesFor lists a student's marks within one period and class.
		GradesFor(studentID, periodID, classID string) ([]Grade, error)

		AverageFor(studentID, periodID, classID string) (ComputedAverage, bool, error)
		// AnyAverageFor matches any class, for callers that only know the period.
		AnyAverageFor(studentID, periodID string) (ComputedAverage, bool, error)
		AveragesByStudentClass(studentID, classID string) ([]ComputedAverage, error)
		CreateAverage(ComputedAverage) (ComputedAverage, error)
		UpdateAverage(id string, mutate func(*ComputedAverage)) (ComputedAverage, bool, error)

		GetClass(id string) (school.Class, bool, error)
		ActiveStudentsByClass(classID string) ([]school.Student, error)
		PeriodsForLevel(level string) ([]school.EvaluationPeriod, error)
	}

	// AuditTrail records user-visible mutations; nil disables auditing.
	AuditTrail interface {
		Record(user, action, details string)
	}

	Service struct {
		repo  Repository
		scale ScalePolicy
		log   core.Logger
		audit AuditTrail
	}
)

var NowFunc = time.Now // mockable

func NewService(repo Repository, scale ScalePolicy, log core.Logger, audit AuditTrail) *Service {
	if scale == nil {
		scale = DefaultScalePolicy()
	}
	if log == nil {
		log = core.NopLogger{}
	}
	return &Service{repo: repo, scale: scale, log: log, audit: audit}
}

// MaxScaleFor resolves the scale a subject is scored out of in a class.
func (svc *Service) MaxScaleFor(cls school.Class, subjectName string) float64 {
	return svc.scale.MaxScale(cls.Level, subjectName)
}

// SaveGrade upserts one mark. The value must fit the policy scale for the
// class and subject; out-of-range input is rejected before any write.
func (svc *Service) SaveGrade(ng NewGrade) (Grade, error) {
	if err := ng.Validate(); err != nil {
		return Grade{}, err
	}

	cls, ok, err := svc.repo.GetClass(ng.ClassID)
	if err != nil {
		return Grade{}, err
	}
	if !ok {
		return Grade{}, core.NewValidationError(errors.New("unknown class"),
			core.FieldError{Field: "classId", Error: "unknown class"})
	}
	sub, ok := cls.SubjectByID(ng.SubjectID)
	if !ok {
		return Grade{}, core.NewValidationError(errors.New("subject not taught in this class"),
			core.FieldError{Field: "subjectId", Error: "subject not taught in this class"})
	}

	maxScale := svc.MaxScaleFor(cls, sub.Name)
	if ng.Value < 0 || ng.Value > maxScale {
		return Grade{}, core.NewValidationError(errors.New("grade out of range"),
			core.FieldError{Field: "value", Error: fmt.Sprintf("must be between 0 and %g", maxScale)})
	}

	existing, ok, err := svc.repo.GradeFor(ng.StudentID, ng.SubjectID, ng.PeriodID, ng.ClassID)
	if err != nil {
		return Grade{}, err
	}
	if ok {
		updated, _, err := svc.repo.UpdateGrade(existing.ID, func(g *Grade) {
			g.Value = ng.Value
			g.MaxScale = maxScale
			g.Date = NowFunc().UTC()
		})
		return updated, err
	}
	return svc.repo.CreateGrade(Grade{
		StudentID: ng.StudentID,
		SubjectID: ng.SubjectID,
		PeriodID:  ng.PeriodID,
		ClassID:   ng.ClassID,
		Value:     ng.Value,
		MaxScale:  maxScale,
		Date:      NowFunc().UTC(),
	})
}

// SaveGradeSheet upserts a whole class sheet (one subject, one period) and
// recomputes the period averages, like the grade-entry form does. Marks
// outside the scale are skipped.
func (svc *Service) SaveGradeSheet(classID, periodID, subjectID string, marks map[string]float64, operator string) error {
	for studentID, value := range marks {
		_, err := svc.SaveGrade(NewGrade{
			StudentID: studentID,
			SubjectID: subjectID,
			PeriodID:  periodID,
			ClassID:   classID,
			Value:     value,
		})
		if err != nil {
			if core.IsValidationError(err) {
				continue
			}
			return err
		}
	}
	if err := svc.RecomputePeriodAverages(classID, periodID); err != nil {
		return err
	}
	if svc.audit != nil {
		svc.audit.Record(operator, "notes",
			fmt.Sprintf("class=%s period=%s subject=%s marks=%d", classID, periodID, subjectID, len(marks)))
	}
	return nil
}

// RecomputePeriodAverages rebuilds the memoized averages of every active
// student of the class for one evaluation period. Students without grades
// produce no row: absence is not zero.
func (svc *Service) RecomputePeriodAverages(classID, periodID string) error {
	cls, ok, err := svc.repo.GetClass(classID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	roster, err := svc.repo.ActiveStudentsByClass(classID)
	if err != nil {
		return err
	}

	for _, stu := range roster {
		grades, err := svc.repo.GradesFor(stu.ID, periodID, classID)
		if err != nil {
			return err
		}
		if len(grades) == 0 {
			continue
		}

		var totalPoints, totalCoefs float64
		for _, g := range grades {
			sub, ok := cls.SubjectByID(g.SubjectID)
			if !ok {
				// grade for a subject no longer on the class list: excluded
				// from the weighted sum
				svc.log.Warn("grade excluded from average: subject not in class list",
					map[string]interface{}{"grade": g.ID, "subject": g.SubjectID, "class": classID})
				continue
			}
			totalPoints += g.Normalized() * sub.Coefficient
			totalCoefs += sub.Coefficient
		}

		var avg float64
		if totalCoefs > 0 {
			avg = core.Round2(totalPoints / totalCoefs)
		}

		if err := svc.upsertAverage(stu.ID, classID, periodID, avg); err != nil {
			return err
		}
	}
	return nil
}

func (svc *Service) upsertAverage(studentID, classID, periodID string, avg float64) error {
	now := NowFunc().UTC()
	existing, ok, err := svc.repo.AverageFor(studentID, periodID, classID)
	if err != nil {
		return err
	}
	if ok {
		_, _, err = svc.repo.UpdateAverage(existing.ID, func(ca *ComputedAverage) {
			ca.Average = avg
			ca.ComputedAt = now
		})
		return err
	}
	_, err = svc.repo.CreateAverage(ComputedAverage{
		StudentID:  studentID,
		ClassID:    classID,
		PeriodID:   periodID,
		Average:    avg,
		ComputedAt: now,
	})
	return err
}

// ComputedAverageFor reads the memoized average for a student and period;
// 0 when absent.
func (svc *Service) ComputedAverageFor(studentID, periodID string) (float64, error) {
	ca, ok, err := svc.repo.AnyAverageFor(studentID, periodID)
	if err != nil || !ok {
		return 0, err
	}
	return ca.Average, nil
}

// AnnualAverage weights period averages by the period coefficients. Only
// periods holding a computed average above zero contribute weight: periods
// never evaluated are excluded, and so is a period evaluated at exactly 0,
// a long-standing quirk of the report cards, kept as-is.
func (svc *Service) AnnualAverage(studentID, classID string) (float64, error) {
	cls, ok, err := svc.repo.GetClass(classID)
	if err != nil || !ok {
		return 0, err
	}
	periods, err := svc.repo.PeriodsForLevel(cls.Level)
	if err != nil {
		return 0, err
	}
	averages, err := svc.repo.AveragesByStudentClass(studentID, classID)
	if err != nil {
		return 0, err
	}
	byPeriod := make(map[string]float64, len(averages))
	for _, ca := range averages {
		byPeriod[ca.PeriodID] = ca.Average
	}

	var totalPoints, totalCoefs float64
	for _, p := range periods {
		avg := byPeriod[p.ID]
		if avg > 0 {
			totalPoints += avg * p.Coefficient
			totalCoefs += p.Coefficient
		}
	}
	if totalCoefs == 0 {
		return 0, nil
	}
	return totalPoints / totalCoefs, nil
}
