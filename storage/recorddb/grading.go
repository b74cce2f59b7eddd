package recorddb

import (
	"sort"

	"github.com/dkonate/ecolia/core/grading"
	"github.com/dkonate/ecolia/core/school"
)

type GradingRepository struct {
	db *DB
}

var _ grading.Repository = (*GradingRepository)(nil)

func NewGradingRepository(db *DB) *GradingRepository {
	return &GradingRepository{db: db}
}

func (r *GradingRepository) GradeFor(studentID, subjectID, periodID, classID string) (grading.Grade, bool, error) {
	return r.db.grades.First(func(g grading.Grade) bool {
		return g.StudentID == studentID && g.SubjectID == subjectID &&
			g.PeriodID == periodID && g.ClassID == classID
	})
}

func (r *GradingRepository) CreateGrade(g grading.Grade) (grading.Grade, error) {
	return r.db.grades.Create(g)
}

func (r *GradingRepository) UpdateGrade(id string, mutate func(*grading.Grade)) (grading.Grade, bool, error) {
	return r.db.grades.Update(id, mutate)
}

func (r *GradingRepository) GradesFor(studentID, periodID, classID string) ([]grading.Grade, error) {
	return r.db.grades.Filter(func(g grading.Grade) bool {
		return g.StudentID == studentID && g.PeriodID == periodID && g.ClassID == classID
	})
}

func (r *GradingRepository) AverageFor(studentID, periodID, classID string) (grading.ComputedAverage, bool, error) {
	return r.db.averages.First(func(ca grading.ComputedAverage) bool {
		return ca.StudentID == studentID && ca.PeriodID == periodID && ca.ClassID == classID
	})
}

func (r *GradingRepository) AnyAverageFor(studentID, periodID string) (grading.ComputedAverage, bool, error) {
	return r.db.averages.First(func(ca grading.ComputedAverage) bool {
		return ca.StudentID == studentID && ca.PeriodID == periodID
	})
}

func (r *GradingRepository) AveragesByStudentClass(studentID, classID string) ([]grading.ComputedAverage, error) {
	return r.db.averages.Filter(func(ca grading.ComputedAverage) bool {
		return ca.StudentID == studentID && ca.ClassID == classID
	})
}

func (r *GradingRepository) CreateAverage(ca grading.ComputedAverage) (grading.ComputedAverage, error) {
	return r.db.averages.Create(ca)
}

func (r *GradingRepository) UpdateAverage(id string, mutate func(*grading.ComputedAverage)) (grading.ComputedAverage, bool, error) {
	return r.db.averages.Update(id, mutate)
}

func (r *GradingRepository) GetClass(id string) (school.Class, bool, error) {
	return r.db.classes.Get(id)
}

func (r *GradingRepository) ActiveStudentsByClass(classID string) ([]school.Student, error) {
	return r.db.students.Filter(func(stu school.Student) bool {
		return stu.ClassID == classID && stu.IsActive()
	})
}

func (r *GradingRepository) PeriodsForLevel(level string) ([]school.EvaluationPeriod, error) {
	periods, err := r.db.periods.Filter(func(p school.EvaluationPeriod) bool {
		return !p.Level.Valid || p.Level.String == level
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(periods, func(i, j int) bool { return periods[i].Order < periods[j].Order })
	return periods, nil
}
