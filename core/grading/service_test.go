package grading_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkonate/ecolia/core"
	"github.com/dkonate/ecolia/core/grading"
	"github.com/dkonate/ecolia/core/school"
	"github.com/dkonate/ecolia/storage/recorddb"
	testutil "github.com/dkonate/ecolia/tests"
)

// warnLogger captures warnings; everything else is dropped.
type warnLogger struct {
	warns []string
}

func (l *warnLogger) Enable(bool)                        {}
func (l *warnLogger) Debug(string, ...interface{})       {}
func (l *warnLogger) Info(string, ...interface{})        {}
func (l *warnLogger) Warn(msg string, _ ...interface{})  { l.warns = append(l.warns, msg) }
func (l *warnLogger) Error(string, ...interface{})       {}
func (l *warnLogger) Fatal(msg string, _ ...interface{}) { panic(msg) }

type auditSpy struct {
	entries []string
}

func (a *auditSpy) Record(user, action, details string) {
	a.entries = append(a.entries, fmt.Sprintf("%s %s %s", user, action, details))
}

func newService(db *recorddb.DB, log core.Logger) *grading.Service {
	return grading.NewService(recorddb.NewGradingRepository(db), nil, log, nil)
}

func saveGrade(t *testing.T, svc *grading.Service, stu school.Student, cls school.Class, subjectID, periodID string, value float64) grading.Grade {
	t.Helper()
	g, err := svc.SaveGrade(grading.NewGrade{
		StudentID: stu.ID,
		SubjectID: subjectID,
		PeriodID:  periodID,
		ClassID:   cls.ID,
		Value:     value,
	})
	require.NoError(t, err)
	return g
}

func TestService_SaveGrade(t *testing.T) {
	db := testutil.NewTestDB(t)
	cls := testutil.CreateClass(t, db, "CE1", "A", "2024-2025",
		school.Subject{Name: "Mathématiques", Coefficient: 4, Type: school.SubjectFundamental},
		school.Subject{Name: "Orthographe", Coefficient: 2, Type: school.SubjectFundamental},
	)
	maths, ortho := cls.Subjects[0], cls.Subjects[1]
	stu := testutil.CreateStudent(t, db, cls, "KONE", "Awa")
	period := testutil.CreatePeriod(t, db, "1ère Composition", 1, 1)
	svc := newService(db, nil)

	t.Run("records the policy scale alongside the mark", func(t *testing.T) {
		g := saveGrade(t, svc, stu, cls, maths.ID, period.ID, 40)
		assert.Equal(t, float64(50), g.MaxScale)
		assert.Equal(t, float64(16), g.Normalized())

		g = saveGrade(t, svc, stu, cls, ortho.ID, period.ID, 12)
		assert.Equal(t, float64(20), g.MaxScale)
	})

	t.Run("saving again updates in place", func(t *testing.T) {
		saveGrade(t, svc, stu, cls, maths.ID, period.ID, 45)

		grades, err := recorddb.NewGradingRepository(db).GradesFor(stu.ID, period.ID, cls.ID)
		require.NoError(t, err)
		require.Len(t, grades, 2) // maths + orthographe, no duplicate
		for _, g := range grades {
			if g.SubjectID == maths.ID {
				assert.Equal(t, float64(45), g.Value)
			}
		}
	})

	t.Run("rejects marks above the subject scale", func(t *testing.T) {
		_, err := svc.SaveGrade(grading.NewGrade{
			StudentID: stu.ID, SubjectID: maths.ID, PeriodID: period.ID, ClassID: cls.ID, Value: 55,
		})
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))

		_, err = svc.SaveGrade(grading.NewGrade{
			StudentID: stu.ID, SubjectID: ortho.ID, PeriodID: period.ID, ClassID: cls.ID, Value: 25,
		})
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("rejects an unknown class", func(t *testing.T) {
		_, err := svc.SaveGrade(grading.NewGrade{
			StudentID: stu.ID, SubjectID: maths.ID, PeriodID: period.ID, ClassID: "nope", Value: 10,
		})
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("rejects a subject the class does not teach", func(t *testing.T) {
		_, err := svc.SaveGrade(grading.NewGrade{
			StudentID: stu.ID, SubjectID: "nope", PeriodID: period.ID, ClassID: cls.ID, Value: 10,
		})
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
	})
}

func TestService_RecomputePeriodAverages(t *testing.T) {
	t.Run("weights by the class coefficients and rounds to 2 decimals", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		cls := testutil.CreateClass(t, db, "CP1", "A", "2024-2025",
			school.Subject{Name: "Mathématiques", Coefficient: 4, Type: school.SubjectFundamental},
			school.Subject{Name: "Lecture", Coefficient: 2, Type: school.SubjectFundamental},
		)
		stu := testutil.CreateStudent(t, db, cls, "KONE", "Awa")
		period := testutil.CreatePeriod(t, db, "1ère Composition", 1, 1)
		svc := newService(db, nil)

		saveGrade(t, svc, stu, cls, cls.Subjects[0].ID, period.ID, 16)
		saveGrade(t, svc, stu, cls, cls.Subjects[1].ID, period.ID, 12)
		require.NoError(t, svc.RecomputePeriodAverages(cls.ID, period.ID))

		// (16*4 + 12*2) / 6
		avg, err := svc.ComputedAverageFor(stu.ID, period.ID)
		require.NoError(t, err)
		assert.Equal(t, 14.67, avg)
	})

	t.Run("normalizes mixed scales to 20 before weighting", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		cls := testutil.CreateClass(t, db, "CE1", "A", "2024-2025",
			school.Subject{Name: "Mathématiques", Coefficient: 4, Type: school.SubjectFundamental},
			school.Subject{Name: "Orthographe", Coefficient: 2, Type: school.SubjectFundamental},
		)
		stu := testutil.CreateStudent(t, db, cls, "KONE", "Awa")
		period := testutil.CreatePeriod(t, db, "1ère Composition", 1, 1)
		svc := newService(db, nil)

		saveGrade(t, svc, stu, cls, cls.Subjects[0].ID, period.ID, 40) // /50 -> 16
		saveGrade(t, svc, stu, cls, cls.Subjects[1].ID, period.ID, 12) // /20 -> 12
		require.NoError(t, svc.RecomputePeriodAverages(cls.ID, period.ID))

		avg, err := svc.ComputedAverageFor(stu.ID, period.ID)
		require.NoError(t, err)
		assert.Equal(t, 14.67, avg)
	})

	t.Run("a student without grades gets no row, not a zero", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		cls := testutil.CreateClass(t, db, "CP1", "A", "2024-2025",
			school.Subject{Name: "Mathématiques", Coefficient: 4, Type: school.SubjectFundamental},
		)
		graded := testutil.CreateStudent(t, db, cls, "KONE", "Awa")
		absent := testutil.CreateStudent(t, db, cls, "DIABY", "Issa")
		period := testutil.CreatePeriod(t, db, "1ère Composition", 1, 1)
		svc := newService(db, nil)

		saveGrade(t, svc, graded, cls, cls.Subjects[0].ID, period.ID, 10)
		require.NoError(t, svc.RecomputePeriodAverages(cls.ID, period.ID))

		repo := recorddb.NewGradingRepository(db)
		_, ok, err := repo.AverageFor(absent.ID, period.ID, cls.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		avg, err := svc.ComputedAverageFor(absent.ID, period.ID)
		require.NoError(t, err)
		assert.Zero(t, avg)
	})

	t.Run("grades for subjects off the class list are excluded and logged", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		cls := testutil.CreateClass(t, db, "CP1", "A", "2024-2025",
			school.Subject{Name: "Mathématiques", Coefficient: 4, Type: school.SubjectFundamental},
		)
		stu := testutil.CreateStudent(t, db, cls, "KONE", "Awa")
		period := testutil.CreatePeriod(t, db, "1ère Composition", 1, 1)
		log := &warnLogger{}
		svc := newService(db, log)

		saveGrade(t, svc, stu, cls, cls.Subjects[0].ID, period.ID, 14)
		// a leftover mark for a subject since removed from the class
		repo := recorddb.NewGradingRepository(db)
		_, err := repo.CreateGrade(grading.Grade{
			StudentID: stu.ID, SubjectID: "removed", PeriodID: period.ID, ClassID: cls.ID,
			Value: 2, MaxScale: 20,
		})
		require.NoError(t, err)

		require.NoError(t, svc.RecomputePeriodAverages(cls.ID, period.ID))

		avg, err := svc.ComputedAverageFor(stu.ID, period.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(14), avg)
		assert.NotEmpty(t, log.warns)
	})

	t.Run("all-zero coefficients produce a zero average row", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		cls := testutil.CreateClass(t, db, "CP1", "A", "2024-2025",
			school.Subject{Name: "Chant", Coefficient: 0, Type: school.SubjectExpression},
		)
		stu := testutil.CreateStudent(t, db, cls, "KONE", "Awa")
		period := testutil.CreatePeriod(t, db, "1ère Composition", 1, 1)
		svc := newService(db, nil)

		saveGrade(t, svc, stu, cls, cls.Subjects[0].ID, period.ID, 18)
		require.NoError(t, svc.RecomputePeriodAverages(cls.ID, period.ID))

		ca, ok, err := recorddb.NewGradingRepository(db).AverageFor(stu.ID, period.ID, cls.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Zero(t, ca.Average)
	})

	t.Run("recomputing overwrites the memoized row", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		cls := testutil.CreateClass(t, db, "CP1", "A", "2024-2025",
			school.Subject{Name: "Mathématiques", Coefficient: 4, Type: school.SubjectFundamental},
		)
		stu := testutil.CreateStudent(t, db, cls, "KONE", "Awa")
		period := testutil.CreatePeriod(t, db, "1ère Composition", 1, 1)
		svc := newService(db, nil)

		saveGrade(t, svc, stu, cls, cls.Subjects[0].ID, period.ID, 10)
		require.NoError(t, svc.RecomputePeriodAverages(cls.ID, period.ID))
		saveGrade(t, svc, stu, cls, cls.Subjects[0].ID, period.ID, 15)
		require.NoError(t, svc.RecomputePeriodAverages(cls.ID, period.ID))

		repo := recorddb.NewGradingRepository(db)
		rows, err := repo.AveragesByStudentClass(stu.ID, cls.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, float64(15), rows[0].Average)
	})
}

func TestService_SaveGradeSheet(t *testing.T) {
	db := testutil.NewTestDB(t)
	cls := testutil.CreateClass(t, db, "CE1", "A", "2024-2025",
		school.Subject{Name: "Mathématiques", Coefficient: 4, Type: school.SubjectFundamental},
	)
	stuA := testutil.CreateStudent(t, db, cls, "KONE", "Awa")
	stuB := testutil.CreateStudent(t, db, cls, "DIABY", "Issa")
	period := testutil.CreatePeriod(t, db, "1ère Composition", 1, 1)
	audit := &auditSpy{}
	svc := grading.NewService(recorddb.NewGradingRepository(db), nil, nil, audit)

	// 55 is above the /50 maths scale and must be skipped
	err := svc.SaveGradeSheet(cls.ID, period.ID, cls.Subjects[0].ID,
		map[string]float64{stuA.ID: 35, stuB.ID: 55}, "poupouya")
	require.NoError(t, err)

	repo := recorddb.NewGradingRepository(db)
	_, ok, err := repo.GradeFor(stuA.ID, cls.Subjects[0].ID, period.ID, cls.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = repo.GradeFor(stuB.ID, cls.Subjects[0].ID, period.ID, cls.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	avg, err := svc.ComputedAverageFor(stuA.ID, period.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(14), avg) // 35/50 -> 14

	assert.Len(t, audit.entries, 1)
}

func TestService_AnnualAverage(t *testing.T) {
	newFixture := func(t *testing.T) (*grading.Service, *recorddb.GradingRepository, school.Class, school.Student, []school.EvaluationPeriod) {
		t.Helper()
		db := testutil.NewTestDB(t)
		cls := testutil.CreateClass(t, db, "CE1", "A", "2024-2025",
			school.Subject{Name: "Mathématiques", Coefficient: 4, Type: school.SubjectFundamental},
		)
		stu := testutil.CreateStudent(t, db, cls, "KONE", "Awa")
		periods := []school.EvaluationPeriod{
			testutil.CreatePeriod(t, db, "1ère Composition", 1, 1),
			testutil.CreatePeriod(t, db, "2ème Composition", 2, 1),
			testutil.CreatePeriod(t, db, "3ème Composition", 3, 1),
			testutil.CreatePeriod(t, db, "Composition de fin d'année", 4, 2),
		}
		repo := recorddb.NewGradingRepository(db)
		return grading.NewService(repo, nil, nil, nil), repo, cls, stu, periods
	}

	memoize := func(t *testing.T, repo *recorddb.GradingRepository, stu school.Student, cls school.Class, periodID string, avg float64) {
		t.Helper()
		_, err := repo.CreateAverage(grading.ComputedAverage{
			StudentID: stu.ID, ClassID: cls.ID, PeriodID: periodID, Average: avg,
		})
		require.NoError(t, err)
	}

	t.Run("weights period averages by the period coefficients", func(t *testing.T) {
		svc, repo, cls, stu, periods := newFixture(t)
		memoize(t, repo, stu, cls, periods[0].ID, 12)
		memoize(t, repo, stu, cls, periods[1].ID, 14)
		memoize(t, repo, stu, cls, periods[2].ID, 10)
		memoize(t, repo, stu, cls, periods[3].ID, 16)

		annual, err := svc.AnnualAverage(stu.ID, cls.ID)
		require.NoError(t, err)
		// (12 + 14 + 10 + 16*2) / 5
		assert.Equal(t, 13.6, annual)
	})

	t.Run("unevaluated periods carry no weight", func(t *testing.T) {
		svc, repo, cls, stu, periods := newFixture(t)
		memoize(t, repo, stu, cls, periods[0].ID, 12.5)

		annual, err := svc.AnnualAverage(stu.ID, cls.ID)
		require.NoError(t, err)
		assert.Equal(t, 12.5, annual)
	})

	t.Run("a period evaluated at exactly zero carries no weight either", func(t *testing.T) {
		svc, repo, cls, stu, periods := newFixture(t)
		memoize(t, repo, stu, cls, periods[0].ID, 12.5)
		memoize(t, repo, stu, cls, periods[1].ID, 0)

		annual, err := svc.AnnualAverage(stu.ID, cls.ID)
		require.NoError(t, err)
		assert.Equal(t, 12.5, annual)
	})

	t.Run("no evaluated period at all yields zero", func(t *testing.T) {
		svc, _, cls, stu, _ := newFixture(t)

		annual, err := svc.AnnualAverage(stu.ID, cls.ID)
		require.NoError(t, err)
		assert.Zero(t, annual)
	})
}
