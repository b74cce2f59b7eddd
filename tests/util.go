package testutil

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/dkonate/ecolia/core/finance"
	"github.com/dkonate/ecolia/core/school"
	"github.com/dkonate/ecolia/storage/kv/memkv"
	"github.com/dkonate/ecolia/storage/recorddb"
)

// NewTestDB returns a record database over a fresh in-memory substrate.
func NewTestDB(t *testing.T) *recorddb.DB {
	t.Helper()
	return recorddb.Open(memkv.Open())
}

func CreateClass(t *testing.T, db *recorddb.DB, level, section, schoolYear string, subjects ...school.Subject) school.Class {
	t.Helper()
	repo := recorddb.NewSchoolRepository(db)
	created := make([]school.Subject, 0, len(subjects))
	for _, sub := range subjects {
		c, err := repo.CreateSubject(sub)
		if err != nil {
			t.Fatalf("CreateClass() failed: %v", err)
		}
		created = append(created, c)
	}
	cls, err := repo.CreateClass(school.Class{
		Level:      level,
		Section:    section,
		SchoolYear: schoolYear,
		MaxSize:    35,
		Subjects:   created,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateStudent(t *testing.T, db *recorddb.DB, cls school.Class, lastName, firstName string) school.Student {
	t.Helper()
	stu, err := recorddb.NewSchoolRepository(db).CreateStudent(school.Student{
		Matricule: "25" + lastName,
		LastName:  lastName,
		FirstName: firstName,
		Sex:       "M",
		ClassID:   cls.ID,
		Status:    school.StudentActive,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

func CreatePeriod(t *testing.T, db *recorddb.DB, name string, order int, coefficient float64, level ...string) school.EvaluationPeriod {
	t.Helper()
	p := school.EvaluationPeriod{Name: name, Order: order, Coefficient: coefficient}
	if len(level) > 0 {
		p.Level = null.StringFrom(level[0])
	}
	p, err := recorddb.NewSchoolRepository(db).CreatePeriod(p)
	if err != nil {
		t.Fatalf("CreatePeriod() failed: %v", err)
	}
	return p
}

// CreateFeeSchedule installs a tuition schedule whose installments carry the
// given amounts, due one quarter apart starting 2024-10-01.
func CreateFeeSchedule(t *testing.T, db *recorddb.DB, level, schoolYear string, amounts ...int64) finance.FeeSchedule {
	t.Helper()
	var tuition int64
	installments := make([]finance.Installment, 0, len(amounts))
	due := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, amount := range amounts {
		tuition += amount
		installments = append(installments, finance.Installment{
			ID:      "inst-" + string(rune('1'+i)),
			Number:  i + 1,
			DueDate: due,
			Amount:  amount,
			Label:   "Versement " + string(rune('1'+i)),
		})
		due = due.AddDate(0, 3, 0)
	}
	sched, err := recorddb.NewFinanceRepository(db).CreateFeeSchedule(finance.FeeSchedule{
		Level:        level,
		SchoolYear:   schoolYear,
		Tuition:      tuition,
		Installments: installments,
	})
	if err != nil {
		t.Fatalf("CreateFeeSchedule() failed: %v", err)
	}
	return sched
}
