package recorddb

import (
	"github.com/dkonate/ecolia/core/finance"
	"github.com/dkonate/ecolia/core/school"
)

type FinanceRepository struct {
	db *DB
}

var _ finance.Repository = (*FinanceRepository)(nil)

func NewFinanceRepository(db *DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

func (r *FinanceRepository) GetStudent(id string) (school.Student, bool, error) {
	return r.db.students.Get(id)
}

func (r *FinanceRepository) GetClass(id string) (school.Class, bool, error) {
	return r.db.classes.Get(id)
}

func (r *FinanceRepository) FeeScheduleFor(level, schoolYear string) (finance.FeeSchedule, bool, error) {
	return r.db.feeSchedules.First(func(f finance.FeeSchedule) bool {
		return f.Level == level && f.SchoolYear == schoolYear
	})
}

func (r *FinanceRepository) CreateFeeSchedule(f finance.FeeSchedule) (finance.FeeSchedule, error) {
	return r.db.feeSchedules.Create(f)
}

func (r *FinanceRepository) PaymentsByStudent(studentID string) ([]finance.Payment, error) {
	return r.db.payments.Filter(func(p finance.Payment) bool {
		return p.StudentID == studentID
	})
}

func (r *FinanceRepository) AllPayments() ([]finance.Payment, error) {
	return r.db.payments.All()
}

func (r *FinanceRepository) CreatePayment(p finance.Payment) (finance.Payment, error) {
	return r.db.payments.Create(p)
}
