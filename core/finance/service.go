package finance

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/dkonate/ecolia/core/school"
)

type (
	Repository interface {
		GetStudent(id string) (school.Student, bool, error)
		GetClass(id string) (school.Class, bool, error)
		// FeeScheduleFor resolves the schedule applicable to a level and
		// school year; absence is a normal outcome.
		FeeScheduleFor(level, schoolYear string) (FeeSchedule, bool, error)
		PaymentsByStudent(studentID string) ([]Payment, error)
		CreatePayment(Payment) (Payment, error)
	}

	// AuditTrail records user-visible mutations; nil disables auditing.
	AuditTrail interface {
		Record(user, action, details string)
	}

	Service struct {
		repo  Repository
		audit AuditTrail
	}
)

func NewService(repo Repository, audit AuditTrail) *Service {
	return &Service{repo: repo, audit: audit}
}

// ResolveSchedule derives the ordered installment list for a student, each
// annotated with what remains to be paid. Missing student, class or fee
// schedule yields an empty schedule, not an error.
func (svc *Service) ResolveSchedule(studentID string) ([]ScheduleItem, error) {
	stu, ok, err := svc.repo.GetStudent(studentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []ScheduleItem{}, nil
	}
	cls, ok, err := svc.repo.GetClass(stu.ClassID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []ScheduleItem{}, nil
	}
	sched, ok, err := svc.repo.FeeScheduleFor(cls.Level, cls.SchoolYear)
	if err != nil {
		return nil, err
	}
	if !ok || len(sched.Installments) == 0 {
		return []ScheduleItem{}, nil
	}

	payments, err := svc.repo.PaymentsByStudent(studentID)
	if err != nil {
		return nil, err
	}

	// Tuition payments pinned to an installment number count toward that
	// installment only; the rest pool up and cover installments in order.
	pinned := make(map[int]int64)
	var pool int64
	for _, p := range payments {
		if p.FeeType != FeeTuition {
			continue
		}
		if p.InstallmentNumber.Valid {
			pinned[p.InstallmentNumber.Int] += p.Amount
		} else {
			pool += p.Amount
		}
	}

	items := make([]ScheduleItem, 0, len(sched.Installments))
	for _, inst := range sched.Installments {
		remaining := inst.Amount - pinned[inst.Number]
		if remaining < 0 {
			remaining = 0
		}
		if pool > 0 && remaining > 0 {
			take := remaining
			if pool < take {
				take = pool
			}
			remaining -= take
			pool -= take
		}
		items = append(items, ScheduleItem{
			InstallmentID: inst.ID,
			Number:        inst.Number,
			DueDate:       inst.DueDate,
			Amount:        inst.Amount,
			Remaining:     remaining,
			Label:         inst.Label,
		})
	}
	return items, nil
}

// RecordPayment validates the input, spreads the amount across outstanding
// installments earliest-first and persists one Payment for the full amount.
// The allocation list is informational; what is owed is always recomputed
// from ResolveSchedule. Whatever the schedule cannot absorb comes back as
// RemainingAmount.
func (svc *Service) RecordPayment(np NewPayment) (PaymentResult, error) {
	if err := np.Validate(); err != nil {
		return PaymentResult{}, err
	}

	schedule, err := svc.ResolveSchedule(np.StudentID)
	if err != nil {
		return PaymentResult{}, err
	}

	allocations := make([]Allocation, 0, len(schedule))
	remaining := np.Amount
	for _, item := range schedule {
		if remaining <= 0 {
			break
		}
		if item.Remaining <= 0 {
			continue
		}
		alloc := item.Remaining
		if remaining < alloc {
			alloc = remaining
		}
		allocations = append(allocations, Allocation{
			InstallmentID: item.InstallmentID,
			Number:        item.Number,
			Amount:        alloc,
		})
		remaining -= alloc
	}

	meta := np.Metadata.withDefaults()
	pay := Payment{
		StudentID:         np.StudentID,
		Amount:            np.Amount,
		Date:              np.Date,
		FeeType:           meta.FeeType,
		Method:            meta.Method,
		ReceiptNumber:     meta.ReceiptNumber,
		Operator:          meta.Operator,
		InstallmentNumber: meta.InstallmentNumber,
		Note:              meta.Note,
	}
	created, err := svc.repo.CreatePayment(pay)
	if err != nil {
		return PaymentResult{}, errors.Wrap(err, "recording payment")
	}

	if svc.audit != nil {
		svc.audit.Record(meta.Operator, "paiement",
			fmt.Sprintf("student=%s amount=%d receipt=%s", np.StudentID, np.Amount, created.ReceiptNumber))
	}

	return PaymentResult{
		Payment:         created,
		Allocations:     allocations,
		RemainingAmount: remaining,
	}, nil
}

// StudentBalance sums all fee components against all recorded payments,
// whatever their fee type.
func (svc *Service) StudentBalance(studentID string) (Balance, error) {
	var totalDue int64

	stu, ok, err := svc.repo.GetStudent(studentID)
	if err != nil {
		return Balance{}, err
	}
	if ok {
		if cls, ok, err := svc.repo.GetClass(stu.ClassID); err != nil {
			return Balance{}, err
		} else if ok {
			if sched, ok, err := svc.repo.FeeScheduleFor(cls.Level, cls.SchoolYear); err != nil {
				return Balance{}, err
			} else if ok {
				totalDue = sched.TotalDue()
			}
		}
	}

	payments, err := svc.repo.PaymentsByStudent(studentID)
	if err != nil {
		return Balance{}, err
	}
	var totalPaid int64
	var last *Payment
	for i := range payments {
		totalPaid += payments[i].Amount
		if last == nil || payments[i].Date.After(last.Date) {
			last = &payments[i]
		}
	}

	bal := Balance{
		TotalDue:    totalDue,
		TotalPaid:   totalPaid,
		Balance:     totalDue - totalPaid,
		Status:      StatusUnpaid,
		LastPayment: last,
	}
	switch {
	case bal.Balance <= 0 && totalDue > 0:
		bal.Status = StatusPaid
	case totalPaid > 0 && totalPaid < totalDue:
		bal.Status = StatusPartial
	}
	return bal, nil
}

// OutstandingInstallments lists schedule items still owed, annotated with
// the amount already covered. Feeds payment reminders.
func (svc *Service) OutstandingInstallments(studentID string) ([]OutstandingItem, error) {
	schedule, err := svc.ResolveSchedule(studentID)
	if err != nil {
		return nil, err
	}
	items := make([]OutstandingItem, 0, len(schedule))
	for _, item := range schedule {
		if item.Remaining <= 0 {
			continue
		}
		items = append(items, OutstandingItem{
			ScheduleItem: item,
			Covered:      item.Amount - item.Remaining,
		})
	}
	return items, nil
}

func (meta PaymentMetadata) withDefaults() PaymentMetadata {
	if meta.FeeType == "" {
		meta.FeeType = FeeTuition
	}
	if meta.Method == "" {
		meta.Method = defaultMethod
	}
	if meta.Operator == "" {
		meta.Operator = defaultOperator
	}
	if meta.ReceiptNumber == "" {
		meta.ReceiptNumber = newReceiptNumber()
	}
	return meta
}

// newReceiptNumber mints "REC" + the last 8 digits of the current
// millisecond timestamp, like the receipt forms do.
func newReceiptNumber() string {
	ms := strconv.FormatInt(nowFunc().UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "REC" + ms
}

var nowFunc = time.Now
