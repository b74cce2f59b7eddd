package finance_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/dkonate/ecolia/core"
	"github.com/dkonate/ecolia/core/finance"
	"github.com/dkonate/ecolia/storage/recorddb"
	testutil "github.com/dkonate/ecolia/tests"
)

var paymentDate = time.Date(2024, 11, 5, 10, 0, 0, 0, time.UTC)

// setup installs a CE1 class with a 30000/30000/40000 tuition schedule and
// one enrolled student.
func setup(t *testing.T) (*finance.Service, *recorddb.DB, string) {
	t.Helper()
	db := testutil.NewTestDB(t)
	cls := testutil.CreateClass(t, db, "CE1", "A", "2024-2025")
	testutil.CreateFeeSchedule(t, db, "CE1", "2024-2025", 30000, 30000, 40000)
	stu := testutil.CreateStudent(t, db, cls, "KONE", "Awa")
	svc := finance.NewService(recorddb.NewFinanceRepository(db), nil)
	return svc, db, stu.ID
}

func pay(t *testing.T, svc *finance.Service, studentID string, amount int64, meta finance.PaymentMetadata) finance.PaymentResult {
	t.Helper()
	res, err := svc.RecordPayment(finance.NewPayment{
		StudentID: studentID,
		Amount:    amount,
		Date:      paymentDate,
		Metadata:  meta,
	})
	require.NoError(t, err)
	return res
}

func remainings(items []finance.ScheduleItem) []int64 {
	res := make([]int64, 0, len(items))
	for _, item := range items {
		res = append(res, item.Remaining)
	}
	return res
}

func TestService_ResolveSchedule(t *testing.T) {
	t.Run("fresh student owes every installment", func(t *testing.T) {
		svc, _, stuID := setup(t)

		items, err := svc.ResolveSchedule(stuID)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, []int64{30000, 30000, 40000}, remainings(items))
		for i, item := range items {
			assert.Equal(t, i+1, item.Number)
		}
	})

	t.Run("unknown student yields an empty schedule", func(t *testing.T) {
		svc, _, _ := setup(t)

		items, err := svc.ResolveSchedule("nope")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("class without a fee schedule yields an empty schedule", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		cls := testutil.CreateClass(t, db, "CM2", "B", "2024-2025")
		stu := testutil.CreateStudent(t, db, cls, "DIABY", "Issa")
		svc := finance.NewService(recorddb.NewFinanceRepository(db), nil)

		items, err := svc.ResolveSchedule(stu.ID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("a spread payment covers installments in order", func(t *testing.T) {
		svc, _, stuID := setup(t)
		pay(t, svc, stuID, 50000, finance.PaymentMetadata{})

		items, err := svc.ResolveSchedule(stuID)
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 10000, 40000}, remainings(items))
	})

	t.Run("a pinned payment counts toward its installment only", func(t *testing.T) {
		svc, _, stuID := setup(t)
		pay(t, svc, stuID, 30000, finance.PaymentMetadata{InstallmentNumber: null.IntFrom(2)})

		items, err := svc.ResolveSchedule(stuID)
		require.NoError(t, err)
		assert.Equal(t, []int64{30000, 0, 40000}, remainings(items))
	})
}

func TestService_RecordPayment(t *testing.T) {
	t.Run("rejects a non-positive amount before any write", func(t *testing.T) {
		svc, db, stuID := setup(t)

		_, err := svc.RecordPayment(finance.NewPayment{StudentID: stuID, Amount: 0, Date: paymentDate})
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))

		payments, err := recorddb.NewFinanceRepository(db).PaymentsByStudent(stuID)
		require.NoError(t, err)
		assert.Empty(t, payments)
	})

	t.Run("spreads across installments earliest first", func(t *testing.T) {
		svc, db, stuID := setup(t)

		res := pay(t, svc, stuID, 50000, finance.PaymentMetadata{})
		assert.Equal(t, []finance.Allocation{
			{InstallmentID: "inst-1", Number: 1, Amount: 30000},
			{InstallmentID: "inst-2", Number: 2, Amount: 20000},
		}, res.Allocations)
		assert.Zero(t, res.RemainingAmount)

		// one payment for the full amount, with the receipt-form defaults
		payments, err := recorddb.NewFinanceRepository(db).PaymentsByStudent(stuID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, int64(50000), payments[0].Amount)
		assert.Equal(t, finance.FeeTuition, payments[0].FeeType)
		assert.Equal(t, "Espèces", payments[0].Method)
		assert.Equal(t, "ADMIN", payments[0].Operator)
		assert.True(t, strings.HasPrefix(payments[0].ReceiptNumber, "REC"))
	})

	t.Run("covering the whole schedule zeroes every installment", func(t *testing.T) {
		svc, _, stuID := setup(t)
		pay(t, svc, stuID, 50000, finance.PaymentMetadata{})

		res := pay(t, svc, stuID, 50000, finance.PaymentMetadata{})
		assert.Equal(t, []finance.Allocation{
			{InstallmentID: "inst-2", Number: 2, Amount: 10000},
			{InstallmentID: "inst-3", Number: 3, Amount: 40000},
		}, res.Allocations)
		assert.Zero(t, res.RemainingAmount)

		items, err := svc.ResolveSchedule(stuID)
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 0, 0}, remainings(items))
	})

	t.Run("overpayment is reported, the payment is still recorded", func(t *testing.T) {
		svc, db, stuID := setup(t)

		res := pay(t, svc, stuID, 150000, finance.PaymentMetadata{})
		assert.Equal(t, int64(50000), res.RemainingAmount)

		payments, err := recorddb.NewFinanceRepository(db).PaymentsByStudent(stuID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, int64(150000), payments[0].Amount)
	})

	t.Run("a replayed payment counts twice", func(t *testing.T) {
		svc, _, stuID := setup(t)
		pay(t, svc, stuID, 30000, finance.PaymentMetadata{})
		pay(t, svc, stuID, 30000, finance.PaymentMetadata{})

		items, err := svc.ResolveSchedule(stuID)
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 0, 40000}, remainings(items))
	})

	t.Run("no schedule: nothing to allocate, payment recorded anyway", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		cls := testutil.CreateClass(t, db, "CM2", "B", "2024-2025")
		stu := testutil.CreateStudent(t, db, cls, "DIABY", "Issa")
		svc := finance.NewService(recorddb.NewFinanceRepository(db), nil)

		res := pay(t, svc, stu.ID, 25000, finance.PaymentMetadata{})
		assert.Empty(t, res.Allocations)
		assert.Equal(t, int64(25000), res.RemainingAmount)

		payments, err := recorddb.NewFinanceRepository(db).PaymentsByStudent(stu.ID)
		require.NoError(t, err)
		assert.Len(t, payments, 1)
	})
}

func TestService_StudentBalance(t *testing.T) {
	svc, _, stuID := setup(t)

	bal, err := svc.StudentBalance(stuID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), bal.TotalDue)
	assert.Equal(t, finance.StatusUnpaid, bal.Status)
	assert.Nil(t, bal.LastPayment)

	pay(t, svc, stuID, 50000, finance.PaymentMetadata{})
	bal, err = svc.StudentBalance(stuID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), bal.TotalPaid)
	assert.Equal(t, int64(50000), bal.Balance)
	assert.Equal(t, finance.StatusPartial, bal.Status)
	require.NotNil(t, bal.LastPayment)
	assert.Equal(t, int64(50000), bal.LastPayment.Amount)

	pay(t, svc, stuID, 50000, finance.PaymentMetadata{})
	bal, err = svc.StudentBalance(stuID)
	require.NoError(t, err)
	assert.Equal(t, finance.StatusPaid, bal.Status)
	assert.Zero(t, bal.Balance)
}

func TestService_OutstandingInstallments(t *testing.T) {
	svc, _, stuID := setup(t)
	pay(t, svc, stuID, 50000, finance.PaymentMetadata{})

	items, err := svc.OutstandingInstallments(stuID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Number)
	assert.Equal(t, int64(20000), items[0].Covered)
	assert.Equal(t, int64(10000), items[0].Remaining)
	assert.Equal(t, 3, items[1].Number)
	assert.Zero(t, items[1].Covered)
}
