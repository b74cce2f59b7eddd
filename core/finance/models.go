package finance

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/dkonate/ecolia/core"
	"github.com/dkonate/ecolia/storage/record"
)

// Fee types
const (
	FeeTuition      = "scolarite"
	FeeRegistration = "inscription"
	FeeCanteen      = "cantine"
	FeeTransport    = "transport"
	FeeSupplies     = "fournitures"
)

// Balance statuses
const (
	StatusPaid    = "Payé"
	StatusPartial = "Partiel"
	StatusUnpaid  = "Impayé"
)

// defaults applied to payment metadata, matching the receipt forms
const (
	defaultMethod   = "Espèces"
	defaultOperator = "ADMIN"
)

// Installment is one scheduled partial-payment obligation.
type Installment struct {
	ID      string    `json:"id"`
	Number  int       `json:"number"`
	DueDate time.Time `json:"dueDate"`
	Amount  int64     `json:"amount"`
	Label   string    `json:"label"`
}

// FeeSchedule holds the fee components and tuition installments for one
// (level, school year) pair. Amounts are in whole francs.
type FeeSchedule struct {
	record.Meta
	Level        string        `json:"level"`
	SchoolYear   string        `json:"schoolYear"`
	Registration int64         `json:"registration"`
	Tuition      int64         `json:"tuition"`
	Canteen      int64         `json:"canteen"`
	Transport    int64         `json:"transport"`
	Supplies     int64         `json:"supplies"`
	Installments []Installment `json:"installments"`
}

// TotalDue sums all fee components.
func (f FeeSchedule) TotalDue() int64 {
	return f.Registration + f.Tuition + f.Canteen + f.Transport + f.Supplies
}

type Payment struct {
	record.Meta
	StudentID         string    `json:"studentId"`
	Amount            int64     `json:"amount"`
	Date              time.Time `json:"date"`
	FeeType           string    `json:"feeType"`
	Method            string    `json:"method"`
	ReceiptNumber     string    `json:"receiptNumber"`
	Operator          string    `json:"operator"`
	InstallmentNumber null.Int  `json:"installmentNumber,omitempty"`
	Note              string    `json:"note,omitempty"`
}

// PaymentMetadata enumerates the recognized optional payment fields.
type PaymentMetadata struct {
	FeeType           string   `json:"feeType"`
	Method            string   `json:"method"`
	Operator          string   `json:"operator"`
	ReceiptNumber     string   `json:"receiptNumber"`
	Note              string   `json:"note"`
	InstallmentNumber null.Int `json:"installmentNumber"`
}

// NewPayment contains information needed to record a payment.
type NewPayment struct {
	StudentID string          `json:"studentId" validate:"required"`
	Amount    int64           `json:"amount" validate:"required,gt=0"`
	Date      time.Time       `json:"date" validate:"required"`
	Metadata  PaymentMetadata `json:"metadata"`
}

func (np *NewPayment) Validate() error {
	np.StudentID = core.CleanString(np.StudentID)
	np.Metadata.FeeType = core.CleanString(np.Metadata.FeeType, true /* lower */)
	return core.TranslateValidationError(core.Validate.Struct(np))
}

// ScheduleItem is one installment annotated with what remains to be paid.
type ScheduleItem struct {
	InstallmentID string    `json:"installmentId"`
	Number        int       `json:"number"`
	DueDate       time.Time `json:"dueDate"`
	Amount        int64     `json:"amount"`
	Remaining     int64     `json:"remaining"`
	Label         string    `json:"label"`
}

type Allocation struct {
	InstallmentID string `json:"installmentId"`
	Number        int    `json:"number"`
	Amount        int64  `json:"amount"`
}

// PaymentResult reports how a recorded payment spread across installments.
// RemainingAmount is overpayment left for manual handling.
type PaymentResult struct {
	Payment         Payment      `json:"payment"`
	Allocations     []Allocation `json:"allocations"`
	RemainingAmount int64        `json:"remainingAmount"`
}

// Balance is a student's overall financial situation, all fee types included.
type Balance struct {
	TotalDue    int64    `json:"totalDue"`
	TotalPaid   int64    `json:"totalPaid"`
	Balance     int64    `json:"balance"`
	Status      string   `json:"status"`
	LastPayment *Payment `json:"lastPayment,omitempty"`
}

// OutstandingItem is an unpaid schedule item annotated with the amount
// already covered, for payment reminders.
type OutstandingItem struct {
	ScheduleItem
	Covered int64 `json:"covered"`
}
