package school

import (
	"github.com/volatiletech/null/v8"

	"github.com/dkonate/ecolia/core"
	"github.com/dkonate/ecolia/storage/record"
)

// Student statuses
const (
	StudentActive   = "Actif"
	StudentInactive = "Inactif"
)

// Subject types
const (
	SubjectFundamental = "Fondamentale"
	SubjectAwakening   = "Éveil"
	SubjectExpression  = "Expression"
)

type Student struct {
	record.Meta
	Matricule    string      `json:"matricule"`
	LastName     string      `json:"lastName"`
	FirstName    string      `json:"firstName"`
	Sex          string      `json:"sex"`
	BirthDate    null.String `json:"birthDate,omitempty"`
	ClassID      string      `json:"classId"`
	Status       string      `json:"status"`
	GuardianName null.String `json:"guardianName,omitempty"`
	GuardianTel  null.String `json:"guardianTel,omitempty"`
	Photo        null.String `json:"photo,omitempty"`
}

func (s Student) IsActive() bool { return s.Status == StudentActive }

type Subject struct {
	record.Meta
	Name        string   `json:"name"`
	Coefficient float64  `json:"coefficient"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	ClassIDs    []string `json:"classIds"`
}

// Class carries its own ordered copy of the subject list; the per-class
// coefficient used for averaging is the one on this list.
type Class struct {
	record.Meta
	Level       string      `json:"level"`
	Section     string      `json:"section"`
	SchoolYear  string      `json:"schoolYear"`
	HeadTeacher null.String `json:"headTeacher,omitempty"`
	MaxSize     int         `json:"maxSize"`
	Room        string      `json:"room"`
	Subjects    []Subject   `json:"subjects"`
}

// SubjectByID looks a subject up on the class's own list.
func (c Class) SubjectByID(id string) (Subject, bool) {
	for _, sub := range c.Subjects {
		if sub.ID == id {
			return sub, true
		}
	}
	return Subject{}, false
}

type Teacher struct {
	record.Meta
	LastName  string      `json:"lastName"`
	FirstName string      `json:"firstName"`
	Sex       string      `json:"sex"`
	Phone     null.String `json:"phone,omitempty"`
	Address   null.String `json:"address,omitempty"`
	Specialty string      `json:"specialty"`
	Diploma   string      `json:"diploma"`
	HireDate  string      `json:"hireDate"`
	Status    string      `json:"status"`
	Salary    int64       `json:"salary"`
}

// EvaluationPeriod is a grading term ("composition") with its own weighting
// coefficient; optionally scoped to one level.
type EvaluationPeriod struct {
	record.Meta
	Name        string      `json:"name"`
	Order       int         `json:"order"`
	Coefficient float64     `json:"coefficient"`
	Level       null.String `json:"level,omitempty"`
}

type SchoolProfile struct {
	record.Meta
	Name             string `json:"name"`
	Code             string `json:"code"`
	Address          string `json:"address"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Currency         string `json:"currency"`
	ActiveSchoolYear string `json:"activeSchoolYear"`
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	LastName  string `json:"lastName" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	Sex       string `json:"sex" validate:"required,oneof=M F"`
	BirthDate string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	ClassID   string `json:"classId" validate:"required"`
}

func (ns *NewStudent) Validate() error {
	ns.LastName = core.CleanString(ns.LastName)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.Sex = core.CleanString(ns.Sex, true /* lower */)
	ns.Sex = map[string]string{"m": "M", "f": "F"}[ns.Sex]
	return core.TranslateValidationError(core.Validate.Struct(ns))
}
