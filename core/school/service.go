package school

import (
	"fmt"
	"sort"
	"time"

	"github.com/dkonate/ecolia/core"
)

type (
	Repository interface {
		CreateStudent(Student) (Student, error)
		AllStudents() ([]Student, error)
		GetStudent(id string) (Student, bool, error)
		UpdateStudent(id string, mutate func(*Student)) (Student, bool, error)
		DeleteStudent(id string) (bool, error)
		// SearchStudents does a case-insensitive match on matricule and names.
		SearchStudents(term string) ([]Student, error)
		CountStudents() (int, error)

		AllClasses() ([]Class, error)
		GetClass(id string) (Class, bool, error)
		AllSubjects() ([]Subject, error)
		AllPeriods() ([]EvaluationPeriod, error)
		GetProfile() (SchoolProfile, bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NowFunc feeds matricule and school-year generation. Mockable.
var NowFunc = time.Now

func (svc *Service) Register(ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	matricule, err := svc.NextMatricule()
	if err != nil {
		return Student{}, err
	}
	stu := Student{
		Matricule: matricule,
		LastName:  ns.LastName,
		FirstName: ns.FirstName,
		Sex:       ns.Sex,
		ClassID:   ns.ClassID,
		Status:    StudentActive,
	}
	if ns.BirthDate != "" {
		stu.BirthDate.SetValid(ns.BirthDate)
	}
	return svc.repo.CreateStudent(stu)
}

// NextMatricule generates "YY" + a zero-padded sequence number.
func (svc *Service) NextMatricule() (string, error) {
	count, err := svc.repo.CountStudents()
	if err != nil {
		return "", err
	}
	year := NowFunc().Year() % 100
	return fmt.Sprintf("%02d%04d", year, count+1), nil
}

func (svc *Service) GetStudent(id string) (Student, bool, error) {
	return svc.repo.GetStudent(id)
}

func (svc *Service) SearchStudents(term string) ([]Student, error) {
	return svc.repo.SearchStudents(core.CleanString(term))
}

// ActiveStudentsByClass returns the active roster of a class.
func (svc *Service) ActiveStudentsByClass(classID string) ([]Student, error) {
	students, err := svc.repo.AllStudents()
	if err != nil {
		return nil, err
	}
	roster := make([]Student, 0, len(students))
	for _, stu := range students {
		if stu.ClassID == classID && stu.IsActive() {
			roster = append(roster, stu)
		}
	}
	return roster, nil
}

// PeriodsForLevel returns the evaluation periods applicable to a level:
// unscoped periods plus those scoped to it, sorted by order.
func (svc *Service) PeriodsForLevel(level string) ([]EvaluationPeriod, error) {
	periods, err := svc.repo.AllPeriods()
	if err != nil {
		return nil, err
	}
	res := make([]EvaluationPeriod, 0, len(periods))
	for _, p := range periods {
		if !p.Level.Valid || p.Level.String == level {
			res = append(res, p)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Order < res[j].Order })
	return res, nil
}

// ActiveSchoolYear reads the configured school year, defaulting to the
// current calendar year's.
func (svc *Service) ActiveSchoolYear() (string, error) {
	profile, ok, err := svc.repo.GetProfile()
	if err != nil {
		return "", err
	}
	if !ok || profile.ActiveSchoolYear == "" {
		return core.SchoolYear(NowFunc()), nil
	}
	return profile.ActiveSchoolYear, nil
}
