// Package seed installs the default dataset a fresh school starts from:
// subjects with their coefficients, the four compositions, one class per
// level and section, a couple of teachers and the default user accounts.
package seed

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/dkonate/ecolia/core"
	"github.com/dkonate/ecolia/core/school"
	"github.com/dkonate/ecolia/core/user"
	"github.com/dkonate/ecolia/storage/recorddb"
)

var maternelleLevels = []string{"Petite Section", "Moyenne Section", "Grande Section"}

var primaryLevels = []string{"CP1", "CP2", "CE1", "CE2", "CM1", "CM2"}

type defaultUser struct {
	lastName, firstName, username, role, password string
}

// default accounts; passwords are hashed on the way in, never stored raw
var defaultUsers = []defaultUser{
	{"POUPOUYA", "Mme", "poupouya", user.RoleSecretary, "eyemon2024"},
	{"DIRECTEUR", "M.", "directeur", user.RoleAdmin, "director2024"},
	{"ENSEIGNANT", "M.", "enseignant", user.RoleTeacher, "teacher2024"},
}

// Run is idempotent: it does nothing once subjects exist.
func Run(db *recorddb.DB, log core.Logger) error {
	schoolRepo := recorddb.NewSchoolRepository(db)

	subjects, err := schoolRepo.AllSubjects()
	if err != nil {
		return errors.Wrap(err, "seeding defaults")
	}
	if len(subjects) > 0 {
		return nil
	}

	schoolYear := core.SchoolYear(time.Now())

	subjects, err = seedSubjects(schoolRepo)
	if err != nil {
		return errors.Wrap(err, "seeding subjects")
	}
	if err := seedPeriods(schoolRepo); err != nil {
		return errors.Wrap(err, "seeding compositions")
	}
	if err := seedClasses(schoolRepo, subjects, schoolYear); err != nil {
		return errors.Wrap(err, "seeding classes")
	}
	if err := seedTeachers(schoolRepo); err != nil {
		return errors.Wrap(err, "seeding teachers")
	}
	if err := seedUsers(recorddb.NewUserRepository(db)); err != nil {
		return errors.Wrap(err, "seeding users")
	}
	if err := seedProfile(schoolRepo, schoolYear); err != nil {
		return errors.Wrap(err, "seeding school profile")
	}

	log.Info("default data installed")
	return nil
}

func seedSubjects(repo *recorddb.SchoolRepository) ([]school.Subject, error) {
	data := []school.Subject{
		{Name: "Mathématiques", Coefficient: 4, Type: school.SubjectFundamental},
		{Name: "Français", Coefficient: 4, Type: school.SubjectFundamental},
		{Name: "Lecture", Coefficient: 3, Type: school.SubjectFundamental},
		{Name: "Écriture", Coefficient: 3, Type: school.SubjectFundamental},
		{Name: "Éveil Scientifique", Coefficient: 2, Type: school.SubjectAwakening},
		{Name: "Histoire-Géographie", Coefficient: 2, Type: school.SubjectAwakening},
		{Name: "Instruction Civique", Coefficient: 1, Type: school.SubjectAwakening},
		{Name: "Éducation Artistique", Coefficient: 1, Type: school.SubjectExpression},
		{Name: "Éducation Physique", Coefficient: 1, Type: school.SubjectExpression},
		{Name: "Chant", Coefficient: 1, Type: school.SubjectExpression},
	}
	created := make([]school.Subject, 0, len(data))
	for _, sub := range data {
		sub.Required = sub.Type == school.SubjectFundamental
		sub.ClassIDs = []string{}
		c, err := repo.CreateSubject(sub)
		if err != nil {
			return nil, err
		}
		created = append(created, c)
	}
	return created, nil
}

func seedPeriods(repo *recorddb.SchoolRepository) error {
	periods := []school.EvaluationPeriod{
		{Name: "1ère Composition", Coefficient: 1, Order: 1},
		{Name: "2ème Composition", Coefficient: 1, Order: 2},
		{Name: "3ème Composition", Coefficient: 1, Order: 3},
		// the year-end composition weighs double
		{Name: "Composition de fin d'année", Coefficient: 2, Order: 4},
	}
	for _, p := range periods {
		if _, err := repo.CreatePeriod(p); err != nil {
			return err
		}
	}
	return nil
}

func seedClasses(repo *recorddb.SchoolRepository, subjects []school.Subject, schoolYear string) error {
	levels := append(append([]string{}, maternelleLevels...), primaryLevels...)
	for _, level := range levels {
		maternelle := isMaternelle(level)
		sections := []string{"A", "B"}
		if maternelle {
			// single section for the maternelles
			sections = sections[:1]
		}
		for _, section := range sections {
			classSubjects := make([]school.Subject, 0, len(subjects))
			for _, sub := range subjects {
				// maternelles skip the awakening subjects
				if maternelle && sub.Type == school.SubjectAwakening {
					continue
				}
				classSubjects = append(classSubjects, sub)
			}
			cls, err := repo.CreateClass(school.Class{
				Level:      level,
				Section:    section,
				SchoolYear: schoolYear,
				MaxSize:    35,
				Room:       "Salle " + level + " " + section,
				Subjects:   classSubjects,
			})
			if err != nil {
				return err
			}
			for _, sub := range classSubjects {
				if _, _, err := repo.UpdateSubject(sub.ID, func(s *school.Subject) {
					s.ClassIDs = append(s.ClassIDs, cls.ID)
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func seedTeachers(repo *recorddb.SchoolRepository) error {
	teachers := []school.Teacher{
		{
			LastName:  "KOUASSI",
			FirstName: "Marie",
			Sex:       "F",
			Phone:     null.StringFrom("+225 07 XX XX XX XX"),
			Address:   null.StringFrom("Abidjan, Cocody"),
			Specialty: "Institutrice",
			Diploma:   "CEAP",
			HireDate:  "2020-09-01",
			Status:    "Actif",
			Salary:    150000,
		},
		{
			LastName:  "TRAORE",
			FirstName: "Amadou",
			Sex:       "M",
			Phone:     null.StringFrom("+225 05 XX XX XX XX"),
			Address:   null.StringFrom("Abidjan, Yopougon"),
			Specialty: "Professeur des écoles",
			Diploma:   "Licence Pédagogie",
			HireDate:  "2019-09-01",
			Status:    "Actif",
			Salary:    180000,
		},
	}
	for _, t := range teachers {
		if _, err := repo.CreateTeacher(t); err != nil {
			return err
		}
	}
	return nil
}

func seedUsers(repo *recorddb.UserRepository) error {
	existing, err := repo.AllUsers()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, du := range defaultUsers {
		usr := user.User{
			LastName:  du.lastName,
			FirstName: du.firstName,
			Username:  du.username,
			Role:      du.role,
			IsActive:  true,
		}
		if err := usr.SetPassword(du.password); err != nil {
			return err
		}
		if _, err := repo.CreateUser(usr); err != nil {
			return err
		}
	}
	return nil
}

func seedProfile(repo *recorddb.SchoolRepository, schoolYear string) error {
	if _, ok, err := repo.GetProfile(); err != nil || ok {
		return err
	}
	_, err := repo.CreateProfile(school.SchoolProfile{
		Name:             "École Primaire Excellence",
		Code:             "EPE2025",
		Address:          "Abidjan, Côte d'Ivoire",
		Phone:            "+225 XX XX XX XX XX",
		Email:            "contact@ecole.ci",
		Currency:         "FCFA",
		ActiveSchoolYear: schoolYear,
	})
	return err
}

func isMaternelle(level string) bool {
	for _, l := range maternelleLevels {
		if l == level {
			return true
		}
	}
	return false
}
