package recorddb

import "github.com/dkonate/ecolia/core/school"

type SchoolRepository struct {
	db *DB
}

var _ school.Repository = (*SchoolRepository)(nil)

func NewSchoolRepository(db *DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

func (r *SchoolRepository) CreateStudent(stu school.Student) (school.Student, error) {
	return r.db.students.Create(stu)
}

func (r *SchoolRepository) AllStudents() ([]school.Student, error) {
	return r.db.students.All()
}

func (r *SchoolRepository) GetStudent(id string) (school.Student, bool, error) {
	return r.db.students.Get(id)
}

func (r *SchoolRepository) UpdateStudent(id string, mutate func(*school.Student)) (school.Student, bool, error) {
	return r.db.students.Update(id, mutate)
}

func (r *SchoolRepository) DeleteStudent(id string) (bool, error) {
	return r.db.students.Delete(id)
}

func (r *SchoolRepository) SearchStudents(term string) ([]school.Student, error) {
	return r.db.students.Search(term, func(stu school.Student) []string {
		return []string{stu.Matricule, stu.LastName, stu.FirstName}
	})
}

func (r *SchoolRepository) CountStudents() (int, error) {
	return r.db.students.Count()
}

func (r *SchoolRepository) AllClasses() ([]school.Class, error) {
	return r.db.classes.All()
}

func (r *SchoolRepository) GetClass(id string) (school.Class, bool, error) {
	return r.db.classes.Get(id)
}

func (r *SchoolRepository) CreateClass(cls school.Class) (school.Class, error) {
	return r.db.classes.Create(cls)
}

func (r *SchoolRepository) UpdateClass(id string, mutate func(*school.Class)) (school.Class, bool, error) {
	return r.db.classes.Update(id, mutate)
}

func (r *SchoolRepository) AllSubjects() ([]school.Subject, error) {
	return r.db.subjects.All()
}

func (r *SchoolRepository) CreateSubject(sub school.Subject) (school.Subject, error) {
	return r.db.subjects.Create(sub)
}

func (r *SchoolRepository) UpdateSubject(id string, mutate func(*school.Subject)) (school.Subject, bool, error) {
	return r.db.subjects.Update(id, mutate)
}

func (r *SchoolRepository) AllPeriods() ([]school.EvaluationPeriod, error) {
	return r.db.periods.All()
}

func (r *SchoolRepository) CreatePeriod(p school.EvaluationPeriod) (school.EvaluationPeriod, error) {
	return r.db.periods.Create(p)
}

func (r *SchoolRepository) AllTeachers() ([]school.Teacher, error) {
	return r.db.teachers.All()
}

func (r *SchoolRepository) CreateTeacher(t school.Teacher) (school.Teacher, error) {
	return r.db.teachers.Create(t)
}

func (r *SchoolRepository) GetProfile() (school.SchoolProfile, bool, error) {
	profiles, err := r.db.profiles.All()
	if err != nil {
		return school.SchoolProfile{}, false, err
	}
	if len(profiles) == 0 {
		return school.SchoolProfile{}, false, nil
	}
	return profiles[0], true, nil
}

func (r *SchoolRepository) CreateProfile(p school.SchoolProfile) (school.SchoolProfile, error) {
	return r.db.profiles.Create(p)
}
