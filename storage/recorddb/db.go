// Package recorddb wires the domain repositories over the typed record
// store. Collection names are the legacy local-storage keys so existing
// data exports keep importing cleanly.
package recorddb

import (
	"github.com/dkonate/ecolia/core/finance"
	"github.com/dkonate/ecolia/core/grading"
	"github.com/dkonate/ecolia/core/history"
	"github.com/dkonate/ecolia/core/school"
	"github.com/dkonate/ecolia/core/user"
	"github.com/dkonate/ecolia/storage/kv"
	"github.com/dkonate/ecolia/storage/record"
)

// legacy collection keys
const (
	colProfile      = "ecole"
	colSubjects     = "matieres"
	colClasses      = "classes"
	colTeachers     = "enseignants"
	colFeeSchedules = "fraisScolaires"
	colStudents     = "eleves"
	colPayments     = "paiements"
	colGrades       = "notes"
	colAverages     = "moyennesGenerales"
	colUsers        = "utilisateurs"
	colPeriods      = "compositions"
	colHistory      = "historiques"
)

type DB struct {
	rdb *record.DB

	students     *record.Collection[school.Student, *school.Student]
	classes      *record.Collection[school.Class, *school.Class]
	subjects     *record.Collection[school.Subject, *school.Subject]
	teachers     *record.Collection[school.Teacher, *school.Teacher]
	periods      *record.Collection[school.EvaluationPeriod, *school.EvaluationPeriod]
	profiles     *record.Collection[school.SchoolProfile, *school.SchoolProfile]
	feeSchedules *record.Collection[finance.FeeSchedule, *finance.FeeSchedule]
	payments     *record.Collection[finance.Payment, *finance.Payment]
	grades       *record.Collection[grading.Grade, *grading.Grade]
	averages     *record.Collection[grading.ComputedAverage, *grading.ComputedAverage]
	users        *record.Collection[user.User, *user.User]
	entries      *record.Collection[history.Entry, *history.Entry]
}

func Open(store kv.Store) *DB {
	rdb := record.Open(store)
	return &DB{
		rdb:          rdb,
		students:     record.NewCollection[school.Student](rdb, colStudents),
		classes:      record.NewCollection[school.Class](rdb, colClasses),
		subjects:     record.NewCollection[school.Subject](rdb, colSubjects),
		teachers:     record.NewCollection[school.Teacher](rdb, colTeachers),
		periods:      record.NewCollection[school.EvaluationPeriod](rdb, colPeriods),
		profiles:     record.NewCollection[school.SchoolProfile](rdb, colProfile),
		feeSchedules: record.NewCollection[finance.FeeSchedule](rdb, colFeeSchedules),
		payments:     record.NewCollection[finance.Payment](rdb, colPayments),
		grades:       record.NewCollection[grading.Grade](rdb, colGrades),
		averages:     record.NewCollection[grading.ComputedAverage](rdb, colAverages),
		users:        record.NewCollection[user.User](rdb, colUsers),
		entries:      record.NewCollection[history.Entry](rdb, colHistory),
	}
}

// Export dumps the whole database as one JSON document.
func (db *DB) Export() ([]byte, error) { return db.rdb.Export() }

// Import replaces collections from a previous export.
func (db *DB) Import(dump []byte) error { return db.rdb.Import(dump) }

// Reset drops all data.
func (db *DB) Reset() error { return db.rdb.Reset() }
