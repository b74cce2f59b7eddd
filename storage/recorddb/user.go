package recorddb

import (
	"github.com/dkonate/ecolia/core/history"
	"github.com/dkonate/ecolia/core/user"
)

type UserRepository struct {
	db *DB
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(usr user.User) (user.User, error) {
	return r.db.users.Create(usr)
}

func (r *UserRepository) AllUsers() ([]user.User, error) {
	return r.db.users.All()
}

func (r *UserRepository) GetUserByID(id string) (user.User, bool, error) {
	return r.db.users.Get(id)
}

func (r *UserRepository) GetUserByUsername(username string) (user.User, bool, error) {
	return r.db.users.First(func(usr user.User) bool {
		return usr.Username == username
	})
}

func (r *UserRepository) UpdateUser(id string, mutate func(*user.User)) (user.User, bool, error) {
	return r.db.users.Update(id, mutate)
}

func (r *UserRepository) DeleteUser(id string) (bool, error) {
	return r.db.users.Delete(id)
}

type HistoryRepository struct {
	db *DB
}

var _ history.Repository = (*HistoryRepository)(nil)

func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) CreateEntry(e history.Entry) (history.Entry, error) {
	return r.db.entries.Create(e)
}

func (r *HistoryRepository) AllEntries() ([]history.Entry, error) {
	return r.db.entries.All()
}
