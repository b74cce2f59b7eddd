// Package history keeps the append-only log of user-visible actions shown
// on the dashboard.
package history

import (
	"sort"
	"time"

	"github.com/dkonate/ecolia/storage/record"
)

type Entry struct {
	record.Meta
	User    string    `json:"user"`
	Action  string    `json:"action"`
	Details string    `json:"details,omitempty"`
	Date    time.Time `json:"date"`
}

type (
	Repository interface {
		CreateEntry(Entry) (Entry, error)
		AllEntries() ([]Entry, error)
	}

	Service struct {
		repo Repository
	}
)

var NowFunc = time.Now // mockable

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends an entry; failures are swallowed on purpose, the log is
// best-effort and must never fail the mutation it annotates.
func (svc *Service) Record(user, action, details string) {
	_, _ = svc.repo.CreateEntry(Entry{
		User:    user,
		Action:  action,
		Details: details,
		Date:    NowFunc().UTC(),
	})
}

// Recent returns the latest n entries, newest first.
func (svc *Service) Recent(n int) ([]Entry, error) {
	entries, err := svc.repo.AllEntries()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
