// Package memory keeps every record in process memory. It enforces the same
// unique email constraint as the SQL schema and backs DATABASE_TYPE=memory
// and the service tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/service"
)

// Store is an in-memory implementation of every storage port
type Store struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	emails   map[string]string
	children map[string]models.Child
	contacts map[string][]models.EmergencyContact
	logs     map[string][]models.DailyLog
}

// New creates an empty store
func New() *Store {
	return &Store{
		accounts: make(map[string]models.Account),
		emails:   make(map[string]string),
		children: make(map[string]models.Child),
		contacts: make(map[string][]models.EmergencyContact),
		logs:     make(map[string][]models.DailyLog),
	}
}

// Ports returns the store wired into every service port
func (s *Store) Ports() service.Store {
	return service.Store{
		Accounts:          s,
		Children:          s,
		EmergencyContacts: s,
		DailyLogs:         s,
	}
}

func duplicate(op, what string) error {
	return apperrors.Storage(op, fmt.Errorf("%w: %s", apperrors.ErrResourceAlreadyExists, what))
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, apperrors.ErrNotFound)
}

// FindAccountByEmail returns the account with email, or nil if none exists
func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, nil
	}
	a := s.accounts[id]
	return &a, nil
}

// FindAccountByID returns an account by id, or nil if none exists
func (s *Store) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// InsertAccount stores a new account; a taken email fails like the unique index
func (s *Store) InsertAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emails[account.Email]; taken {
		return duplicate("failed to create account", "accounts.email "+account.Email)
	}
	if _, taken := s.accounts[account.ID]; taken {
		return duplicate("failed to create account", "accounts.id "+account.ID)
	}
	s.accounts[account.ID] = *account
	s.emails[account.Email] = account.ID
	return nil
}

// UpdateAccount replaces an account's mutable fields. The email is kept.
func (s *Store) UpdateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.accounts[account.ID]
	if !ok {
		return notFound("account", account.ID)
	}
	// email is immutable
	updated := *account
	updated.Email = current.Email
	updated.CreatedAt = current.CreatedAt
	s.accounts[account.ID] = updated
	return nil
}

// ListAccounts returns accounts matching filter ordered by name
func (s *Store) ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Account
	for _, a := range s.accounts {
		if filter.Role != models.RoleNone && a.SiteRole != filter.Role {
			continue
		}
		if filter.ActiveOnly && !a.ActiveStatus {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

// InsertChild stores a new child record
func (s *Store) InsertChild(ctx context.Context, child *models.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.children[child.ID]; taken {
		return duplicate("failed to create child", "children.id "+child.ID)
	}
	s.children[child.ID] = cloneChild(*child)
	return nil
}

// FindChildByID returns a child by id, or nil if none exists
func (s *Store) FindChildByID(ctx context.Context, id string) (*models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.children[id]
	if !ok {
		return nil, nil
	}
	c = cloneChild(c)
	return &c, nil
}

// UpdateChild applies patch to a child
func (s *Store) UpdateChild(ctx context.Context, id string, patch models.ChildPatch, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.children[id]
	if !ok {
		return notFound("child", id)
	}
	patch.Apply(&c)
	if len(c.Allergies) == 0 {
		c.Allergies = nil
	}
	c.UpdatedAt = updatedAt
	s.children[id] = cloneChild(c)
	return nil
}

// DeleteChild removes a child with its emergency contacts and daily logs
func (s *Store) DeleteChild(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.children[id]; !ok {
		return notFound("child", id)
	}
	delete(s.children, id)
	delete(s.contacts, id)
	delete(s.logs, id)
	return nil
}

// ListChildren returns children matching filter ordered by last name, first name
func (s *Store) ListChildren(ctx context.Context, filter models.ChildFilter) ([]models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Child
	for _, c := range s.children {
		if filter.ParentID != "" && c.ParentID != filter.ParentID {
			continue
		}
		if filter.TeacherID != "" && c.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.AgeGroup != "" && c.AgeGroup != filter.AgeGroup {
			continue
		}
		out = append(out, cloneChild(c))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	return out, nil
}

// InsertEmergencyContact stores a contact for an existing child
func (s *Store) InsertEmergencyContact(ctx context.Context, contact *models.EmergencyContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.children[contact.ChildID]; !ok {
		return apperrors.Storage("failed to create emergency contact",
			fmt.Errorf("foreign key: child %s does not exist", contact.ChildID))
	}
	s.contacts[contact.ChildID] = append(s.contacts[contact.ChildID], *contact)
	return nil
}

// ListEmergencyContacts returns the contacts of a child
func (s *Store) ListEmergencyContacts(ctx context.Context, childID string) ([]models.EmergencyContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.contacts[childID]), nil
}

// InsertDailyLog stores a log for an existing child
func (s *Store) InsertDailyLog(ctx context.Context, log *models.DailyLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.children[log.ChildID]; !ok {
		return apperrors.Storage("failed to create daily log",
			fmt.Errorf("foreign key: child %s does not exist", log.ChildID))
	}
	s.logs[log.ChildID] = append(s.logs[log.ChildID], *log)
	return nil
}

// ListDailyLogs returns the logs of a child, newest first
func (s *Store) ListDailyLogs(ctx context.Context, childID string) ([]models.DailyLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.logs[childID])
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LogDate != out[j].LogDate {
			return strings.Compare(out[i].LogDate, out[j].LogDate) > 0
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneChild(c models.Child) models.Child {
	c.Allergies = slices.Clone(c.Allergies)
	return c
}
