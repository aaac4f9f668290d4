package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/isati-sh/daycare-sub001/internal/models"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version           string                    `json:"version"`
	ExportedAt        time.Time                 `json:"exported_at"`
	DatabaseType      string                    `json:"database_type"`
	Accounts          []AccountBackup           `json:"accounts"`
	Children          []models.Child            `json:"children"`
	EmergencyContacts []models.EmergencyContact `json:"emergency_contacts"`
	DailyLogs         []models.DailyLog         `json:"daily_logs"`
}

// AccountBackup is an account including its password hash
type AccountBackup struct {
	models.Account
	PasswordHash string `json:"password_hash"`
}

// ImportStats counts what an import wrote and skipped
type ImportStats struct {
	Accounts, Children, EmergencyContacts, DailyLogs int
	Skipped                                          int
}

// BackupService handles backup and restore through the storage ports, so it
// works on any engine.
type BackupService struct {
	store        Store
	databaseType string
	now          Clock
	log          zerolog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(store Store, databaseType string, now Clock, log zerolog.Logger) *BackupService {
	if now == nil {
		now = time.Now
	}
	return &BackupService{store: store, databaseType: databaseType, now: now, log: log}
}

// Export writes every record as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   s.now().UTC(),
		DatabaseType: s.databaseType,
	}

	accounts, err := s.store.Accounts.ListAccounts(ctx, models.AccountFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to export accounts: %w", err)
	}
	for _, a := range accounts {
		backup.Accounts = append(backup.Accounts, AccountBackup{Account: a, PasswordHash: a.PasswordHash})
	}

	children, err := s.store.Children.ListChildren(ctx, models.ChildFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to export children: %w", err)
	}
	backup.Children = children

	for _, c := range children {
		contacts, err := s.store.EmergencyContacts.ListEmergencyContacts(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export emergency contacts: %w", err)
		}
		backup.EmergencyContacts = append(backup.EmergencyContacts, contacts...)

		logs, err := s.store.DailyLogs.ListDailyLogs(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export daily logs: %w", err)
		}
		backup.DailyLogs = append(backup.DailyLogs, logs...)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.Info().
		Int("accounts", len(backup.Accounts)).
		Int("children", len(backup.Children)).
		Int("emergency_contacts", len(backup.EmergencyContacts)).
		Int("daily_logs", len(backup.DailyLogs)).
		Msg("export complete")
	return backup, nil
}

// Import restores records from r. Accounts whose email already exists are
// skipped and references to them are pointed at the existing account.
// Children whose id already exists are skipped along with their sub-records.
func (s *BackupService) Import(ctx context.Context, r io.Reader) (*ImportStats, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.log.Info().Str("version", backup.Version).Time("exported_at", backup.ExportedAt).Msg("importing backup")

	stats := &ImportStats{}
	accountIDs := make(map[string]string, len(backup.Accounts))
	remap := func(id string) string {
		if mapped, ok := accountIDs[id]; ok {
			return mapped
		}
		return id
	}

	for _, b := range backup.Accounts {
		existing, err := s.store.Accounts.FindAccountByEmail(ctx, b.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to import accounts: %w", err)
		}
		if existing != nil {
			accountIDs[b.ID] = existing.ID
			stats.Skipped++
			continue
		}
		account := b.Account
		account.PasswordHash = b.PasswordHash
		if err := s.store.Accounts.InsertAccount(ctx, &account); err != nil {
			return nil, fmt.Errorf("failed to import account %s: %w", b.Email, err)
		}
		stats.Accounts++
	}

	imported := make(map[string]bool, len(backup.Children))
	for i := range backup.Children {
		child := backup.Children[i]
		existing, err := s.store.Children.FindChildByID(ctx, child.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to import children: %w", err)
		}
		if existing != nil {
			stats.Skipped++
			continue
		}
		child.ParentID = remap(child.ParentID)
		child.TeacherID = remap(child.TeacherID)
		if err := s.store.Children.InsertChild(ctx, &child); err != nil {
			return nil, fmt.Errorf("failed to import child %s: %w", child.ID, err)
		}
		imported[child.ID] = true
		stats.Children++
	}

	for i := range backup.EmergencyContacts {
		contact := backup.EmergencyContacts[i]
		if !imported[contact.ChildID] {
			stats.Skipped++
			continue
		}
		if err := s.store.EmergencyContacts.InsertEmergencyContact(ctx, &contact); err != nil {
			return nil, fmt.Errorf("failed to import emergency contact %s: %w", contact.ID, err)
		}
		stats.EmergencyContacts++
	}

	for i := range backup.DailyLogs {
		entry := backup.DailyLogs[i]
		if !imported[entry.ChildID] {
			stats.Skipped++
			continue
		}
		entry.AuthorID = remap(entry.AuthorID)
		if err := s.store.DailyLogs.InsertDailyLog(ctx, &entry); err != nil {
			return nil, fmt.Errorf("failed to import daily log %s: %w", entry.ID, err)
		}
		stats.DailyLogs++
	}

	s.log.Info().
		Int("accounts", stats.Accounts).
		Int("children", stats.Children).
		Int("emergency_contacts", stats.EmergencyContacts).
		Int("daily_logs", stats.DailyLogs).
		Int("skipped", stats.Skipped).
		Msg("import complete")
	return stats, nil
}
