package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/isati-sh/daycare-sub001/internal/database"
	"github.com/isati-sh/daycare-sub001/internal/models"
)

const accountColumns = `id, email, full_name, site_role, active_status, email_verified, password_hash, created_at, updated_at`

// AccountRepository handles database operations for accounts
type AccountRepository struct {
	db database.DBTX
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db database.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// InsertAccount inserts a new account. A duplicate email fails with a storage
// error that also matches apperrors.ErrResourceAlreadyExists.
func (r *AccountRepository) InsertAccount(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.Email,
		a.FullName,
		nullString(string(a.SiteRole)),
		a.ActiveStatus,
		a.EmailVerified,
		a.PasswordHash,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return storageErr(r.db, "failed to create account", err)
	}
	return nil
}

// FindAccountByEmail retrieves an account by exact email address
func (r *AccountRepository) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// FindAccountByID retrieves an account by ID
func (r *AccountRepository) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// UpdateAccount writes the mutable columns of an account
func (r *AccountRepository) UpdateAccount(ctx context.Context, a *models.Account) error {
	query := `
		UPDATE accounts
		SET full_name = ?, site_role = ?, active_status = ?, email_verified = ?, password_hash = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		a.FullName,
		nullString(string(a.SiteRole)),
		a.ActiveStatus,
		a.EmailVerified,
		a.PasswordHash,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return storageErr(r.db, "failed to update account", err)
	}
	return requireAffected(result, "account", a.ID)
}

// ListAccounts retrieves accounts ordered by name
func (r *AccountRepository) ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	var where []string
	var args []any
	if filter.Role != models.RoleNone {
		where = append(where, "site_role = ?")
		args = append(args, string(filter.Role))
	}
	if filter.ActiveOnly {
		where = append(where, "active_status = ?")
		args = append(args, true)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY full_name, email"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(r.db, "failed to list accounts", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, storageErr(r.db, "failed to scan account", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(r.db, "failed to list accounts", err)
	}
	return accounts, nil
}

func (r *AccountRepository) scanOne(row *sql.Row) (*models.Account, error) {
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(r.db, "failed to get account", err)
	}
	return a, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*models.Account, error) {
	a := &models.Account{}
	var role sql.NullString
	err := s.Scan(
		&a.ID,
		&a.Email,
		&a.FullName,
		&role,
		&a.ActiveStatus,
		&a.EmailVerified,
		&a.PasswordHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.SiteRole = models.SiteRole(role.String)
	return a, nil
}
