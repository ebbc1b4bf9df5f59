package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, emp_id, name, email, password, password_hash, role, team_id, status, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmpID matches case-insensitively; emp_id is declared COLLATE
// NOCASE so equality comparisons already ignore case.
func (r *usersRepo) GetUserByEmpID(ctx context.Context, empID string) (domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE emp_id = ?`, empID)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *usersRepo) getUser(ctx context.Context, query string, arg any) (domain.User, error) {
	var (
		u        domain.User
		email    sql.NullString
		password sql.NullString
		hash     sql.NullString
		role     string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.EmpID, &u.Name, &email, &password, &hash,
		&role, &u.TeamID, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Email = mapNullString(email)
	u.Password = mapNullString(password)
	u.PasswordHash = mapNullString(hash)
	u.Role = domain.Role(role)
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	if u.Status == "" {
		u.Status = domain.StatusActive
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.EmpID, u.Name, mapStringNull(u.Email), mapStringNull(u.Password),
		mapStringNull(u.PasswordHash), string(u.Role), u.TeamID, u.Status,
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

// UpdatePasswordHash also clears the legacy plaintext column so a rehashed
// credential leaves no plaintext behind.
func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, password = NULL, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) UpdateTeam(ctx context.Context, userID, teamID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET team_id = ?, updated_at = ? WHERE id = ?`,
		teamID, time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
