package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AliAbadiHub/val-backend/internal/user"
)

// Postgres persists users and profiles in PostgreSQL. Profile deletion rides
// on the ON DELETE CASCADE foreign key.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const userColumns = "id, email, password_hash, role, created_at, updated_at"

const profileColumns = `id, user_id, first_name, last_name, phone,
	address1, city1, address2, city2, address3, city3, address4, city4,
	date_of_birth, age, created_at, updated_at`

func (s *Postgres) CreateUser(ctx context.Context, u *user.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *Postgres) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Postgres) ListUsers(ctx context.Context) ([]user.WithProfile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.email, u.password_hash, u.role, u.created_at, u.updated_at,
		       p.id, p.first_name, p.last_name, p.phone,
		       p.address1, p.city1, p.address2, p.city2,
		       p.address3, p.city3, p.address4, p.city4,
		       p.date_of_birth, p.age, p.created_at, p.updated_at
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		ORDER BY u.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []user.WithProfile
	for rows.Next() {
		wp, err := scanUserWithProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		out = append(out, *wp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *Postgres) GetUserWithProfile(ctx context.Context, email string) (*user.WithProfile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.password_hash, u.role, u.created_at, u.updated_at,
		       p.id, p.first_name, p.last_name, p.phone,
		       p.address1, p.city1, p.address2, p.city2,
		       p.address3, p.city3, p.address4, p.city4,
		       p.date_of_birth, p.age, p.created_at, p.updated_at
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.email = $1
	`, email)
	wp, err := scanUserWithProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user with profile: %w", err)
	}
	return wp, nil
}

func (s *Postgres) UpdateUser(ctx context.Context, u *user.User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, role = $3, updated_at = $4
		WHERE id = $1
	`, u.ID, u.PasswordHash, u.Role, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) CreateProfile(ctx context.Context, p *user.Profile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, p.ID, p.UserID, p.FirstName, p.LastName, p.Phone,
		p.Address1, p.City1, p.Address2, p.City2,
		p.Address3, p.City3, p.Address4, p.City4,
		dateOrNil(p.DateOfBirth), p.Age, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateProfile
	}
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *Postgres) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*user.Profile, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *Postgres) UpdateProfile(ctx context.Context, p *user.Profile) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE profiles
		SET first_name = $2, last_name = $3, phone = $4,
		    address1 = $5, city1 = $6, address2 = $7, city2 = $8,
		    address3 = $9, city3 = $10, address4 = $11, city4 = $12,
		    date_of_birth = $13, age = $14, updated_at = $15
		WHERE user_id = $1
	`, p.UserID, p.FirstName, p.LastName, p.Phone,
		p.Address1, p.City1, p.Address2, p.City2,
		p.Address3, p.City3, p.Address4, p.City4,
		dateOrNil(p.DateOfBirth), p.Age, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func scanProfile(row pgx.Row) (*user.Profile, error) {
	var p user.Profile
	var dob *time.Time
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Phone,
		&p.Address1, &p.City1, &p.Address2, &p.City2,
		&p.Address3, &p.City3, &p.Address4, &p.City4,
		&dob, &p.Age, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dob != nil {
		d := user.Date(*dob)
		p.DateOfBirth = &d
	}
	return &p, nil
}

func scanUserWithProfile(row pgx.Row) (*user.WithProfile, error) {
	var wp user.WithProfile
	var (
		profileID *uuid.UUID
		firstName, lastName, phone,
		address1, city1, address2, city2,
		address3, city3, address4, city4 *string
		dob                  *time.Time
		age                  *int
		createdAt, updatedAt *time.Time
	)
	err := row.Scan(
		&wp.User.ID, &wp.User.Email, &wp.User.PasswordHash, &wp.User.Role,
		&wp.User.CreatedAt, &wp.User.UpdatedAt,
		&profileID, &firstName, &lastName, &phone,
		&address1, &city1, &address2, &city2,
		&address3, &city3, &address4, &city4,
		&dob, &age, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if profileID != nil {
		p := &user.Profile{
			ID:        *profileID,
			UserID:    wp.User.ID,
			FirstName: firstName,
			LastName:  lastName,
			Phone:     phone,
			Address1:  address1, City1: city1,
			Address2: address2, City2: city2,
			Address3: address3, City3: city3,
			Address4: address4, City4: city4,
			Age:       age,
			CreatedAt: *createdAt,
			UpdatedAt: *updatedAt,
		}
		if dob != nil {
			d := user.Date(*dob)
			p.DateOfBirth = &d
		}
		wp.Profile = p
	}
	return &wp, nil
}

func dateOrNil(d *user.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
