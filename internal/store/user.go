package store

import (
	"context"
	"errors"

	"krankmeldung/internal/model"
)

const benutzerColumns = `id, email, password_hash, name, is_admin, mitarbeiter_id, created_at, updated_at`

func scanBenutzer(row interface{ Scan(...any) error }) (*model.Benutzer, error) {
	u := &model.Benutzer{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsAdmin, &u.MitarbeiterID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *Store) CreateBenutzer(ctx context.Context, u *model.Benutzer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO benutzer (id, email, password_hash, name, is_admin, mitarbeiter_id)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.IsAdmin, u.MitarbeiterID,
	)
	return translate(err)
}

// BenutzerByEmail returns nil, nil when no account has the email.
func (s *Store) BenutzerByEmail(ctx context.Context, email string) (*model.Benutzer, error) {
	u, err := scanBenutzer(s.pool.QueryRow(ctx,
		`SELECT `+benutzerColumns+` FROM benutzer WHERE email = $1`, email))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *Store) BenutzerByID(ctx context.Context, id string) (*model.Benutzer, error) {
	return scanBenutzer(s.pool.QueryRow(ctx,
		`SELECT `+benutzerColumns+` FROM benutzer WHERE id = $1`, id))
}

func (s *Store) ListBenutzer(ctx context.Context) ([]model.Benutzer, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+benutzerColumns+` FROM benutzer ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Benutzer
	for rows.Next() {
		u, err := scanBenutzer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
