package store

import (
	"context"

	"krankmeldung/internal/model"
)

const mitarbeiterColumns = `id, personalnummer, vorname, nachname, email, telefon, abteilung, aktiv, created_at, updated_at`

func scanMitarbeiter(row interface{ Scan(...any) error }) (*model.Mitarbeiter, error) {
	m := &model.Mitarbeiter{}
	err := row.Scan(&m.ID, &m.Personalnummer, &m.Vorname, &m.Nachname, &m.Email,
		&m.Telefon, &m.Abteilung, &m.Aktiv, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

func (s *Store) CreateMitarbeiter(ctx context.Context, m *model.Mitarbeiter) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO mitarbeiter (id, personalnummer, vorname, nachname, email, telefon, abteilung, aktiv)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING created_at, updated_at`,
		m.ID, m.Personalnummer, m.Vorname, m.Nachname, m.Email, m.Telefon, m.Abteilung, m.Aktiv,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return translate(err)
}

func (s *Store) UpdateMitarbeiter(ctx context.Context, m *model.Mitarbeiter) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE mitarbeiter
		 SET personalnummer=$1, vorname=$2, nachname=$3, email=$4, telefon=$5, abteilung=$6, aktiv=$7, updated_at=NOW()
		 WHERE id=$8
		 RETURNING created_at, updated_at`,
		m.Personalnummer, m.Vorname, m.Nachname, m.Email, m.Telefon, m.Abteilung, m.Aktiv, m.ID,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return translate(err)
}

func (s *Store) GetMitarbeiter(ctx context.Context, id string) (*model.Mitarbeiter, error) {
	return scanMitarbeiter(s.pool.QueryRow(ctx,
		`SELECT `+mitarbeiterColumns+` FROM mitarbeiter WHERE id = $1`, id))
}

func (s *Store) ListMitarbeiter(ctx context.Context) ([]model.Mitarbeiter, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+mitarbeiterColumns+` FROM mitarbeiter ORDER BY nachname, vorname`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Mitarbeiter
	for rows.Next() {
		m, err := scanMitarbeiter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
