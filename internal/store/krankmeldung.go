package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"krankmeldung/internal/model"
)

const krankmeldungColumns = `id, mitarbeiter_id, start_datum, end_datum, attest, notizen, status, erstellt_von, created_at, updated_at`

func scanKrankmeldung(row interface{ Scan(...any) error }) (*model.Krankmeldung, error) {
	k := &model.Krankmeldung{}
	err := row.Scan(&k.ID, &k.MitarbeiterID, &k.StartDatum, &k.EndDatum, &k.Attest,
		&k.Notizen, &k.Status, &k.ErstelltVon, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return k, nil
}

func (s *Store) ListKrankmeldungen(ctx context.Context, f model.KrankmeldungFilter) ([]model.Krankmeldung, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.MitarbeiterID != "" {
		add("mitarbeiter_id = $%d", f.MitarbeiterID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if !f.Von.IsZero() {
		add("end_datum >= $%d", f.Von)
	}
	if !f.Bis.IsZero() {
		add("start_datum <= $%d", f.Bis)
	}

	q := `SELECT ` + krankmeldungColumns + ` FROM krankmeldungen`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY start_datum DESC, created_at DESC`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Krankmeldung
	for rows.Next() {
		k, err := scanKrankmeldung(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *k)
	}
	return out, rows.Err()
}

func (s *Store) GetKrankmeldung(ctx context.Context, id string) (*model.Krankmeldung, error) {
	return scanKrankmeldung(s.pool.QueryRow(ctx,
		`SELECT `+krankmeldungColumns+` FROM krankmeldungen WHERE id = $1`, id))
}

// HasOverlap checks active records of the employee sharing a day with the range.
func (s *Store) HasOverlap(ctx context.Context, mitarbeiterID string, start, end time.Time, excludeID string) (bool, error) {
	q := `SELECT EXISTS(
		SELECT 1 FROM krankmeldungen
		WHERE mitarbeiter_id = $1
		  AND status IN ('eingereicht', 'bestaetigt')
		  AND start_datum <= $3
		  AND end_datum >= $2`

	args := []any{mitarbeiterID, start, end}

	if excludeID != "" {
		q += ` AND id != $4`
		args = append(args, excludeID)
	}
	q += `)`

	var exists bool
	err := s.pool.QueryRow(ctx, q, args...).Scan(&exists)
	return exists, err
}

func (s *Store) CreateKrankmeldung(ctx context.Context, k *model.Krankmeldung, entry *model.AenderungsLog) error {
	return s.withLog(ctx, entry, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`INSERT INTO krankmeldungen (id, mitarbeiter_id, start_datum, end_datum, attest, notizen, status, erstellt_von)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 RETURNING created_at, updated_at`,
			k.ID, k.MitarbeiterID, k.StartDatum, k.EndDatum, k.Attest, k.Notizen, string(k.Status), k.ErstelltVon,
		).Scan(&k.CreatedAt, &k.UpdatedAt)
	})
}

func (s *Store) UpdateKrankmeldung(ctx context.Context, k *model.Krankmeldung, entry *model.AenderungsLog) error {
	return s.withLog(ctx, entry, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`UPDATE krankmeldungen
			 SET start_datum=$1, end_datum=$2, attest=$3, notizen=$4, status=$5, updated_at=NOW()
			 WHERE id=$6
			 RETURNING updated_at`,
			k.StartDatum, k.EndDatum, k.Attest, k.Notizen, string(k.Status), k.ID,
		).Scan(&k.UpdatedAt)
	})
}

func (s *Store) DeleteKrankmeldung(ctx context.Context, id string, entry *model.AenderungsLog) error {
	return s.withLog(ctx, entry, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM krankmeldungen WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// withLog runs fn and appends the log entry in the same transaction.
func (s *Store) withLog(ctx context.Context, entry *model.AenderungsLog, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return translate(err)
	}

	if entry != nil {
		aenderungen := entry.Aenderungen
		if aenderungen == nil {
			aenderungen = []model.Aenderung{}
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO aenderungs_log (id, krankmeldung_id, benutzer_id, aktion, aenderungen)
			 VALUES ($1,$2,$3,$4,$5)
			 RETURNING created_at`,
			entry.ID, entry.KrankmeldungID, entry.BenutzerID, string(entry.Aktion), aenderungen,
		).Scan(&entry.CreatedAt)
		if err != nil {
			return translate(err)
		}
	}

	return translate(tx.Commit(ctx))
}

func (s *Store) ListAenderungen(ctx context.Context, krankmeldungID string) ([]model.AenderungsLog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, krankmeldung_id, benutzer_id, aktion, aenderungen, created_at
		 FROM aenderungs_log WHERE krankmeldung_id = $1
		 ORDER BY created_at`, krankmeldungID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AenderungsLog
	for rows.Next() {
		var e model.AenderungsLog
		if err := rows.Scan(&e.ID, &e.KrankmeldungID, &e.BenutzerID, &e.Aktion, &e.Aenderungen, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
