// Package health runs the database connectivity check.
package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

type DB interface {
	CountBenutzer(ctx context.Context) (int64, error)
	CountMitarbeiter(ctx context.Context) (int64, error)
	CountKrankmeldungen(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type Stats struct {
	UserCount         int64 `json:"userCount"`
	MitarbeiterCount  int64 `json:"mitarbeiterCount"`
	KrankmeldungCount int64 `json:"krankmeldungCount"`
	ConnectionTimeMs  int64 `json:"connectionTimeMs"`
}

// Check runs the three counts concurrently and waits for all of them, then
// times a single round trip. The first error wins.
func Check(ctx context.Context, db DB) (Stats, error) {
	var s Stats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.UserCount, err = db.CountBenutzer(gctx)
		return err
	})
	g.Go(func() (err error) {
		s.MitarbeiterCount, err = db.CountMitarbeiter(gctx)
		return err
	})
	g.Go(func() (err error) {
		s.KrankmeldungCount, err = db.CountKrankmeldungen(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	start := time.Now()
	if err := db.Ping(ctx); err != nil {
		return Stats{}, err
	}
	s.ConnectionTimeMs = time.Since(start).Milliseconds()
	return s, nil
}
