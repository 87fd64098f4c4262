package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"krankmeldung/internal/auth"
	"krankmeldung/internal/model"
	"krankmeldung/internal/store"
)

type Repository interface {
	BenutzerByID(ctx context.Context, id string) (*model.Benutzer, error)
	ListBenutzer(ctx context.Context) ([]model.Benutzer, error)

	ListMitarbeiter(ctx context.Context) ([]model.Mitarbeiter, error)
	GetMitarbeiter(ctx context.Context, id string) (*model.Mitarbeiter, error)
	CreateMitarbeiter(ctx context.Context, m *model.Mitarbeiter) error
	UpdateMitarbeiter(ctx context.Context, m *model.Mitarbeiter) error

	ListKrankmeldungen(ctx context.Context, f model.KrankmeldungFilter) ([]model.Krankmeldung, error)
	GetKrankmeldung(ctx context.Context, id string) (*model.Krankmeldung, error)
	HasOverlap(ctx context.Context, mitarbeiterID string, start, end time.Time, excludeID string) (bool, error)
	CreateKrankmeldung(ctx context.Context, k *model.Krankmeldung, entry *model.AenderungsLog) error
	UpdateKrankmeldung(ctx context.Context, k *model.Krankmeldung, entry *model.AenderungsLog) error
	DeleteKrankmeldung(ctx context.Context, id string, entry *model.AenderungsLog) error
	ListAenderungen(ctx context.Context, krankmeldungID string) ([]model.AenderungsLog, error)
}

// Service holds the sick-leave rules. The caller is taken from the claims on
// the context.
type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

type actor struct {
	claims        *auth.Claims
	mitarbeiterID string
}

func (a actor) admin() bool { return a.claims.IsAdmin }

func (s *Service) actor(ctx context.Context) (actor, error) {
	c, ok := auth.FromContext(ctx)
	if !ok {
		return actor{}, ErrUnauthenticated
	}
	a := actor{claims: c}
	if c.IsAdmin {
		return a, nil
	}
	u, err := s.repo.BenutzerByID(ctx, c.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return actor{}, ErrUnauthenticated
		}
		return actor{}, err
	}
	if u.MitarbeiterID != nil {
		a.mitarbeiterID = *u.MitarbeiterID
	}
	return a, nil
}

func (s *Service) admin(ctx context.Context) (actor, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return actor{}, err
	}
	if !a.admin() {
		return actor{}, ErrForbidden
	}
	return a, nil
}

func (a actor) owns(k *model.Krankmeldung) bool {
	return a.mitarbeiterID != "" && k.MitarbeiterID == a.mitarbeiterID
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ----- mitarbeiter -----

func (s *Service) ListMitarbeiter(ctx context.Context) ([]model.Mitarbeiter, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if a.admin() {
		return s.repo.ListMitarbeiter(ctx)
	}
	if a.mitarbeiterID == "" {
		return nil, nil
	}
	m, err := s.repo.GetMitarbeiter(ctx, a.mitarbeiterID)
	if err != nil {
		return nil, notFound(err)
	}
	return []model.Mitarbeiter{*m}, nil
}

func (s *Service) CreateMitarbeiter(ctx context.Context, in MitarbeiterInput) (*model.Mitarbeiter, error) {
	if _, err := s.admin(ctx); err != nil {
		return nil, err
	}
	m := &model.Mitarbeiter{ID: uuid.NewString(), Aktiv: true}
	if err := applyMitarbeiter(m, in); err != nil {
		return nil, err
	}
	if err := s.repo.CreateMitarbeiter(ctx, m); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateMitarbeiter(ctx context.Context, id string, in MitarbeiterInput) (*model.Mitarbeiter, error) {
	if _, err := s.admin(ctx); err != nil {
		return nil, err
	}
	m, err := s.repo.GetMitarbeiter(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := applyMitarbeiter(m, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateMitarbeiter(ctx, m); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, notFound(err)
	}
	return m, nil
}

func applyMitarbeiter(m *model.Mitarbeiter, in MitarbeiterInput) error {
	in.Personalnummer = strings.TrimSpace(in.Personalnummer)
	in.Vorname = strings.TrimSpace(in.Vorname)
	in.Nachname = strings.TrimSpace(in.Nachname)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Telefon = strings.TrimSpace(in.Telefon)
	in.Abteilung = strings.TrimSpace(in.Abteilung)
	if err := in.Validate(); err != nil {
		return err
	}

	m.Personalnummer = in.Personalnummer
	m.Vorname = in.Vorname
	m.Nachname = in.Nachname
	m.Email = in.Email
	m.Abteilung = in.Abteilung
	m.Telefon = ""
	if in.Telefon != "" {
		m.Telefon, _ = NormalizePhone(in.Telefon)
	}
	if in.Aktiv != nil {
		m.Aktiv = *in.Aktiv
	}
	return nil
}

// ListBenutzer is admin only.
func (s *Service) ListBenutzer(ctx context.Context) ([]model.Benutzer, error) {
	if _, err := s.admin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListBenutzer(ctx)
}

// ----- krankmeldungen -----

// ListKrankmeldungen returns everything matching f for admins. Other users
// only ever see their own employee's records.
func (s *Service) ListKrankmeldungen(ctx context.Context, f model.KrankmeldungFilter) ([]model.Krankmeldung, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !a.admin() {
		if a.mitarbeiterID == "" {
			return nil, nil
		}
		f.MitarbeiterID = a.mitarbeiterID
	}
	return s.repo.ListKrankmeldungen(ctx, f)
}

func (s *Service) visible(ctx context.Context, id string) (actor, *model.Krankmeldung, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return actor{}, nil, err
	}
	k, err := s.repo.GetKrankmeldung(ctx, id)
	if err != nil {
		return actor{}, nil, notFound(err)
	}
	// hide existence from non-owners
	if !a.admin() && !a.owns(k) {
		return actor{}, nil, ErrNotFound
	}
	return a, k, nil
}

func (s *Service) GetKrankmeldung(ctx context.Context, id string) (*model.Krankmeldung, error) {
	_, k, err := s.visible(ctx, id)
	return k, err
}

func (s *Service) CreateKrankmeldung(ctx context.Context, in KrankmeldungInput) (*model.Krankmeldung, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !a.admin() {
		if a.mitarbeiterID == "" {
			return nil, ErrNoMitarbeiter
		}
		in.MitarbeiterID = a.mitarbeiterID
	}
	in.Notizen = strings.TrimSpace(in.Notizen)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetMitarbeiter(ctx, in.MitarbeiterID); err != nil {
		return nil, notFound(err)
	}

	start, end := in.dates()
	if dup, err := s.repo.HasOverlap(ctx, in.MitarbeiterID, start, end, ""); err != nil {
		return nil, err
	} else if dup {
		return nil, ErrConflict
	}

	k := &model.Krankmeldung{
		ID:            uuid.NewString(),
		MitarbeiterID: in.MitarbeiterID,
		StartDatum:    start,
		EndDatum:      end,
		Attest:        in.Attest,
		Notizen:       in.Notizen,
		Status:        model.StatusEingereicht,
		ErstelltVon:   a.claims.ID,
	}
	entry := logEntry(k.ID, a, model.AktionErstellt, diff(nil, k))
	if err := s.repo.CreateKrankmeldung(ctx, k, entry); err != nil {
		// exclusion constraint caught a race
		if errors.Is(err, store.ErrOverlap) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return k, nil
}

// UpdateKrankmeldung changes dates, attest and notes. Owners may edit while
// the record is still eingereicht; admins until it becomes terminal.
func (s *Service) UpdateKrankmeldung(ctx context.Context, id string, in KrankmeldungInput) (*model.Krankmeldung, error) {
	a, k, err := s.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case a.admin():
		if k.Status != model.StatusEingereicht && k.Status != model.StatusBestaetigt {
			return nil, ErrInvalidTransition
		}
	case k.Status != model.StatusEingereicht:
		return nil, ErrForbidden
	}

	in.MitarbeiterID = k.MitarbeiterID
	in.Notizen = strings.TrimSpace(in.Notizen)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	start, end := in.dates()
	if dup, err := s.repo.HasOverlap(ctx, k.MitarbeiterID, start, end, k.ID); err != nil {
		return nil, err
	} else if dup {
		return nil, ErrConflict
	}

	before := *k
	k.StartDatum = start
	k.EndDatum = end
	k.Attest = in.Attest
	k.Notizen = in.Notizen

	changes := diff(&before, k)
	if len(changes) == 0 {
		return k, nil
	}
	if err := s.repo.UpdateKrankmeldung(ctx, k, logEntry(k.ID, a, model.AktionGeaendert, changes)); err != nil {
		if errors.Is(err, store.ErrOverlap) {
			return nil, ErrConflict
		}
		return nil, notFound(err)
	}
	return k, nil
}

// ChangeStatus moves a record through the workflow. Admins may take any
// allowed transition; owners may only withdraw a pending report.
func (s *Service) ChangeStatus(ctx context.Context, id string, in StatusInput) (*model.Krankmeldung, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	a, k, err := s.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	next := model.Status(in.Status)
	if !a.admin() && !(k.Status == model.StatusEingereicht && next == model.StatusStorniert) {
		return nil, ErrForbidden
	}
	if !k.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, k.Status, next)
	}

	before := *k
	k.Status = next
	if err := s.repo.UpdateKrankmeldung(ctx, k, logEntry(k.ID, a, model.AktionStatus, diff(&before, k))); err != nil {
		return nil, notFound(err)
	}
	return k, nil
}

func (s *Service) DeleteKrankmeldung(ctx context.Context, id string) error {
	a, err := s.admin(ctx)
	if err != nil {
		return err
	}
	k, err := s.repo.GetKrankmeldung(ctx, id)
	if err != nil {
		return notFound(err)
	}
	return notFound(s.repo.DeleteKrankmeldung(ctx, id, logEntry(id, a, model.AktionGeloescht, diff(k, nil))))
}

func (s *Service) History(ctx context.Context, id string) ([]model.AenderungsLog, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !a.admin() {
		// deleted records are only visible to admins
		if _, _, err := s.visible(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.repo.ListAenderungen(ctx, id)
}

func logEntry(id string, a actor, aktion model.Aktion, changes []model.Aenderung) *model.AenderungsLog {
	return &model.AenderungsLog{
		ID:             uuid.NewString(),
		KrankmeldungID: id,
		BenutzerID:     a.claims.ID,
		Aktion:         aktion,
		Aenderungen:    changes,
	}
}

// diff lists changed fields between two versions; nil stands for "absent".
func diff(old, cur *model.Krankmeldung) []model.Aenderung {
	fields := func(k *model.Krankmeldung) map[string]string {
		if k == nil {
			return map[string]string{}
		}
		return map[string]string{
			"mitarbeiterId": k.MitarbeiterID,
			"startDatum":    k.StartDatum.Format(DateLayout),
			"endDatum":      k.EndDatum.Format(DateLayout),
			"attest":        strconv.FormatBool(k.Attest),
			"notizen":       k.Notizen,
			"status":        string(k.Status),
		}
	}
	a, b := fields(old), fields(cur)

	var out []model.Aenderung
	for _, f := range []string{"mitarbeiterId", "startDatum", "endDatum", "attest", "notizen", "status"} {
		if a[f] != b[f] {
			out = append(out, model.Aenderung{Feld: f, Alt: a[f], Neu: b[f]})
		}
	}
	return out
}
