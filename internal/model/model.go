package model

import "time"

// Benutzer is an account that can log in.
type Benutzer struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	IsAdmin       bool      `json:"isAdmin"`
	MitarbeiterID *string   `json:"mitarbeiterId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Mitarbeiter struct {
	ID             string    `json:"id"`
	Personalnummer string    `json:"personalnummer"`
	Vorname        string    `json:"vorname"`
	Nachname       string    `json:"nachname"`
	Email          string    `json:"email"`
	Telefon        string    `json:"telefon"`
	Abteilung      string    `json:"abteilung"`
	Aktiv          bool      `json:"aktiv"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (m Mitarbeiter) FullName() string {
	return m.Vorname + " " + m.Nachname
}

type Status string

const (
	StatusEingereicht Status = "eingereicht"
	StatusBestaetigt  Status = "bestaetigt"
	StatusAbgelehnt   Status = "abgelehnt"
	StatusStorniert   Status = "storniert"
)

var transitions = map[Status][]Status{
	StatusEingereicht: {StatusBestaetigt, StatusAbgelehnt, StatusStorniert},
	StatusBestaetigt:  {StatusStorniert},
}

func (s Status) Valid() bool {
	switch s {
	case StatusEingereicht, StatusBestaetigt, StatusAbgelehnt, StatusStorniert:
		return true
	}
	return false
}

// CanTransition reports whether a record in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Krankmeldung is a sick-leave report. StartDatum and EndDatum are calendar
// days, both inclusive.
type Krankmeldung struct {
	ID            string    `json:"id"`
	MitarbeiterID string    `json:"mitarbeiterId"`
	StartDatum    time.Time `json:"startDatum"`
	EndDatum      time.Time `json:"endDatum"`
	Attest        bool      `json:"attest"`
	Notizen       string    `json:"notizen"`
	Status        Status    `json:"status"`
	ErstelltVon   string    `json:"erstelltVon"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Tage returns the number of calendar days covered.
func (k Krankmeldung) Tage() int {
	return int(day(k.EndDatum).Sub(day(k.StartDatum)).Hours()/24) + 1
}

// Arbeitstage counts Monday to Friday within the range.
func (k Krankmeldung) Arbeitstage() int {
	n := 0
	end := day(k.EndDatum)
	for d := day(k.StartDatum); !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

// Overlaps reports whether both ranges share at least one day.
func (k Krankmeldung) Overlaps(start, end time.Time) bool {
	return !day(k.StartDatum).After(day(end)) && !day(start).After(day(k.EndDatum))
}

type Aktion string

const (
	AktionErstellt  Aktion = "erstellt"
	AktionGeaendert Aktion = "geaendert"
	AktionStatus    Aktion = "status"
	AktionGeloescht Aktion = "geloescht"
)

// Aenderung is a single field change recorded in the log.
type Aenderung struct {
	Feld string `json:"feld"`
	Alt  string `json:"alt,omitempty"`
	Neu  string `json:"neu,omitempty"`
}

type AenderungsLog struct {
	ID             string      `json:"id"`
	KrankmeldungID string      `json:"krankmeldungId"`
	BenutzerID     string      `json:"benutzerId"`
	Aktion         Aktion      `json:"aktion"`
	Aenderungen    []Aenderung `json:"aenderungen"`
	CreatedAt      time.Time   `json:"createdAt"`
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// KrankmeldungFilter narrows a listing. Zero values match everything.
type KrankmeldungFilter struct {
	MitarbeiterID string
	Status        Status
	Von           time.Time
	Bis           time.Time
}
