package service

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"

	"krankmeldung/internal/model"
)

const DateLayout = "2006-01-02"

// MaxSpan bounds how far endDatum may lie after startDatum.
const MaxSpan = 1 // years

// DefaultRegion is used for phone numbers written without country code.
const DefaultRegion = "DE"

type KrankmeldungInput struct {
	MitarbeiterID string `json:"mitarbeiterId"`
	StartDatum    string `json:"startDatum"`
	EndDatum      string `json:"endDatum"`
	Attest        bool   `json:"attest"`
	Notizen       string `json:"notizen"`
}

func (in KrankmeldungInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.MitarbeiterID, validation.Required, is.UUID),
		validation.Field(&in.StartDatum, validation.Required, validation.Date(DateLayout)),
		validation.Field(&in.EndDatum,
			validation.Required,
			validation.Date(DateLayout),
			validation.By(notBefore(in.StartDatum)),
			validation.By(withinSpan(in.StartDatum)),
		),
		validation.Field(&in.Notizen, validation.Length(0, 1000)),
	)
}

func (in KrankmeldungInput) dates() (time.Time, time.Time) {
	start, _ := time.Parse(DateLayout, in.StartDatum)
	end, _ := time.Parse(DateLayout, in.EndDatum)
	return start, end
}

func notBefore(start string) validation.RuleFunc {
	return func(value interface{}) error {
		end, _ := value.(string)
		s, err1 := time.Parse(DateLayout, start)
		e, err2 := time.Parse(DateLayout, end)
		if err1 != nil || err2 != nil {
			return nil
		}
		if e.Before(s) {
			return errors.New("must not be before startDatum")
		}
		return nil
	}
}

func withinSpan(start string) validation.RuleFunc {
	return func(value interface{}) error {
		end, _ := value.(string)
		s, err1 := time.Parse(DateLayout, start)
		e, err2 := time.Parse(DateLayout, end)
		if err1 != nil || err2 != nil {
			return nil
		}
		if e.After(s.AddDate(MaxSpan, 0, 0)) {
			return errors.New("must be within one year of startDatum")
		}
		return nil
	}
}

type StatusInput struct {
	Status string `json:"status"`
}

func (in StatusInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Status,
			validation.Required,
			validation.In(
				string(model.StatusEingereicht),
				string(model.StatusBestaetigt),
				string(model.StatusAbgelehnt),
				string(model.StatusStorniert),
			),
		),
	)
}

type MitarbeiterInput struct {
	Personalnummer string `json:"personalnummer"`
	Vorname        string `json:"vorname"`
	Nachname       string `json:"nachname"`
	Email          string `json:"email"`
	Telefon        string `json:"telefon"`
	Abteilung      string `json:"abteilung"`
	Aktiv          *bool  `json:"aktiv"`
}

func (in MitarbeiterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Personalnummer, validation.Required, validation.Length(1, 32)),
		validation.Field(&in.Vorname, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Nachname, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Email, validation.Length(0, 200), is.Email),
		validation.Field(&in.Telefon, validation.By(validPhone)),
		validation.Field(&in.Abteilung, validation.Length(0, 100)),
	)
}

func validPhone(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := NormalizePhone(s); err != nil {
		return errors.New("must be a valid phone number")
	}
	return nil
}

// NormalizePhone returns the number in E.164 form.
func NormalizePhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, DefaultRegion)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("invalid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
