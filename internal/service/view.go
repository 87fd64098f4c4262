package service

import "krankmeldung/internal/model"

// KrankmeldungView is the wire shape: dates as YYYY-MM-DD plus the derived
// day counts.
type KrankmeldungView struct {
	model.Krankmeldung
	StartDatum  string `json:"startDatum"`
	EndDatum    string `json:"endDatum"`
	Tage        int    `json:"tage"`
	Arbeitstage int    `json:"arbeitstage"`
}

func ViewOf(k model.Krankmeldung) KrankmeldungView {
	return KrankmeldungView{
		Krankmeldung: k,
		StartDatum:   k.StartDatum.Format(DateLayout),
		EndDatum:     k.EndDatum.Format(DateLayout),
		Tage:         k.Tage(),
		Arbeitstage:  k.Arbeitstage(),
	}
}

func Views(ks []model.Krankmeldung) []KrankmeldungView {
	out := make([]KrankmeldungView, 0, len(ks))
	for _, k := range ks {
		out = append(out, ViewOf(k))
	}
	return out
}
