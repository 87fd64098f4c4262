package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestKrankmeldungTage(t *testing.T) {
	// 2026-10-16 is a Friday
	k := Krankmeldung{StartDatum: date("2026-10-16"), EndDatum: date("2026-10-20")}
	assert.Equal(t, 5, k.Tage())
	assert.Equal(t, 3, k.Arbeitstage())

	single := Krankmeldung{StartDatum: date("2026-10-17"), EndDatum: date("2026-10-17")}
	assert.Equal(t, 1, single.Tage())
	assert.Equal(t, 0, single.Arbeitstage())
}

func TestKrankmeldungOverlaps(t *testing.T) {
	k := Krankmeldung{StartDatum: date("2026-03-02"), EndDatum: date("2026-03-06")}

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"same range", "2026-03-02", "2026-03-06", true},
		{"touching start", "2026-02-25", "2026-03-02", true},
		{"touching end", "2026-03-06", "2026-03-09", true},
		{"inside", "2026-03-03", "2026-03-04", true},
		{"before", "2026-02-20", "2026-03-01", false},
		{"after", "2026-03-07", "2026-03-10", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, k.Overlaps(date(tt.start), date(tt.end)))
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusEingereicht.CanTransition(StatusBestaetigt))
	assert.True(t, StatusEingereicht.CanTransition(StatusAbgelehnt))
	assert.True(t, StatusEingereicht.CanTransition(StatusStorniert))
	assert.True(t, StatusBestaetigt.CanTransition(StatusStorniert))

	assert.False(t, StatusBestaetigt.CanTransition(StatusAbgelehnt))
	assert.False(t, StatusAbgelehnt.CanTransition(StatusEingereicht))
	assert.False(t, StatusStorniert.CanTransition(StatusBestaetigt))
	assert.False(t, StatusEingereicht.CanTransition(StatusEingereicht))

	assert.False(t, Status("offen").Valid())
}
