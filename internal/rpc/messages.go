package rpc

import (
	"krankmeldung/internal/auth"
	"krankmeldung/internal/model"
	"krankmeldung/internal/service"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt string           `json:"expiresAt"`
	User      auth.SessionUser `json:"user"`
}

type ListKrankmeldungenRequest struct {
	MitarbeiterID string `json:"mitarbeiterId,omitempty"`
	Status        string `json:"status,omitempty"`
	Von           string `json:"von,omitempty"`
	Bis           string `json:"bis,omitempty"`
}

type ListKrankmeldungenResponse struct {
	Krankmeldungen []service.KrankmeldungView `json:"krankmeldungen"`
}

type GetKrankmeldungRequest struct {
	ID string `json:"id"`
}

type CreateKrankmeldungRequest struct {
	service.KrankmeldungInput
}

type UpdateStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type KrankmeldungResponse struct {
	Krankmeldung service.KrankmeldungView `json:"krankmeldung"`
}

type ListAenderungenRequest struct {
	KrankmeldungID string `json:"krankmeldungId"`
}

type ListAenderungenResponse struct {
	Aenderungen []model.AenderungsLog `json:"aenderungen"`
}

type DatabaseStatsRequest struct{}
