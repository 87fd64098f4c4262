// Package handler implements the krankmeldung.v1 gRPC service on top of the
// business service.
package handler

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"krankmeldung/internal/auth"
	"krankmeldung/internal/health"
	"krankmeldung/internal/model"
	"krankmeldung/internal/rpc"
	"krankmeldung/internal/service"
)

type Service interface {
	ListKrankmeldungen(ctx context.Context, f model.KrankmeldungFilter) ([]model.Krankmeldung, error)
	GetKrankmeldung(ctx context.Context, id string) (*model.Krankmeldung, error)
	CreateKrankmeldung(ctx context.Context, in service.KrankmeldungInput) (*model.Krankmeldung, error)
	ChangeStatus(ctx context.Context, id string, in service.StatusInput) (*model.Krankmeldung, error)
	History(ctx context.Context, id string) ([]model.AenderungsLog, error)
}

type Handler struct {
	rpc.UnimplementedKrankmeldungServiceServer
	auth *auth.Authenticator
	svc  Service
	db   health.DB
}

func New(a *auth.Authenticator, svc Service, db health.DB) *Handler {
	return &Handler{auth: a, svc: svc, db: db}
}

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	if verr, ok := service.ValidationErrors(err); ok {
		return status.Error(codes.InvalidArgument, verr.Error())
	}
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "not signed in")
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNoMitarbeiter):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrDuplicate):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	log.Printf("grpc error=%v", err)
	return status.Error(codes.Internal, "internal error")
}
