package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"krankmeldung/internal/health"
	"krankmeldung/internal/model"
	"krankmeldung/internal/rpc"
	"krankmeldung/internal/service"
)

func (h *Handler) ListKrankmeldungen(ctx context.Context, req *rpc.ListKrankmeldungenRequest) (*rpc.ListKrankmeldungenResponse, error) {
	f := model.KrankmeldungFilter{MitarbeiterID: req.MitarbeiterID, Status: model.Status(req.Status)}
	if f.MitarbeiterID != "" {
		if _, err := uuid.Parse(f.MitarbeiterID); err != nil {
			return nil, status.Error(codes.InvalidArgument, "mitarbeiterId must be a UUID")
		}
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, status.Error(codes.InvalidArgument, "unknown status")
	}
	var err error
	if f.Von, err = optionalDate(req.Von); err != nil {
		return nil, status.Error(codes.InvalidArgument, "von must be YYYY-MM-DD")
	}
	if f.Bis, err = optionalDate(req.Bis); err != nil {
		return nil, status.Error(codes.InvalidArgument, "bis must be YYYY-MM-DD")
	}

	list, err := h.svc.ListKrankmeldungen(ctx, f)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ListKrankmeldungenResponse{Krankmeldungen: service.Views(list)}, nil
}

func (h *Handler) GetKrankmeldung(ctx context.Context, req *rpc.GetKrankmeldungRequest) (*rpc.KrankmeldungResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	k, err := h.svc.GetKrankmeldung(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.KrankmeldungResponse{Krankmeldung: service.ViewOf(*k)}, nil
}

func (h *Handler) CreateKrankmeldung(ctx context.Context, req *rpc.CreateKrankmeldungRequest) (*rpc.KrankmeldungResponse, error) {
	k, err := h.svc.CreateKrankmeldung(ctx, req.KrankmeldungInput)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.KrankmeldungResponse{Krankmeldung: service.ViewOf(*k)}, nil
}

func (h *Handler) UpdateStatus(ctx context.Context, req *rpc.UpdateStatusRequest) (*rpc.KrankmeldungResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	k, err := h.svc.ChangeStatus(ctx, req.ID, service.StatusInput{Status: req.Status})
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.KrankmeldungResponse{Krankmeldung: service.ViewOf(*k)}, nil
}

func (h *Handler) ListAenderungen(ctx context.Context, req *rpc.ListAenderungenRequest) (*rpc.ListAenderungenResponse, error) {
	if req.KrankmeldungID == "" {
		return nil, status.Error(codes.InvalidArgument, "krankmeldungId required")
	}
	log, err := h.svc.History(ctx, req.KrankmeldungID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ListAenderungenResponse{Aenderungen: log}, nil
}

// DatabaseStats is the gRPC twin of GET /api/test-db.
func (h *Handler) DatabaseStats(ctx context.Context, _ *rpc.DatabaseStatsRequest) (*structpb.Struct, error) {
	s, err := health.Check(ctx, h.db)
	if err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	out, err := structpb.NewStruct(map[string]any{
		"userCount":         s.UserCount,
		"mitarbeiterCount":  s.MitarbeiterCount,
		"krankmeldungCount": s.KrankmeldungCount,
		"connectionTimeMs":  s.ConnectionTimeMs,
		"timestamp":         time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(service.DateLayout, s)
}
