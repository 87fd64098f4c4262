package handler

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"krankmeldung/internal/rpc"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// WatchDB flips the serving status of the whole server and of the
// krankmeldung service whenever the database ping result changes.
func WatchDB(ctx context.Context, hs *health.Server, db Pinger, every time.Duration) {
	last := healthpb.HealthCheckResponse_UNKNOWN
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, every)
		defer cancel()

		st := healthpb.HealthCheckResponse_SERVING
		if err := db.Ping(pctx); err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
			if last != st {
				log.Printf("health database error=%v", err)
			}
		}
		if st != last {
			hs.SetServingStatus("", st)
			hs.SetServingStatus(rpc.ServiceName, st)
			last = st
		}
	}

	check()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			check()
		}
	}
}
