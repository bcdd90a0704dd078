package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/models/dtos"
)

// HealthCheckHandler handles GET /healthCheck. rdb may be nil when the
// process runs without Redis.
func HealthCheckHandler(db *sqlx.DB, rdb *redis.Client, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := map[string]string{}
		services["database"] = "ok"
		if err := db.PingContext(ctx); err != nil {
			services["database"] = "down"
		}
		if rdb != nil {
			services["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				services["redis"] = "down"
			}
		}

		status := dtos.HealthStatus{
			Status:   "ok",
			Uptime:   time.Since(upSince).Round(time.Second).String(),
			Services: services,
		}
		for _, s := range services {
			if s != "ok" {
				status.Status = "down"
				break
			}
		}

		if status.Status != "ok" {
			common.RespondSuccess(w, initTime, "Degraded", status, http.StatusServiceUnavailable)
			return
		}
		common.RespondSuccess(w, initTime, "Healthy", status)
	}
}
