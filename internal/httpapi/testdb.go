package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"krankmeldung/internal/health"
)

// ISO 8601 with milliseconds, as browsers print it
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func timestamp() string { return time.Now().UTC().Format(timestampLayout) }

type testDBResponse struct {
	Status    string        `json:"status"`
	Message   string        `json:"message"`
	Stats     *health.Stats `json:"stats,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp string        `json:"timestamp"`
}

// testDB reports row counts and the round-trip time. Errors are surfaced
// verbatim; this is a diagnostic endpoint.
func (s *Server) testDB(c *gin.Context) {
	stats, err := health.Check(c.Request.Context(), s.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, testDBResponse{
			Status:    "error",
			Message:   "Datenbankverbindung fehlgeschlagen",
			Error:     err.Error(),
			Timestamp: timestamp(),
		})
		return
	}
	c.JSON(http.StatusOK, testDBResponse{
		Status:    "success",
		Message:   "Datenbankverbindung erfolgreich",
		Stats:     &stats,
		Timestamp: timestamp(),
	})
}
