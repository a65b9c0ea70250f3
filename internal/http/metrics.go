package httpapi

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"coastal-guardian-backend-go/internal/services"
)

var metricsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) MetricsHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 60)
	if limit > 1440 {
		limit = 1440
	}
	rows, err := services.MetricsHistory(s.DB, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, rows)
}

// MetricsSocket upgrades to a websocket and streams live samples until the
// client goes away. Reads are drained only to detect disconnects.
func (s *Server) MetricsSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := metricsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("metrics socket upgrade: %v", err)
		return
	}
	s.MetricsHub.Add(conn)
	defer func() {
		s.MetricsHub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
