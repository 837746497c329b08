package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/vitals"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPongTimeout  = 60 * time.Second
	streamPingInterval = 30 * time.Second
)

// Stream message types
const (
	StreamWindow = "window"
	StreamSample = "sample"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// MonitoringResponse is the monitoring view of one patient
type MonitoringResponse struct {
	Assessment vitals.Assessment `json:"assessment"`
	Samples    []vitals.Sample   `json:"samples"`
}

// StreamMessage is one websocket frame of the vitals stream
type StreamMessage struct {
	Type    string          `json:"type"`
	Samples []vitals.Sample `json:"samples,omitempty"`
	Sample  *vitals.Sample  `json:"sample,omitempty"`
}

// MonitoringHandler returns the vitals cards and the current rolling window
func (s *Server) MonitoringHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.patients.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MonitoringResponse{
		Assessment: vitals.Assess(p),
		Samples:    s.hub.Snapshot(p.ID, p.Status),
	})
}

// VitalsStreamHandler upgrades to a websocket, sends the current window and
// then one message per generated sample until the client goes away
func (s *Server) VitalsStreamHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.patients.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("patient_id", p.ID).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub, window, err := s.hub.Subscribe(p.ID, p.Status)
	if err != nil {
		log.Warn().Err(err).Str("patient_id", p.ID).Msg("Vitals subscription refused")
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
		return
	}
	defer sub.Close()

	log.Info().Str("patient_id", p.ID).Str("remote_addr", r.RemoteAddr).Msg("Vitals stream opened")

	// The read pump only handles control frames and notices disconnects
	gone := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeFrame(conn, StreamMessage{Type: StreamWindow, Samples: window}); err != nil {
		return
	}

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			log.Info().
				Str("patient_id", p.ID).
				Int64("dropped", sub.Dropped()).
				Msg("Vitals stream closed by client")
			return
		case sample, ok := <-sub.Samples():
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed stopped"))
				return
			}
			if err := writeFrame(conn, StreamMessage{Type: StreamSample, Sample: &sample}); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, msg StreamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Debug().Err(err).Msg("Vitals stream write failed")
		return err
	}
	return nil
}
