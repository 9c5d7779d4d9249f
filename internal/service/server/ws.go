package server

import (
	"net/http"

	"chain_chat/internal/model"
	"chain_chat/internal/utils/log"
	apperrors "chain_chat/pkg/errors"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// HandleSubscribe upgrades to a websocket and pushes every new event for one
// conversation as it is accepted by the ledger. Clients replay history via
// the events endpoint and use this for the live tail.
func (s *HttpServer) HandleSubscribe() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conversation, err := model.ParseHash(r.URL.Query().Get("conversation"))
		if err != nil {
			writeError(w, apperrors.InvalidArg("invalid conversation id"))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "Failed to upgrade", http.StatusInternalServerError)
			return
		}

		events, cancel := s.ledger.Subscribe(conversation)
		go s.pushEvents(conn, events, cancel)
	}
}

func (s *HttpServer) pushEvents(conn *websocket.Conn, events <-chan model.MessageEvent, cancel func()) {
	defer cancel()
	defer conn.Close()

	// Reader goroutine only notices the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				log.Debug("subscriber web socket closed", zap.Error(err))
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(&ev); err != nil {
				log.Debug("push event failed", zap.Error(err))
				return
			}
		case <-closed:
			return
		}
	}
}
