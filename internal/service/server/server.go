package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"chain_chat/internal/ledger"
	"chain_chat/internal/utils/log"
	apperrors "chain_chat/pkg/errors"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type (
	// HttpServer exposes the ledger's read/write interface: mutating calls
	// as signed transactions, point reads, event queries and a websocket
	// event subscription.
	HttpServer struct {
		ledger *ledger.Ledger
	}
)

func NewHttpServer(l *ledger.Ledger) *HttpServer {
	return &HttpServer{
		ledger: l,
	}
}

func (s *HttpServer) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/register", s.HandleRegister()).Methods(http.MethodPost)
	r.HandleFunc("/messages", s.HandleSendMessage()).Methods(http.MethodPost)
	r.HandleFunc("/messages/{id}", s.HandleGetMessage()).Methods(http.MethodGet)
	r.HandleFunc("/registry/{account}", s.HandleGetPublicKey()).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{account}/permanent", s.HandlePermanentIndex()).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/events", s.HandleConversationEvents()).Methods(http.MethodGet)
	r.HandleFunc("/events/stored", s.HandleStoredEvents()).Methods(http.MethodGet)
	r.HandleFunc("/subscribe", s.HandleSubscribe()).Methods(http.MethodGet)
	r.HandleFunc("/admin/fee", s.HandleSetFee()).Methods(http.MethodPost)
	r.HandleFunc("/admin/withdraw", s.HandleWithdraw()).Methods(http.MethodPost)

	return r
}

func (s *HttpServer) Run(addr string) error {
	log.Info("node listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Router())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("write response failed", zap.Error(err))
	}
}

// writeError maps application codes to HTTP statuses and always carries the
// code in the body so clients can surface the specific validation reason.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, &apperrors.AppError{
			Code:    apperrors.CodeInternal,
			Message: "internal error",
		})
		return
	}

	var status int
	switch appErr.Code {
	case apperrors.CodeSenderNotRegistered,
		apperrors.CodeRecipientNotRegistered,
		apperrors.CodeInvalidArgument,
		apperrors.CodeInvalidPayload:
		status = http.StatusBadRequest
	case apperrors.CodeInsufficientFee:
		status = http.StatusPaymentRequired
	case apperrors.CodeUnauthorized, apperrors.CodeUnauthorizedAccess:
		status = http.StatusForbidden
	case apperrors.CodeMessageNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, appErr)
}
