package server

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"chain_chat/internal/model"
	"chain_chat/internal/wallet"
	apperrors "chain_chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type (
	registerRequest struct {
		Account   model.Account   `json:"account"`
		PublicKey model.PublicKey `json:"public_key"`
		WalletPub string          `json:"wallet_pub"`
		Signature string          `json:"signature"`
	}

	sendRequest struct {
		Sender           model.Account `json:"sender"`
		Recipient        model.Account `json:"recipient"`
		EncryptedContent string        `json:"encrypted_content"`
		MakePermanent    bool          `json:"make_permanent"`
		FeePaid          uint64        `json:"fee_paid"`
		WalletPub        string        `json:"wallet_pub"`
		Signature        string        `json:"signature"`
	}

	adminRequest struct {
		Caller    model.Account `json:"caller"`
		Fee       uint64        `json:"fee,omitempty"`
		WalletPub string        `json:"wallet_pub"`
		Signature string        `json:"signature"`
	}

	txResponse struct {
		TxID string `json:"tx_id"`
	}

	sendResponse struct {
		TxID           string     `json:"tx_id"`
		MessageID      model.Hash `json:"message_id"`
		ConversationID model.Hash `json:"conversation_id"`
		Timestamp      int64      `json:"timestamp"`
		Seq            uint64     `json:"seq"`
	}

	publicKeyResponse struct {
		Account    model.Account   `json:"account"`
		PublicKey  model.PublicKey `json:"public_key"`
		Registered bool            `json:"registered"`
	}

	withdrawResponse struct {
		TxID   string `json:"tx_id"`
		Amount uint64 `json:"amount"`
	}
)

// verifyCaller authenticates a call the way a chain authenticates a
// transaction sender: the wallet public key must hash to the claimed account
// and the signature must verify over the operation digest.
func verifyCaller(account model.Account, walletPubHex, sigHex string, digest []byte) error {
	pub, err := hex.DecodeString(walletPubHex)
	if err != nil {
		return apperrors.InvalidArg("invalid wallet public key")
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return apperrors.InvalidArg("invalid signature encoding")
	}
	if wallet.AccountFromWalletPub(pub) != account {
		return apperrors.New(apperrors.CodeUnauthorized, "wallet key does not match account")
	}
	if !wallet.Verify(pub, digest, sig) {
		return apperrors.New(apperrors.CodeUnauthorized, "signature verification failed")
	}
	return nil
}

func (s *HttpServer) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperrors.InvalidArg("invalid request body"))
			return
		}

		digest := wallet.RegisterDigest(req.Account, req.PublicKey)
		if err := verifyCaller(req.Account, req.WalletPub, req.Signature, digest); err != nil {
			writeError(w, err)
			return
		}

		if err := s.ledger.RegisterPublicKey(r.Context(), req.Account, req.PublicKey); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, &txResponse{TxID: uuid.NewString()})
	}
}

func (s *HttpServer) HandleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperrors.InvalidArg("invalid request body"))
			return
		}

		digest := wallet.SendDigest(req.Sender, req.Recipient, req.EncryptedContent, req.MakePermanent, req.FeePaid)
		if err := verifyCaller(req.Sender, req.WalletPub, req.Signature, digest); err != nil {
			writeError(w, err)
			return
		}

		result, err := s.ledger.SendMessage(r.Context(), req.Sender, req.Recipient,
			req.EncryptedContent, req.MakePermanent, req.FeePaid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, &sendResponse{
			TxID:           uuid.NewString(),
			MessageID:      result.MessageID,
			ConversationID: result.ConversationID,
			Timestamp:      result.Timestamp,
			Seq:            result.Seq,
		})
	}
}

func (s *HttpServer) HandleGetMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := model.ParseHash(mux.Vars(r)["id"])
		if err != nil {
			writeError(w, apperrors.InvalidArg("invalid message id"))
			return
		}
		caller, err := model.ParseAccount(r.Header.Get("X-Caller"))
		if err != nil {
			writeError(w, apperrors.InvalidArg("invalid caller account"))
			return
		}

		digest := wallet.ReadDigest(caller, id)
		if err := verifyCaller(caller, r.Header.Get("X-Caller-Pub"), r.Header.Get("X-Caller-Signature"), digest); err != nil {
			writeError(w, err)
			return
		}

		msg, err := s.ledger.GetMessage(r.Context(), caller, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

func (s *HttpServer) HandleGetPublicKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := model.ParseAccount(mux.Vars(r)["account"])
		if err != nil {
			writeError(w, apperrors.InvalidArg("invalid account"))
			return
		}

		key, err := s.ledger.GetPublicKey(r.Context(), account)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, &publicKeyResponse{
			Account:    account,
			PublicKey:  key,
			Registered: !key.IsZero(),
		})
	}
}

func (s *HttpServer) HandlePermanentIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := model.ParseAccount(mux.Vars(r)["account"])
		if err != nil {
			writeError(w, apperrors.InvalidArg("invalid account"))
			return
		}

		ids, err := s.ledger.GetUserPermanentMessages(r.Context(), account)
		if err != nil {
			writeError(w, err)
			return
		}
		if ids == nil {
			ids = []model.Hash{}
		}
		writeJSON(w, http.StatusOK, ids)
	}
}

func (s *HttpServer) HandleConversationEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversation, err := model.ParseHash(mux.Vars(r)["id"])
		if err != nil {
			writeError(w, apperrors.InvalidArg("invalid conversation id"))
			return
		}
		from, err := queryInt(r, "from", 0)
		if err != nil {
			writeError(w, err)
			return
		}
		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			writeError(w, err)
			return
		}

		events, err := s.ledger.Events(r.Context(), conversation, from, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		if events == nil {
			events = []model.MessageEvent{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func (s *HttpServer) HandleStoredEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := queryInt(r, "from", 0)
		if err != nil {
			writeError(w, err)
			return
		}
		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			writeError(w, err)
			return
		}

		events, err := s.ledger.StoredEvents(r.Context(), from, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		if events == nil {
			events = []model.StoredEvent{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func (s *HttpServer) HandleSetFee() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperrors.InvalidArg("invalid request body"))
			return
		}

		digest := wallet.SetFeeDigest(req.Caller, req.Fee)
		if err := verifyCaller(req.Caller, req.WalletPub, req.Signature, digest); err != nil {
			writeError(w, err)
			return
		}

		if err := s.ledger.SetPermanentMessageFee(r.Context(), req.Caller, req.Fee); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, &txResponse{TxID: uuid.NewString()})
	}
}

func (s *HttpServer) HandleWithdraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperrors.InvalidArg("invalid request body"))
			return
		}

		digest := wallet.WithdrawDigest(req.Caller)
		if err := verifyCaller(req.Caller, req.WalletPub, req.Signature, digest); err != nil {
			writeError(w, err)
			return
		}

		amount, err := s.ledger.WithdrawFees(r.Context(), req.Caller)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, &withdrawResponse{TxID: uuid.NewString(), Amount: amount})
	}
}

func queryInt(r *http.Request, name string, def int64) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, apperrors.InvalidArg("invalid " + name + " parameter")
	}
	return n, nil
}
