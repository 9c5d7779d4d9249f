package app

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"chain_chat/internal/model"
	apperrors "chain_chat/pkg/errors"
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

	publicKeyInfo struct {
		Account    model.Account   `json:"account"`
		PublicKey  model.PublicKey `json:"public_key"`
		Registered bool            `json:"registered"`
	}
)

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

func (a *App) getPublicKey(ctx context.Context, endpoint string, account model.Account) (*publicKeyInfo, error) {
	var info publicKeyInfo
	err := a.getJSON(ctx, endpoint, fmt.Sprintf("/registry/%s", account.Hex()), nil, nil, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (a *App) getEvents(ctx context.Context, endpoint string, conversation model.Hash, from int64) ([]model.MessageEvent, error) {
	params := url.Values{
		"from": []string{fmt.Sprintf("%d", from)},
	}

	var events []model.MessageEvent
	err := a.getJSON(ctx, endpoint, fmt.Sprintf("/conversations/%s/events", conversation.Hex()), params, nil, &events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (a *App) getPermanentIndex(ctx context.Context, endpoint string, account model.Account) ([]model.Hash, error) {
	var ids []model.Hash
	err := a.getJSON(ctx, endpoint, fmt.Sprintf("/accounts/%s/permanent", account.Hex()), nil, nil, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (a *App) getMessage(ctx context.Context, endpoint string, caller model.Account, id model.Hash, walletPub, sig string) (*model.Message, error) {
	headers := map[string]string{
		"X-Caller":           caller.Hex(),
		"X-Caller-Pub":       walletPub,
		"X-Caller-Signature": sig,
	}

	var msg model.Message
	err := a.getJSON(ctx, endpoint, fmt.Sprintf("/messages/%s", id.Hex()), nil, headers, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *App) getJSON(ctx context.Context, endpoint, path string, params url.Values, headers map[string]string, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	u.Path = path
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return a.do(req, out)
}

func (a *App) postJSON(ctx context.Context, endpoint, path string, body, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	u.Path = path

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return a.do(req, out)
}

func (a *App) do(req *http.Request, out any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()
	defer io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		// Validation failures carry the application code; surface it so
		// the caller sees the specific reason, not a bare status.
		var appErr apperrors.AppError
		if err := json.NewDecoder(resp.Body).Decode(&appErr); err == nil && appErr.Code != "" {
			return &appErr
		}
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
