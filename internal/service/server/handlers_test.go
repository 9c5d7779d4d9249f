package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chain_chat/internal/ledger"
	"chain_chat/internal/model"
	"chain_chat/internal/repository/eventlog"
	messageRepo "chain_chat/internal/repository/message"
	registryRepo "chain_chat/internal/repository/registry"
	apperrors "chain_chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	l, err := ledger.New(context.Background(), ledger.Config{
		Owner:               model.Account{0xff},
		PermanentMessageFee: 100,
	}, registryRepo.NewMemoryStore(), messageRepo.NewMemoryStore(), eventlog.NewMemoryLog())
	require.NoError(t, err)

	srv := httptest.NewServer(NewHttpServer(l).Router())
	t.Cleanup(srv.Close)
	return srv
}

func getAppError(t *testing.T, url string) (int, apperrors.AppError) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var appErr apperrors.AppError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&appErr))
	return resp.StatusCode, appErr
}

func TestEventQueries_RejectMalformedPagination(t *testing.T) {
	srv := newTestServer(t)
	conversation := model.Hash{0x01}

	for name, query := range map[string]string{
		"non-numeric from": "from=abc",
		"fractional limit": "limit=1.5",
		"garbage sign":     "from=--2",
	} {
		t.Run(name, func(t *testing.T) {
			status, appErr := getAppError(t, srv.URL+"/conversations/"+conversation.Hex()+"/events?"+query)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, apperrors.CodeInvalidArgument, appErr.Code)

			status, appErr = getAppError(t, srv.URL+"/events/stored?"+query)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, apperrors.CodeInvalidArgument, appErr.Code)
		})
	}

	// Well-formed pagination still answers, empty log included.
	resp, err := http.Get(srv.URL + "/conversations/" + conversation.Hex() + "/events?from=0&limit=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var events []model.MessageEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&events))
	assert.Empty(t, events)
}
