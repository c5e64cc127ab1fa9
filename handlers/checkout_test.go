package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharevault/sharevault-backend/checkout"
)

type fakeSessionCreator struct {
	calls  int
	url    string
	err    error
	planID string
	amount int64
}

func (f *fakeSessionCreator) CreateSession(ctx context.Context, planID string, amountCents int64, email string) (string, error) {
	f.calls++
	f.planID = planID
	f.amount = amountCents
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newCheckoutRouter(creator *fakeSessionCreator) *gin.Engine {
	router := gin.New()
	h := NewCheckoutHandler(creator)
	router.POST("/create-checkout", h.Create)
	router.OPTIONS("/create-checkout", h.Preflight)
	return router
}

func postCheckout(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/create-checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCheckoutSuccess(t *testing.T) {
	creator := &fakeSessionCreator{url: "https://pay.example.com/s/1"}
	router := newCheckoutRouter(creator)

	w := postCheckout(router, `{"plan_id":"pro","amount":900,"email":"a@b.com"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://pay.example.com/s/1", resp["url"])
	assert.Equal(t, "pro", creator.planID)
	assert.Equal(t, int64(900), creator.amount)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCheckoutMissingFields(t *testing.T) {
	creator := &fakeSessionCreator{url: "https://pay.example.com/s/1"}
	router := newCheckoutRouter(creator)

	for _, body := range []string{
		`{"plan_id":"","amount":900}`,
		`{"plan_id":"pro"}`,
		`{}`,
	} {
		w := postCheckout(router, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["error"])
	}

	assert.Zero(t, creator.calls, "invalid requests must never reach the processor")
}

func TestCheckoutProcessorFailure(t *testing.T) {
	creator := &fakeSessionCreator{err: checkout.ErrCheckoutFailed}
	router := newCheckoutRouter(creator)

	w := postCheckout(router, `{"plan_id":"pro","amount":900}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestCheckoutPreflight(t *testing.T) {
	router := newCheckoutRouter(&fakeSessionCreator{})

	req := httptest.NewRequest(http.MethodOptions, "/create-checkout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Body.Bytes())
}
