package assist

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/complyward/kyc-review-platform/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerWithClient(client *fakeClient) *Handler {
	return NewHandler(newTestService(client), logging.New("error"))
}

func TestHandlerChat(t *testing.T) {
	h := newHandlerWithClient(&fakeClient{reply: "All topics look covered."})

	body := `{"messages":[{"role":"user","content":"Is coverage complete?"}]}`
	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/assist/chat", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"All topics look covered."}`, rec.Body.String())
}

func TestHandlerChatInvalidBody(t *testing.T) {
	h := newHandlerWithClient(&fakeClient{})
	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/assist/chat", bytes.NewBufferString("{bad")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerChatProviderDown(t *testing.T) {
	h := newHandlerWithClient(&fakeClient{err: errors.New("timeout")})
	body := `{"messages":[{"role":"user","content":"hello"}]}`
	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/assist/chat", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Assistant is unavailable")
}

func TestHandlerRewrite(t *testing.T) {
	h := newHandlerWithClient(&fakeClient{reply: "Polished text."})
	body := `{"section":"messy text","instructions":"tighten it"}`
	rec := httptest.NewRecorder()
	h.Rewrite(rec, httptest.NewRequest(http.MethodPost, "/assist/rewrite", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rewritten":"Polished text."}`, rec.Body.String())
}

func TestHandlerRewriteMissingSection(t *testing.T) {
	h := newHandlerWithClient(&fakeClient{})
	rec := httptest.NewRecorder()
	h.Rewrite(rec, httptest.NewRequest(http.MethodPost, "/assist/rewrite", bytes.NewBufferString(`{"section":""}`)))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
