package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var got sendMessageReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("TOKEN", WithBaseURL(srv.URL))
	require.NoError(t, c.SendMessage(context.Background(), 42, "nuevo lead"))

	assert.Equal(t, int64(42), got.ChatID)
	assert.Equal(t, "nuevo lead", got.Text)
}

func TestSendDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendDocument", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "42", r.FormValue("chat_id"))
		assert.Equal(t, "informe", r.FormValue("caption"))

		f, hdr, err := r.FormFile("document")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "report.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.4", string(data))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("TOKEN", WithBaseURL(srv.URL+"/"))
	require.NoError(t, c.SendDocument(context.Background(), 42, []byte("%PDF-1.4"), "report.pdf", "informe"))
}

func TestNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	err := NewClient("TOKEN", WithBaseURL(srv.URL)).SendMessage(context.Background(), 1, "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient("").Configured())
	assert.True(t, NewClient("t").Configured())
}

func TestTransportErrorOmitsToken(t *testing.T) {
	c := NewClient("123456:SECRET-BOT-TOKEN", WithBaseURL("http://127.0.0.1:1"))

	err := c.SendDocument(context.Background(), 42, []byte("%PDF-"), "informe.pdf", "informe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sendDocument")
	assert.NotContains(t, err.Error(), "SECRET-BOT-TOKEN")

	err = c.SendMessage(context.Background(), 42, "hola")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-BOT-TOKEN")
}
