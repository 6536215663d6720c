package sender

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "919876543210", DigitsOnly("+91 98765-43210"))
	assert.Equal(t, "", DigitsOnly("n/a"))
}

func TestWhatsAppCloudSendMessage(t *testing.T) {
	var got cloudMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	s := NewWhatsAppCloudSender(WhatsAppCloudConfig{APIURL: srv.URL, Token: "tok", PhoneNumberID: "12345"})
	res, err := s.SendMessage(context.Background(), "+91 98765 43210", "hello")
	require.NoError(t, err)

	assert.Equal(t, "wamid.1", res.MessageID)
	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "individual", got.RecipientType)
	assert.Equal(t, "919876543210", got.To)
	assert.True(t, got.Text.PreviewURL)
	assert.Equal(t, "hello", got.Text.Body)
}

func TestWhatsAppCloudErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad number"}}`))
	}))
	defer srv.Close()

	_, err := NewWhatsAppCloudSender(WhatsAppCloudConfig{APIURL: srv.URL}).SendMessage(context.Background(), "1", "x")
	assert.ErrorIs(t, err, ErrNotConfigured)

	s := NewWhatsAppCloudSender(WhatsAppCloudConfig{APIURL: srv.URL, Token: "tok", PhoneNumberID: "1"})
	_, err = s.SendMessage(context.Background(), "+91 1", "x")
	assert.ErrorContains(t, err, "whatsapp error 400")
}

func TestTwilioSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Accounts/AC1/Messages.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC1", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "whatsapp:+919876543210", r.PostForm.Get("To"))
		assert.Equal(t, "whatsapp:+14155238886", r.PostForm.Get("From"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	s := NewTwilioWhatsAppSender(TwilioConfig{AccountSID: "AC1", AuthToken: "secret", FromNumber: "+1 415 523 8886", APIURL: srv.URL})
	res, err := s.SendMessage(context.Background(), "+91 98765 43210", "hi")
	require.NoError(t, err)
	assert.Equal(t, "SM1", res.MessageID)
}
