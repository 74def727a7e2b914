package wordpress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_Authenticate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/jwt-auth/v1/token", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "anna@example.com", body["username"])
		assert.Equal(t, "s3cret", body["password"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"token": "wp.jwt.value",
			"user": {"id": 17, "email": "anna@example.com", "name": "Anna", "display_name": "Anna K"}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	identity, err := client.Authenticate(context.Background(), "anna@example.com", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "17", identity.ID)
	assert.Equal(t, "anna@example.com", identity.Email)
	assert.Equal(t, "Anna", identity.Name)
	assert.Equal(t, "Anna K", identity.DisplayName)
}

func TestClient_Authenticate_StringUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token": "t", "user": {"id": "42", "email": "bob@example.com", "nicename": "bob"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	identity, err := client.Authenticate(context.Background(), "bob", "pw")
	require.NoError(t, err)

	assert.Equal(t, "42", identity.ID)
	assert.Equal(t, "bob", identity.Name, "falls back to nicename")
	assert.Equal(t, "bob", identity.DisplayName)
}

func TestClient_Authenticate_Non2xxIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code": "[jwt_auth] incorrect_password", "message": "wrong password"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := client.Authenticate(context.Background(), "anna@example.com", "wrong")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestClient_Authenticate_ErrorBodyWith200IsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "jwt_auth_failed"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := client.Authenticate(context.Background(), "anna@example.com", "wrong")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestClient_Authenticate_MissingUserIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token": "t"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := client.Authenticate(context.Background(), "anna@example.com", "pw")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestClient_Authenticate_TransportFailureIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := client.Authenticate(context.Background(), "anna@example.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
}

func TestClient_Authenticate_EmailFallsBackToIdentifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token": "t", "user": {"id": 9, "display_name": "Nine"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	identity, err := client.Authenticate(context.Background(), "nine@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "nine@example.com", identity.Email)
}
