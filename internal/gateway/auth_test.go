// ABOUTME: Tests for the typed auth operations
// ABOUTME: Verifies session store updates on login, me, and logout

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loco-dev/loco-client/internal/api"
	"github.com/loco-dev/loco-client/internal/session"
)

func authServer(t *testing.T, handler http.Handler) (*Client, *session.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewStore(nil)
	client, err := New(Options{
		BaseURL: srv.URL,
		Session: store,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return client, store
}

func TestLogin_SetsIdentity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(api.EndpointLogin, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ada@example.com", req.Email)

		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok"})
		json.NewEncoder(w).Encode(api.AuthResponse{
			Message: "login successful",
			User:    &api.User{ID: 7, Username: "ada", Email: req.Email},
		})
	})
	client, store := authServer(t, mux)

	user, err := client.Login(context.Background(), "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)

	snap := store.Read()
	assert.True(t, snap.Authenticated)
	assert.Equal(t, 7, snap.User.ID)
}

func TestLogin_MissingUserIsAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(api.EndpointLogin, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.AuthResponse{Message: "ok"})
	})
	client, store := authServer(t, mux)

	_, err := client.Login(context.Background(), "ada@example.com", "hunter2")
	assert.Error(t, err)
	assert.False(t, store.Read().Authenticated)
}

func TestMe_DecodesBareUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(api.EndpointMe, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.User{ID: 7, Username: "ada", XP: 300, Level: 2})
	})
	client, store := authServer(t, mux)

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 300, user.XP)
	assert.True(t, store.Read().Authenticated)
}

func TestMe_DecodesEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(api.EndpointMe, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.AuthResponse{
			Message: "ok",
			User:    &api.User{ID: 9, Username: "grace"},
		})
	})
	client, store := authServer(t, mux)

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "grace", user.Username)
	assert.Equal(t, 9, store.Read().User.ID)
}

func TestLogout_ClearsSessionEvenOnServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(api.EndpointLogout, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
	})
	client, store := authServer(t, mux)
	store.SetIdentity(api.User{ID: 7, Username: "ada"})

	err := client.Logout(context.Background())
	assert.Error(t, err)
	assert.False(t, store.Read().Authenticated)
}

func TestRegister_SetsIdentity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(api.EndpointRegister, func(w http.ResponseWriter, r *http.Request) {
		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(api.AuthResponse{
			Message: "registered",
			User:    &api.User{ID: 11, Username: req.Username, Email: req.Email},
		})
	})
	client, store := authServer(t, mux)

	user, err := client.Register(context.Background(), "g@example.com", "grace", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "grace", user.Username)
	assert.True(t, store.Read().Authenticated)
}
