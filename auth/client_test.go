package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/techcorp/partsquote/auth"
	errs "github.com/techcorp/partsquote/internal/errors"
)

func TestLogin(t *testing.T) {
	t.Run("exchanges credentials for a token pair", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, auth.LoginPath, r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "jane.doe@techcorp.com", body["email"])
			require.Equal(t, "secret", body["password"])
			require.Equal(t, "techcorp", body["tenantId"])

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"accessToken":"access-1","refreshToken":"refresh-1"}`))
		}))
		defer server.Close()

		pair, err := auth.NewClient(server.URL).Login(context.Background(), "jane.doe@techcorp.com", "secret", "techcorp")
		require.NoError(t, err)
		require.Equal(t, "access-1", pair.AccessToken)
		require.Equal(t, "refresh-1", pair.RefreshToken)
	})

	t.Run("any non-200 means invalid credentials", func(t *testing.T) {
		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			}))

			_, err := auth.NewClient(server.URL).Login(context.Background(), "jane.doe@techcorp.com", "wrong", "techcorp")
			require.ErrorIs(t, err, errs.ErrInvalidCredentials)
			server.Close()
		}
	})

	t.Run("unreachable server is a transport error", func(t *testing.T) {
		_, err := auth.NewClient("http://127.0.0.1:1").Login(context.Background(), "jane.doe@techcorp.com", "secret", "techcorp")
		require.ErrorIs(t, err, errs.ErrTransport)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("exchanges the refresh token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, auth.RefreshPath, r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "refresh-1", body["refreshToken"])
			require.Equal(t, "techcorp", body["tenantId"])

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"accessToken":"access-2","refreshToken":"refresh-2"}`))
		}))
		defer server.Close()

		pair, err := auth.NewClient(server.URL).Refresh(context.Background(), "refresh-1", "techcorp")
		require.NoError(t, err)
		require.Equal(t, "access-2", pair.AccessToken)
		require.Equal(t, "refresh-2", pair.RefreshToken)
	})

	t.Run("any non-200 means the session expired", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := auth.NewClient(server.URL).Refresh(context.Background(), "stale", "techcorp")
		require.ErrorIs(t, err, errs.ErrSessionExpired)
	})
}
