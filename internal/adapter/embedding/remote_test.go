package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func TestRemoteProviderSuccess(t *testing.T) {
	want := []float32{0.5, 0.5, 0.5, 0.5}
	var gotAuth, gotText string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotText = body.Text
		json.NewEncoder(w).Encode(map[string]interface{}{"embedding": want})
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, "secret-token", 4)
	vec := p.Embed(context.Background(), "smart parking system")

	assert.Equal(t, want, vec)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "smart parking system", gotText)
}

func TestRemoteProviderSoftFails(t *testing.T) {
	t.Run("missing endpoint", func(t *testing.T) {
		p := NewRemoteProvider("", "", 8)
		vec := p.Embed(context.Background(), "anything")
		require.Len(t, vec, 8)
		assert.True(t, isZero(vec))
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		vec := NewRemoteProvider(srv.URL, "", 8).Embed(context.Background(), "anything")
		require.Len(t, vec, 8)
		assert.True(t, isZero(vec))
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		vec := NewRemoteProvider(srv.URL, "", 8).Embed(context.Background(), "anything")
		assert.True(t, isZero(vec))
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float32{1, 2}})
		}))
		defer srv.Close()

		vec := NewRemoteProvider(srv.URL, "", 8).Embed(context.Background(), "anything")
		require.Len(t, vec, 8)
		assert.True(t, isZero(vec))
	})

	t.Run("unreachable server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // dead endpoint

		vec := NewRemoteProvider(srv.URL, "", 8).Embed(context.Background(), "anything")
		assert.True(t, isZero(vec))
	})
}
