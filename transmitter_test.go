package relayr_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relayr "github.com/relayr/go-relayr"
	"github.com/relayr/go-relayr/internal/testutil"
)

func TestTransmitterHydrate(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServer(t, "/transmitters/t1", "token",
		`{"id": "t1", "name": "master", "owner": "u1", "secret": "s1"}`, http.StatusOK)
	defer server.Close()

	client := newTestClient(t, server.URL)

	transmitter, err := client.Transmitter("t1").Hydrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "master", transmitter.Name)
	assert.Equal(t, "u1", transmitter.Owner)
	assert.Equal(t, "s1", transmitter.Secret)
}

func TestTransmitterUpdate(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/transmitters/t1", r.URL.Path)

		var body map[string]any
		require.NoError(t, decodeBody(r, &body))
		assert.Equal(t, map[string]any{"name": "renamed"}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "t1", "name": "renamed"}`))
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	name := "renamed"
	transmitter, err := client.Transmitter("t1").Update(context.Background(), relayr.TransmitterUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", transmitter.Name)
}

func TestTransmitterConnectDisconnectDevice(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transmitters/t1/devices/d1", r.URL.Path)
		switch r.Method {
		case http.MethodPost, http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	defer server.Close()

	client := newTestClient(t, server.URL)
	transmitter := client.Transmitter("t1")

	require.NoError(t, transmitter.ConnectDevice(context.Background(), "d1"))
	require.NoError(t, transmitter.DisconnectDevice(context.Background(), "d1"))
}

func TestTransmitterDelete(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/transmitters/t1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Transmitter("t1").Delete(context.Background())
	require.NoError(t, err)
}
