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

func TestRelationSeqIsLazy(t *testing.T) {
	t.Parallel()

	handlers := map[string]http.HandlerFunc{
		"/transmitters/t1/devices": testutil.JSONResponse(t, http.StatusOK,
			`[{"id": "d1"}, {"id": "d2"}]`),
		"/devices/d1": testutil.JSONResponse(t, http.StatusOK, `{"id": "d1", "name": "one"}`),
		"/devices/d2": testutil.JSONResponse(t, http.StatusOK, `{"id": "d2", "name": "two"}`),
	}
	server, log := testutil.NewRecordingServer(t, handlers)
	defer server.Close()

	client := newTestClient(t, server.URL)

	seq := client.Transmitter("t1").Devices(context.Background())

	// Construction issues no requests; the listing is fetched on the
	// first Next.
	assert.Equal(t, 0, log.Len())

	first, ok, err := seq.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "one", first.Name)

	// Listing plus one hydration so far.
	assert.Equal(t, []string{
		"GET /transmitters/t1/devices",
		"GET /devices/d1",
	}, log.Requests())

	second, ok, err := seq.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", second.Name)

	_, ok, err = seq.Next()
	require.NoError(t, err)
	assert.False(t, ok)

	// Two children cost exactly three requests.
	assert.Equal(t, 3, log.Len())
}

func TestSeqExhaustionIsTerminal(t *testing.T) {
	t.Parallel()

	handlers := map[string]http.HandlerFunc{
		"/transmitters/t1/devices": testutil.JSONResponse(t, http.StatusOK, `[]`),
	}
	server, log := testutil.NewRecordingServer(t, handlers)
	defer server.Close()

	client := newTestClient(t, server.URL)

	seq := client.Transmitter("t1").Devices(context.Background())

	_, ok, err := seq.Next()
	require.NoError(t, err)
	assert.False(t, ok)

	// Further calls stay exhausted without issuing new requests.
	_, ok, err = seq.Next()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, log.Len())
}

func TestSeqErrorIsTerminal(t *testing.T) {
	t.Parallel()

	handlers := map[string]http.HandlerFunc{
		"/transmitters/t1/devices": testutil.JSONResponse(t, http.StatusInternalServerError,
			`{"message": "boom"}`),
	}
	server, log := testutil.NewRecordingServer(t, handlers)
	defer server.Close()

	client := newTestClient(t, server.URL)

	seq := client.Transmitter("t1").Devices(context.Background())

	_, ok, err := seq.Next()
	require.Error(t, err)
	assert.False(t, ok)

	var apiErr *relayr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "boom", apiErr.Message)

	// After an error the sequence stays terminal and silent.
	_, ok, err = seq.Next()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, log.Len())
}

func TestSeqCollect(t *testing.T) {
	t.Parallel()

	handlers := map[string]http.HandlerFunc{
		"/transmitters/t1/devices": testutil.JSONResponse(t, http.StatusOK,
			`[{"id": "d1"}, {"id": "d2"}]`),
		"/devices/d1": testutil.JSONResponse(t, http.StatusOK, `{"id": "d1", "name": "one"}`),
		"/devices/d2": testutil.JSONResponse(t, http.StatusOK, `{"id": "d2", "name": "two"}`),
	}
	server := testutil.NewMockServerMulti(t, handlers)
	defer server.Close()

	client := newTestClient(t, server.URL)

	devices, err := client.Transmitter("t1").Devices(context.Background()).Collect()
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "one", devices[0].Name)
	assert.Equal(t, "two", devices[1].Name)
}

func TestSeqFreshIterationIssuesFreshRequests(t *testing.T) {
	t.Parallel()

	handlers := map[string]http.HandlerFunc{
		"/transmitters/t1/devices": testutil.JSONResponse(t, http.StatusOK, `[{"id": "d1"}]`),
		"/devices/d1":              testutil.JSONResponse(t, http.StatusOK, `{"id": "d1", "name": "one"}`),
	}
	server, log := testutil.NewRecordingServer(t, handlers)
	defer server.Close()

	client := newTestClient(t, server.URL)
	transmitter := client.Transmitter("t1")

	_, err := transmitter.Devices(context.Background()).Collect()
	require.NoError(t, err)

	// A second pass needs a fresh sequence from the relation method,
	// and re-fetches everything.
	_, err = transmitter.Devices(context.Background()).Collect()
	require.NoError(t, err)

	assert.Equal(t, 4, log.Len())
}
