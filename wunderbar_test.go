package relayr_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayr/go-relayr/internal/testutil"
)

func TestRegisterWunderbar(t *testing.T) {
	t.Parallel()

	// The provisioning response mixes the master module and the sensor
	// devices in one untagged object. Entries carrying a "model" are
	// devices, the rest are transmitters.
	provisioning := `{
		"masterModule": {"id": "t1", "name": "master", "secret": "s1"},
		"thermometer": {"id": "d1", "name": "thermo", "model": "m1"},
		"microphone": {"id": "d2", "name": "mic", "model": {"id": "m2"}}
	}`

	handlers := map[string]http.HandlerFunc{
		"/users/u1/wunderbar": testutil.JSONResponse(t, http.StatusOK, provisioning),
		"/transmitters/t1": testutil.JSONResponse(t, http.StatusOK,
			`{"id": "t1", "name": "master", "secret": "s1"}`),
		"/devices/d1": testutil.JSONResponse(t, http.StatusOK,
			`{"id": "d1", "name": "thermo", "model": "m1"}`),
		"/devices/d2": testutil.JSONResponse(t, http.StatusOK,
			`{"id": "d2", "name": "mic", "model": "m2"}`),
		"/device-models/m1": testutil.JSONResponse(t, http.StatusOK,
			`{"id": "m1", "name": "thermometer model"}`),
		"/device-models/m2": testutil.JSONResponse(t, http.StatusOK,
			`{"id": "m2", "name": "microphone model"}`),
	}
	server, log := testutil.NewRecordingServer(t, handlers)
	defer server.Close()

	client := newTestClient(t, server.URL)

	seq := client.User("u1").RegisterWunderbar(context.Background())

	// Nothing is provisioned until the first Next.
	assert.Equal(t, 0, log.Len())

	items, err := seq.Collect()
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Items come back in the server's key order.
	assert.Equal(t, "masterModule", items[0].Role)
	require.NotNil(t, items[0].Transmitter)
	assert.Nil(t, items[0].Device)
	assert.Equal(t, "t1", items[0].Transmitter.ID)

	assert.Equal(t, "thermometer", items[1].Role)
	require.NotNil(t, items[1].Device)
	assert.Nil(t, items[1].Transmitter)
	assert.Equal(t, "d1", items[1].Device.ID)
	require.NotNil(t, items[1].Device.Model)
	assert.Equal(t, "thermometer model", items[1].Device.Model.Name)

	// The "model" relation may also arrive as a full object.
	assert.Equal(t, "microphone", items[2].Role)
	require.NotNil(t, items[2].Device)
	assert.Equal(t, "microphone model", items[2].Device.Model.Name)

	// Exactly one provisioning request was issued.
	requests := log.Requests()
	assert.Equal(t, "POST /users/u1/wunderbar", requests[0])
	provisionCalls := 0
	for _, r := range requests {
		if r == "POST /users/u1/wunderbar" {
			provisionCalls++
		}
	}
	assert.Equal(t, 1, provisionCalls)
}

func TestRegisterWunderbarLazyProvisioning(t *testing.T) {
	t.Parallel()

	handlers := map[string]http.HandlerFunc{
		"/users/u1/wunderbar": testutil.JSONResponse(t, http.StatusOK,
			`{"masterModule": {"id": "t1"}}`),
		"/transmitters/t1": testutil.JSONResponse(t, http.StatusOK, `{"id": "t1", "name": "master"}`),
	}
	server, log := testutil.NewRecordingServer(t, handlers)
	defer server.Close()

	client := newTestClient(t, server.URL)

	seq := client.User("u1").RegisterWunderbar(context.Background())
	assert.Equal(t, 0, log.Len(), "constructing the sequence must not provision")

	item, ok, err := seq.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "masterModule", item.Role)
	require.NotNil(t, item.Transmitter)
	assert.Equal(t, "master", item.Transmitter.Name)

	_, ok, err = seq.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterWunderbarEntryWithoutID(t *testing.T) {
	t.Parallel()

	handlers := map[string]http.HandlerFunc{
		"/users/u1/wunderbar": testutil.JSONResponse(t, http.StatusOK,
			`{"masterModule": {"name": "missing id"}}`),
	}
	server := testutil.NewMockServerMulti(t, handlers)
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, _, err := client.User("u1").RegisterWunderbar(context.Background()).Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}
