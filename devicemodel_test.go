package relayr_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayr/go-relayr/internal/testutil"
)

func TestDeviceModelHydrate(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServer(t, "/device-models/m1", "token",
		`{"id": "m1", "name": "thermometer", "manufacturer": "relayr",
		  "readings": [{"meaning": "temperature", "unit": "celsius"},
		               {"meaning": "humidity", "unit": "percent"}],
		  "firmware": {"1.0": {}}}`, http.StatusOK)
	defer server.Close()

	client := newTestClient(t, server.URL)

	model, err := client.DeviceModel("m1").Hydrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "thermometer", model.Name)
	assert.Equal(t, "relayr", model.Manufacturer)
	require.Len(t, model.Readings, 2)
	assert.Equal(t, "humidity", model.Readings[1].Meaning)
	assert.Equal(t, "percent", model.Readings[1].Unit)

	require.Contains(t, model.Extra, "firmware")
}

func TestDeviceModelHydrateMergesOntoProxy(t *testing.T) {
	t.Parallel()

	server := testutil.NewMockServer(t, "/device-models/m1", "token",
		`{"id": "m1", "name": "thermometer"}`, http.StatusOK)
	defer server.Close()

	client := newTestClient(t, server.URL)
	model := client.DeviceModel("m1")

	hydrated, err := model.Hydrate(context.Background())
	require.NoError(t, err)
	assert.Same(t, model, hydrated)
}
