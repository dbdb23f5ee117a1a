package relayr

import (
	"context"

	json "github.com/goccy/go-json"

	"github.com/relayr/go-relayr/stream"
)

// Device is a proxy for a relayr device.
type Device struct {
	ID              string
	Name            string
	Description     string
	Owner           string
	Secret          string
	FirmwareVersion string
	Public          bool

	// Model is the device's model, hydrated on merge whenever the
	// server representation carries a "model" field.
	Model *DeviceModel

	// Extra retains server fields this proxy does not declare.
	Extra map[string]json.RawMessage

	client *Client
}

// DeviceUpdate names the device fields a partial update may set. Nil
// fields are omitted from the request, locally and on the server.
type DeviceUpdate struct {
	Name        *string
	Description *string
	Model       *string
	Public      *bool
}

// Hydrate fetches the device's current representation and merges it
// onto the proxy. Returns the same proxy for chaining.
func (d *Device) Hydrate(ctx context.Context) (*Device, error) {
	raw, err := d.client.api.GetDevice(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if err := d.merge(ctx, raw); err != nil {
		return nil, err
	}
	return d, nil
}

// Update sends the set fields, merges the server's response back and
// returns the same proxy.
func (d *Device) Update(ctx context.Context, upd DeviceUpdate) (*Device, error) {
	fields := make(map[string]any)
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Model != nil {
		fields["model"] = *upd.Model
	}
	if upd.Public != nil {
		fields["public"] = *upd.Public
	}
	raw, err := d.client.api.PatchDevice(ctx, d.ID, fields)
	if err != nil {
		return nil, err
	}
	if err := d.merge(ctx, raw); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes the device from the relayr cloud. The proxy's local
// fields are left untouched; using the proxy afterwards is caller
// error.
func (d *Device) Delete(ctx context.Context) (*Device, error) {
	if _, err := d.client.api.DeleteDevice(ctx, d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// ConnectedApps lists the apps connected to this device. The entries
// are already in summary form; no per-item hydration happens.
func (d *Device) ConnectedApps(ctx context.Context) ([]AppSummary, error) {
	raw, err := d.client.api.GetDeviceApps(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	var apps []AppSummary
	if len(raw) > 0 {
		if err := decodeInto("apps", raw, &apps); err != nil {
			return nil, err
		}
	}
	return apps, nil
}

// SendCommand sends a named command with a JSON payload to the device.
func (d *Device) SendCommand(ctx context.Context, command string, payload any) (json.RawMessage, error) {
	return d.client.api.PostDeviceCommand(ctx, d.ID, command, payload)
}

// SwitchLED switches the device's LED on for around ten seconds, or off
// immediately. It is the "led" command with a {"cmd": 0|1} payload.
func (d *Device) SwitchLED(ctx context.Context, on bool) (*Device, error) {
	cmd := 0
	if on {
		cmd = 1
	}
	if _, err := d.SendCommand(ctx, "led", map[string]any{"cmd": cmd}); err != nil {
		return nil, err
	}
	return d, nil
}

// Subscription requests credentials for this device's data stream.
func (d *Device) Subscription(ctx context.Context) (stream.Credentials, error) {
	var creds stream.Credentials
	raw, err := d.client.api.PostDeviceSubscription(ctx, d.ID)
	if err != nil {
		return creds, err
	}
	if err := decodeInto("subscription", raw, &creds); err != nil {
		return stream.Credentials{}, err
	}
	return creds, nil
}

// Subscribe requests subscription credentials and opens a push channel
// for the device's telemetry. Message delivery happens on the stream
// transport's own goroutines; close the returned connection to stop.
func (d *Device) Subscribe(ctx context.Context, handler stream.Handler, opts ...stream.Option) (*stream.Connection, error) {
	creds, err := d.Subscription(ctx)
	if err != nil {
		return nil, err
	}
	return stream.Open(creds, handler, opts...)
}

// DeviceConfiguration is a device's current configuration together with
// the schema constraining it.
type DeviceConfiguration struct {
	Version       string              `json:"version"`
	Configuration ConfigurationDetail `json:"configuration"`
}

// ConfigurationDetail carries the configured values and their schema.
type ConfigurationDetail struct {
	DefaultValues map[string]any `json:"defaultValues"`
	Schema        map[string]any `json:"schema"`
}

// Configuration returns the device's current configuration and
// configuration schema.
func (d *Device) Configuration(ctx context.Context) (*DeviceConfiguration, error) {
	raw, err := d.client.api.GetDeviceConfiguration(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	var cfg DeviceConfiguration
	if err := decodeInto("configuration", raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Configure sets the device's sensor update frequency in milliseconds.
func (d *Device) Configure(ctx context.Context, frequency int) error {
	_, err := d.client.api.PostDeviceConfiguration(ctx, d.ID, frequency)
	return err
}

// ConnectToApp is not exposed by the backend for the proxy layer.
func (d *Device) ConnectToApp(string) error {
	return ErrUnsupported
}

// DisconnectFromApp is not exposed by the backend for the proxy layer.
func (d *Device) DisconnectFromApp(string) error {
	return ErrUnsupported
}

func (d *Device) merge(ctx context.Context, raw json.RawMessage) error {
	fields, err := decodeFields(raw)
	if err != nil {
		return err
	}
	for k, v := range fields {
		var err error
		switch k {
		case "id":
			err = decodeInto(k, v, &d.ID)
		case "name":
			err = decodeInto(k, v, &d.Name)
		case "description":
			err = decodeInto(k, v, &d.Description)
		case "owner":
			err = decodeInto(k, v, &d.Owner)
		case "secret":
			err = decodeInto(k, v, &d.Secret)
		case "firmwareVersion":
			err = decodeInto(k, v, &d.FirmwareVersion)
		case "public":
			err = decodeInto(k, v, &d.Public)
		case "model":
			// Relation-typed key: replace the raw value with a hydrated
			// proxy. The server sends either the full model object or a
			// bare model ID.
			var id string
			id, err = relationID(v)
			if err == nil {
				model := d.client.DeviceModel(id)
				_, err = model.Hydrate(ctx)
				if err == nil {
					d.Model = model
				}
			}
		default:
			if d.Extra == nil {
				d.Extra = make(map[string]json.RawMessage)
			}
			d.Extra[k] = v
		}
		if err != nil {
			return err
		}
	}
	return nil
}
