package relayr

import (
	"context"

	json "github.com/goccy/go-json"
)

// Transmitter is a proxy for a relayr transmitter, such as a wunderbar
// master module.
type Transmitter struct {
	ID     string
	Name   string
	Owner  string
	Secret string

	// Extra retains server fields this proxy does not declare.
	Extra map[string]json.RawMessage

	client *Client
}

// TransmitterUpdate names the transmitter fields a partial update may
// set.
type TransmitterUpdate struct {
	Name *string
}

// Hydrate fetches the transmitter's current representation and merges
// it onto the proxy. Returns the same proxy for chaining.
func (t *Transmitter) Hydrate(ctx context.Context) (*Transmitter, error) {
	raw, err := t.client.api.GetTransmitter(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if err := t.merge(raw); err != nil {
		return nil, err
	}
	return t, nil
}

// Update sends the set fields, merges the server's response back and
// returns the same proxy.
func (t *Transmitter) Update(ctx context.Context, upd TransmitterUpdate) (*Transmitter, error) {
	fields := make(map[string]any)
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	raw, err := t.client.api.PatchTransmitter(ctx, t.ID, fields)
	if err != nil {
		return nil, err
	}
	if err := t.merge(raw); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the transmitter from the relayr cloud. Local fields
// stay untouched.
func (t *Transmitter) Delete(ctx context.Context) (*Transmitter, error) {
	if _, err := t.client.api.DeleteTransmitter(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// Devices returns a lazy sequence of the devices connected to this
// transmitter, each hydrated with its own request.
func (t *Transmitter) Devices(ctx context.Context) *Seq[*Device] {
	return relationSeq(ctx,
		func(ctx context.Context) (json.RawMessage, error) {
			return t.client.api.GetTransmitterDevices(ctx, t.ID)
		},
		func(ctx context.Context, entry json.RawMessage) (*Device, error) {
			id, err := entryID(entry, "id")
			if err != nil {
				return nil, err
			}
			return t.client.Device(id).Hydrate(ctx)
		},
	)
}

// ConnectDevice connects a device to this transmitter.
func (t *Transmitter) ConnectDevice(ctx context.Context, deviceID string) error {
	_, err := t.client.api.PostTransmitterDevice(ctx, t.ID, deviceID)
	return err
}

// DisconnectDevice removes the connection between this transmitter and
// a device.
func (t *Transmitter) DisconnectDevice(ctx context.Context, deviceID string) error {
	_, err := t.client.api.DeleteTransmitterDevice(ctx, t.ID, deviceID)
	return err
}

func (t *Transmitter) merge(raw json.RawMessage) error {
	fields, err := decodeFields(raw)
	if err != nil {
		return err
	}
	for k, v := range fields {
		var err error
		switch k {
		case "id":
			err = decodeInto(k, v, &t.ID)
		case "name":
			err = decodeInto(k, v, &t.Name)
		case "owner":
			err = decodeInto(k, v, &t.Owner)
		case "secret":
			err = decodeInto(k, v, &t.Secret)
		default:
			if t.Extra == nil {
				t.Extra = make(map[string]json.RawMessage)
			}
			t.Extra[k] = v
		}
		if err != nil {
			return err
		}
	}
	return nil
}
