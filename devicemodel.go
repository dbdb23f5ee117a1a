package relayr

import (
	"context"

	json "github.com/goccy/go-json"
)

// Reading describes one measurement a device model produces.
type Reading struct {
	Meaning string `json:"meaning"`
	Unit    string `json:"unit"`
}

// DeviceModel is a proxy for a relayr device model. Device models are
// read-only reference data; the proxy only hydrates.
type DeviceModel struct {
	ID           string
	Name         string
	Manufacturer string
	Readings     []Reading

	// Extra retains server fields this proxy does not declare.
	Extra map[string]json.RawMessage

	client *Client
}

// Hydrate fetches the model's current representation and merges it onto
// the proxy. Returns the same proxy for chaining.
func (m *DeviceModel) Hydrate(ctx context.Context) (*DeviceModel, error) {
	raw, err := m.client.api.GetDeviceModel(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if err := m.merge(raw); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *DeviceModel) merge(raw json.RawMessage) error {
	fields, err := decodeFields(raw)
	if err != nil {
		return err
	}
	for k, v := range fields {
		var err error
		switch k {
		case "id":
			err = decodeInto(k, v, &m.ID)
		case "name":
			err = decodeInto(k, v, &m.Name)
		case "manufacturer":
			err = decodeInto(k, v, &m.Manufacturer)
		case "readings":
			err = decodeInto(k, v, &m.Readings)
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]json.RawMessage)
			}
			m.Extra[k] = v
		}
		if err != nil {
			return err
		}
	}
	return nil
}
