package relayr

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

// WunderbarItem is one provisioned member of a wunderbar kit: either a
// sensor device or the master module transmitter, never both. Role is
// the server's name for the kit position ("masterModule", "microphone",
// "bridge", ...).
//
// The backend does not tag the variant; an entry carrying a "model"
// field is a device, anything else is a transmitter.
type WunderbarItem struct {
	Role        string
	Device      *Device
	Transmitter *Transmitter
}

// RegisterWunderbar provisions a wunderbar kit for the user and returns
// a lazy sequence over its members, hydrated, in the server's key
// order. No order beyond that is guaranteed.
func (u *User) RegisterWunderbar(ctx context.Context) *Seq[WunderbarItem] {
	var entries []wunderbarEntry
	fetched := false
	idx := 0

	return newSeq(func() (WunderbarItem, bool, error) {
		if !fetched {
			raw, err := u.client.api.PostUserWunderbar(ctx, u.ID)
			if err != nil {
				return WunderbarItem{}, false, err
			}
			entries, err = decodeOrderedObject(raw)
			if err != nil {
				return WunderbarItem{}, false, err
			}
			fetched = true
		}
		if idx >= len(entries) {
			return WunderbarItem{}, false, nil
		}
		e := entries[idx]
		idx++

		item, err := u.client.provisionedItem(ctx, e.role, e.value)
		if err != nil {
			return WunderbarItem{}, false, err
		}
		return item, true, nil
	})
}

// provisionedItem classifies one provisioning entry and hydrates the
// resulting proxy.
func (c *Client) provisionedItem(ctx context.Context, role string, raw json.RawMessage) (WunderbarItem, error) {
	fields, err := decodeFields(raw)
	if err != nil {
		return WunderbarItem{}, errors.Wrapf(err, "provisioning entry %q", role)
	}
	idRaw, ok := fields["id"]
	if !ok {
		return WunderbarItem{}, errors.Newf("provisioning entry %q has no id", role)
	}
	var id string
	if err := decodeInto("id", idRaw, &id); err != nil {
		return WunderbarItem{}, err
	}

	if _, hasModel := fields["model"]; hasModel {
		d, err := c.Device(id).Hydrate(ctx)
		if err != nil {
			return WunderbarItem{}, err
		}
		return WunderbarItem{Role: role, Device: d}, nil
	}
	t, err := c.Transmitter(id).Hydrate(ctx)
	if err != nil {
		return WunderbarItem{}, err
	}
	return WunderbarItem{Role: role, Transmitter: t}, nil
}

type wunderbarEntry struct {
	role  string
	value json.RawMessage
}

// decodeOrderedObject splits a JSON object into (key, value) pairs in
// document order. Decoding into a map would lose the server's key
// ordering, which the provisioning sequence preserves.
func decodeOrderedObject(raw json.RawMessage) ([]wunderbarEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "decode provisioning response")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("provisioning response is not a JSON object")
	}

	var entries []wunderbarEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "decode provisioning key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.New("provisioning key is not a string")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, errors.Wrapf(err, "decode provisioning entry %q", key)
		}
		entries = append(entries, wunderbarEntry{role: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "decode provisioning response")
	}
	return entries, nil
}
