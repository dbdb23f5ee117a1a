package relayr

import (
	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

// The proxies in this package share a hydrate/merge/update/delete
// contract but deliberately form no hierarchy: each is an independent
// struct with declared fields for the attributes the backend documents,
// plus an Extra map that retains whatever else the server sends.
//
// Merging is destructive per field: every key present in a server
// response overwrites the local value, keys absent from the response
// are left untouched. Relation-typed keys (a device's "model") are
// replaced by hydrated proxies of the related type, so hydration
// recurses exactly one relation deep per merge.

// decodeFields splits a raw JSON object into its top-level fields.
func decodeFields(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrap(err, "decode entity representation")
	}
	return fields, nil
}

// decodeInto decodes one field value, naming the field on failure.
func decodeInto(key string, raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Wrapf(err, "decode field %q", key)
	}
	return nil
}

// relationID extracts the entity ID from a relation-typed field value,
// which the backend sends either as a full object carrying an "id" or
// as a bare ID string.
func relationID(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", errors.Wrap(err, "decode relation value")
	}
	if obj.ID == "" {
		return "", errors.New("relation value has no id")
	}
	return obj.ID, nil
}
