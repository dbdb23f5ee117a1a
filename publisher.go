package relayr

import (
	"context"

	json "github.com/goccy/go-json"
)

// Publisher is a proxy for a relayr publisher.
//
// The backend has no single-publisher read endpoint; publisher proxies
// are populated from listings (see User.Publishers) and from update
// responses.
type Publisher struct {
	ID    string
	Name  string
	Owner string

	// Extra retains server fields this proxy does not declare.
	Extra map[string]json.RawMessage

	client *Client
}

// PublisherUpdate names the publisher fields a partial update may set.
type PublisherUpdate struct {
	Name *string
}

// Apps lists the apps published by this publisher. With extended set,
// entries include the credential fields (clientId, clientSecret,
// redirectUri); the choice is explicit, not auto-detected. The entries
// are summary forms; no per-item hydration happens.
func (p *Publisher) Apps(ctx context.Context, extended bool) ([]AppSummary, error) {
	fetch := p.client.api.GetPublisherApps
	if extended {
		fetch = p.client.api.GetPublisherAppsExtended
	}
	raw, err := fetch(ctx, p.ID)
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

// Update sends the set fields, merges the server's response back and
// returns the same proxy.
func (p *Publisher) Update(ctx context.Context, upd PublisherUpdate) (*Publisher, error) {
	fields := make(map[string]any)
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	raw, err := p.client.api.PatchPublisher(ctx, p.ID, fields)
	if err != nil {
		return nil, err
	}
	if err := p.merge(raw); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the publisher from the relayr cloud. Local fields stay
// untouched.
func (p *Publisher) Delete(ctx context.Context) (*Publisher, error) {
	if _, err := p.client.api.DeletePublisher(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// Register is not exposed for existing proxies; use
// Client.RegisterPublisher.
func (p *Publisher) Register(string, string) error {
	return ErrUnsupported
}

func (p *Publisher) merge(raw json.RawMessage) error {
	fields, err := decodeFields(raw)
	if err != nil {
		return err
	}
	for k, v := range fields {
		var err error
		switch k {
		case "id":
			err = decodeInto(k, v, &p.ID)
		case "name":
			err = decodeInto(k, v, &p.Name)
		case "owner":
			err = decodeInto(k, v, &p.Owner)
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]json.RawMessage)
			}
			p.Extra[k] = v
		}
		if err != nil {
			return err
		}
	}
	return nil
}
