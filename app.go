package relayr

import (
	"context"

	json "github.com/goccy/go-json"
)

// App is a proxy for a relayr application.
//
// The extended fields (Publisher, ClientID, ClientSecret, RedirectURI)
// are only populated by an extended hydrate; the basic representation
// carries id, name and description.
type App struct {
	ID          string
	Name        string
	Description string

	Publisher    string
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Extra retains server fields this proxy does not declare.
	Extra map[string]json.RawMessage

	client *Client
}

// AppSummary is the summary form apps take in listings (a device's
// connected apps, a publisher's apps). The credential fields are only
// present in extended listings.
type AppSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Publisher    string `json:"publisher,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	RedirectURI  string `json:"redirectUri,omitempty"`
}

// AppUpdate names the app fields a partial update may set. Nil fields
// are omitted from the request.
type AppUpdate struct {
	Name        *string
	Description *string
	RedirectURI *string
}

// Hydrate fetches the app's representation and merges it onto the
// proxy. With extended set, the credential fields (clientId,
// clientSecret, redirectUri) are included; the choice is explicit, not
// auto-detected. Returns the same proxy for chaining.
func (a *App) Hydrate(ctx context.Context, extended bool) (*App, error) {
	fetch := a.client.api.GetAppInfo
	if extended {
		fetch = a.client.api.GetAppInfoExtended
	}
	raw, err := fetch(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if err := a.merge(raw); err != nil {
		return nil, err
	}
	return a, nil
}

// Update sends the set fields, merges the server's response back and
// returns the same proxy.
func (a *App) Update(ctx context.Context, upd AppUpdate) (*App, error) {
	fields := make(map[string]any)
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.RedirectURI != nil {
		fields["redirectUri"] = *upd.RedirectURI
	}
	raw, err := a.client.api.PatchApp(ctx, a.ID, fields)
	if err != nil {
		return nil, err
	}
	if err := a.merge(raw); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes the app from the relayr cloud. Local fields stay
// untouched.
func (a *App) Delete(ctx context.Context) (*App, error) {
	if _, err := a.client.api.DeleteApp(ctx, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

// Register is not exposed for existing proxies; use
// Client.RegisterApp.
func (a *App) Register(string, string) error {
	return ErrUnsupported
}

// ConnectToDevice is not exposed by the backend for the proxy layer.
func (a *App) ConnectToDevice(string) error {
	return ErrUnsupported
}

// DisconnectFromDevice is not exposed by the backend for the proxy
// layer.
func (a *App) DisconnectFromDevice(string) error {
	return ErrUnsupported
}

func (a *App) merge(raw json.RawMessage) error {
	fields, err := decodeFields(raw)
	if err != nil {
		return err
	}
	for k, v := range fields {
		var err error
		switch k {
		case "id":
			err = decodeInto(k, v, &a.ID)
		case "name":
			err = decodeInto(k, v, &a.Name)
		case "description":
			err = decodeInto(k, v, &a.Description)
		case "publisher":
			err = decodeInto(k, v, &a.Publisher)
		case "clientId":
			err = decodeInto(k, v, &a.ClientID)
		case "clientSecret":
			err = decodeInto(k, v, &a.ClientSecret)
		case "redirectUri":
			err = decodeInto(k, v, &a.RedirectURI)
		default:
			if a.Extra == nil {
				a.Extra = make(map[string]json.RawMessage)
			}
			a.Extra[k] = v
		}
		if err != nil {
			return err
		}
	}
	return nil
}
