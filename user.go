package relayr

import (
	"context"

	json "github.com/goccy/go-json"

	"github.com/relayr/go-relayr/stream"
)

// User is a proxy for a relayr user.
//
// The backend exposes no GET /users/{id}; Hydrate reads
// GET /oauth2/user-info and is therefore only meaningful for the user
// behind the client's token.
type User struct {
	ID    string
	Name  string
	Email string

	// Extra retains server fields this proxy does not declare.
	Extra map[string]json.RawMessage

	client *Client
}

// UserUpdate names the user fields a partial update may set. Nil fields
// are omitted from the request.
type UserUpdate struct {
	Name  *string
	Email *string
}

// Hydrate merges the token user's representation onto the proxy.
// Returns the same proxy for chaining.
func (u *User) Hydrate(ctx context.Context) (*User, error) {
	raw, err := u.client.api.GetOAuth2UserInfo(ctx)
	if err != nil {
		return nil, err
	}
	if err := u.merge(raw); err != nil {
		return nil, err
	}
	return u, nil
}

// Update sends the set fields, merges the server's response back and
// returns the same proxy.
func (u *User) Update(ctx context.Context, upd UserUpdate) (*User, error) {
	fields := make(map[string]any)
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Email != nil {
		fields["email"] = *upd.Email
	}
	raw, err := u.client.api.PatchUser(ctx, u.ID, fields)
	if err != nil {
		return nil, err
	}
	if err := u.merge(raw); err != nil {
		return nil, err
	}
	return u, nil
}

// Publishers returns a lazy sequence of the user's publishers. The
// backend has no single-publisher read endpoint, so each proxy is
// populated from its listing entry; the listing is the only request.
func (u *User) Publishers(ctx context.Context) *Seq[*Publisher] {
	return relationSeq(ctx,
		func(ctx context.Context) (json.RawMessage, error) {
			return u.client.api.GetUserPublishers(ctx, u.ID)
		},
		func(_ context.Context, entry json.RawMessage) (*Publisher, error) {
			id, err := entryID(entry, "id")
			if err != nil {
				return nil, err
			}
			p := u.client.Publisher(id)
			if err := p.merge(entry); err != nil {
				return nil, err
			}
			return p, nil
		},
	)
}

// Apps returns a lazy sequence of the user's installed apps, each
// hydrated with its own request. The listing references apps by an
// "app" field rather than "id"; that quirk is the backend's.
func (u *User) Apps(ctx context.Context) *Seq[*App] {
	return relationSeq(ctx,
		func(ctx context.Context) (json.RawMessage, error) {
			return u.client.api.GetUserApps(ctx, u.ID)
		},
		func(ctx context.Context, entry json.RawMessage) (*App, error) {
			id, err := entryID(entry, "app")
			if err != nil {
				return nil, err
			}
			return u.client.App(id).Hydrate(ctx, false)
		},
	)
}

// Transmitters returns a lazy sequence of the user's transmitters, each
// hydrated with its own request.
func (u *User) Transmitters(ctx context.Context) *Seq[*Transmitter] {
	return relationSeq(ctx,
		func(ctx context.Context) (json.RawMessage, error) {
			return u.client.api.GetUserTransmitters(ctx, u.ID)
		},
		func(ctx context.Context, entry json.RawMessage) (*Transmitter, error) {
			id, err := entryID(entry, "id")
			if err != nil {
				return nil, err
			}
			return u.client.Transmitter(id).Hydrate(ctx)
		},
	)
}

// Devices returns a lazy sequence of the user's devices, each hydrated
// with its own request.
func (u *User) Devices(ctx context.Context) *Seq[*Device] {
	return u.deviceSeq(ctx, func(ctx context.Context) (json.RawMessage, error) {
		return u.client.api.GetUserDevices(ctx, u.ID)
	})
}

// DevicesWithMeaning is Devices restricted to devices whose model
// offers the given meaning.
func (u *User) DevicesWithMeaning(ctx context.Context, meaning string) *Seq[*Device] {
	return u.deviceSeq(ctx, func(ctx context.Context) (json.RawMessage, error) {
		return u.client.api.GetUserDevicesFiltered(ctx, u.ID, meaning)
	})
}

// BookmarkedDevices returns a lazy sequence of the devices the user has
// bookmarked, each hydrated with its own request.
func (u *User) BookmarkedDevices(ctx context.Context) *Seq[*Device] {
	return u.deviceSeq(ctx, func(ctx context.Context) (json.RawMessage, error) {
		return u.client.api.GetUserDevicesBookmarked(ctx, u.ID)
	})
}

func (u *User) deviceSeq(ctx context.Context, list func(context.Context) (json.RawMessage, error)) *Seq[*Device] {
	return relationSeq(ctx, list,
		func(ctx context.Context, entry json.RawMessage) (*Device, error) {
			id, err := entryID(entry, "id")
			if err != nil {
				return nil, err
			}
			return u.client.Device(id).Hydrate(ctx)
		},
	)
}

// RemoveBookmark deletes a device bookmark; the device itself stays.
func (u *User) RemoveBookmark(ctx context.Context, deviceID string) error {
	_, err := u.client.api.DeleteUserDeviceBookmark(ctx, u.ID, deviceID)
	return err
}

// InstallApp installs an app for this user.
func (u *User) InstallApp(ctx context.Context, appID string) error {
	_, err := u.client.api.PostUserApp(ctx, u.ID, appID)
	return err
}

// UninstallApp uninstalls an app of this user.
func (u *User) UninstallApp(ctx context.Context, appID string) error {
	_, err := u.client.api.DeleteUserApp(ctx, u.ID, appID)
	return err
}

// ConnectDevice requests subscription credentials for the device's data
// stream and opens a push channel delivering its telemetry to handler.
func (u *User) ConnectDevice(ctx context.Context, device *Device, handler stream.Handler, opts ...stream.Option) (*stream.Connection, error) {
	var creds stream.Credentials
	raw, err := u.client.api.PostDeviceSubscription(ctx, device.ID)
	if err != nil {
		return nil, err
	}
	if err := decodeInto("subscription", raw, &creds); err != nil {
		return nil, err
	}
	return stream.Open(creds, handler, opts...)
}

// DisconnectDevice is not exposed by the backend; close the stream
// connection instead.
func (u *User) DisconnectDevice(string) error {
	return ErrUnsupported
}

// RemoveWunderbars removes all wunderbars associated with this user.
// Irreversible.
func (u *User) RemoveWunderbars(ctx context.Context) error {
	_, err := u.client.api.PostUserDestroy(ctx, u.ID)
	return err
}

func (u *User) merge(raw json.RawMessage) error {
	fields, err := decodeFields(raw)
	if err != nil {
		return err
	}
	for k, v := range fields {
		var err error
		switch k {
		case "id":
			err = decodeInto(k, v, &u.ID)
		case "name":
			err = decodeInto(k, v, &u.Name)
		case "email":
			err = decodeInto(k, v, &u.Email)
		default:
			if u.Extra == nil {
				u.Extra = make(map[string]json.RawMessage)
			}
			u.Extra[k] = v
		}
		if err != nil {
			return err
		}
	}
	return nil
}
