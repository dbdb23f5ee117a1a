package relayr

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"

	"github.com/relayr/go-relayr/internal/httpclient"
	"github.com/relayr/go-relayr/observability"
)

// API gives direct access to the relayr REST endpoints, one method per
// endpoint. Method names follow the HTTP verb and the resource path,
// e.g. GetUserDevices for GET /users/{id}/devices.
//
// Every method goes through perform, which normalizes the outcome: a
// 2xx status yields the parsed JSON body (nil for empty or non-JSON
// bodies), anything else yields an *APIError.
type API struct {
	host      string
	userAgent string
	token     string

	http     *httpclient.Client
	logger   observability.Logger
	debug    bool
	logCalls bool
}

// perform executes one HTTP exchange and normalizes the result.
//
// The request carries the client's user-agent, a JSON content type and,
// when a token is configured, a Bearer authorization header. Query
// parameters are percent-encoded and appended to the path.
//
// Status in [200,300) is success: the body is parsed as JSON, and a
// body that is empty or fails to parse degrades to a nil value (with a
// warning when debug is on) because some endpoints legitimately answer
// with empty bodies. Any other status returns an *APIError. Connection
// failures are wrapped and propagated unchanged.
func (a *API) perform(ctx context.Context, method, path string, query url.Values, body any) (int, json.RawMessage, error) {
	u := a.host + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return 0, nil, errors.Wrapf(err, "encode body for %s %s", method, u)
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "build request %s %s", method, u)
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	replay := CurlCommand(method, u, payload, req.Header)
	if a.logCalls {
		a.logger.Info("api request",
			observability.Field{Key: "replay", Value: replay},
		)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		if a.logCalls {
			a.logger.Error("api request failed",
				observability.Field{Key: "replay", Value: replay},
				observability.Field{Key: "error", Value: err.Error()},
			)
		}
		return 0, nil, errors.Wrapf(err, "%s %s", method, u)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrapf(err, "read response of %s %s", method, u)
	}
	if a.logCalls {
		a.logger.Info("api response",
			observability.Field{Key: "method", Value: method},
			observability.Field{Key: "url", Value: u},
			observability.Field{Key: "status", Value: resp.StatusCode},
		)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(bytes.TrimSpace(raw)) == 0 || !json.Valid(raw) {
			if a.debug {
				a.logger.Warn("replaced non-JSON response body with null",
					observability.Field{Key: "method", Value: method},
					observability.Field{Key: "url", Value: u},
					observability.Field{Key: "body", Value: string(raw)},
				)
			}
			return resp.StatusCode, nil, nil
		}
		return resp.StatusCode, json.RawMessage(raw), nil
	}

	return resp.StatusCode, nil, newAPIError(resp.StatusCode, method, u, raw, replay)
}

func (a *API) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	_, raw, err := a.perform(ctx, http.MethodGet, path, query, nil)
	return raw, err
}

func (a *API) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	_, raw, err := a.perform(ctx, http.MethodPost, path, nil, body)
	return raw, err
}

func (a *API) patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	_, raw, err := a.perform(ctx, http.MethodPatch, path, nil, body)
	return raw, err
}

func (a *API) delete(ctx context.Context, path string) (json.RawMessage, error) {
	_, raw, err := a.perform(ctx, http.MethodDelete, path, nil, nil)
	return raw, err
}

// ...........................................................................
// System and OAuth
// ...........................................................................

// GetServerStatus checks the server status. GET /server-status.
func (a *API) GetServerStatus(ctx context.Context) (json.RawMessage, error) {
	return a.get(ctx, "/server-status", nil)
}

// GetUsersValidate validates a user email address.
// GET /users/validate?email=.
func (a *API) GetUsersValidate(ctx context.Context, email string) (json.RawMessage, error) {
	return a.get(ctx, "/users/validate", url.Values{"email": {email}})
}

// PostOAuth2Token exchanges an authorization code for a token.
// POST /oauth2/token.
func (a *API) PostOAuth2Token(ctx context.Context, clientID, clientSecret, code, redirectURI string) (json.RawMessage, error) {
	body := map[string]any{
		"client_id":     clientID,
		"client_secret": clientSecret,
		"grant_type":    "authorization_code",
		"code":          code,
		"redirect_uri":  redirectURI,
	}
	return a.post(ctx, "/oauth2/token", body)
}

// GetOAuth2AppDevToken returns the token for an application/developer
// pair. GET /oauth2/appdev-token/{appID}.
func (a *API) GetOAuth2AppDevToken(ctx context.Context, appID string) (json.RawMessage, error) {
	return a.get(ctx, "/oauth2/appdev-token/"+appID, nil)
}

// PostOAuth2AppDevToken generates a new application/developer token.
// POST /oauth2/appdev-token/{appID}.
func (a *API) PostOAuth2AppDevToken(ctx context.Context, appID string) (json.RawMessage, error) {
	return a.post(ctx, "/oauth2/appdev-token/"+appID, nil)
}

// DeleteOAuth2AppDevToken revokes an application/developer token.
// DELETE /oauth2/appdev-token/{appID}.
func (a *API) DeleteOAuth2AppDevToken(ctx context.Context, appID string) (json.RawMessage, error) {
	return a.delete(ctx, "/oauth2/appdev-token/"+appID)
}

// GetOAuth2UserInfo returns information about the user behind the
// token. GET /oauth2/user-info.
func (a *API) GetOAuth2UserInfo(ctx context.Context) (json.RawMessage, error) {
	return a.get(ctx, "/oauth2/user-info", nil)
}

// GetOAuth2AppInfo returns information about the app behind the token.
// GET /oauth2/app-info.
func (a *API) GetOAuth2AppInfo(ctx context.Context) (json.RawMessage, error) {
	return a.get(ctx, "/oauth2/app-info", nil)
}

// ...........................................................................
// Users
// ...........................................................................

// PatchUser updates user attributes. The body carries only the fields
// to change. PATCH /users/{id}.
func (a *API) PatchUser(ctx context.Context, userID string, fields map[string]any) (json.RawMessage, error) {
	return a.patch(ctx, "/users/"+userID, fields)
}

// PostUserApp installs an app for a user. POST /users/{id}/apps/{appID}.
func (a *API) PostUserApp(ctx context.Context, userID, appID string) (json.RawMessage, error) {
	return a.post(ctx, "/users/"+userID+"/apps/"+appID, nil)
}

// DeleteUserApp uninstalls an app of a user.
// DELETE /users/{id}/apps/{appID}.
func (a *API) DeleteUserApp(ctx context.Context, userID, appID string) (json.RawMessage, error) {
	return a.delete(ctx, "/users/"+userID+"/apps/"+appID)
}

// GetUserPublishers lists the publishers owned by a user.
// GET /users/{id}/publishers.
func (a *API) GetUserPublishers(ctx context.Context, userID string) (json.RawMessage, error) {
	return a.get(ctx, "/users/"+userID+"/publishers", nil)
}

// GetUserApps lists the apps installed for a user. Entries reference
// the app by an "app" field, not "id". GET /users/{id}/apps.
func (a *API) GetUserApps(ctx context.Context, userID string) (json.RawMessage, error) {
	return a.get(ctx, "/users/"+userID+"/apps", nil)
}

// GetUserTransmitters lists the transmitters of a user.
// GET /users/{id}/transmitters.
func (a *API) GetUserTransmitters(ctx context.Context, userID string) (json.RawMessage, error) {
	return a.get(ctx, "/users/"+userID+"/transmitters", nil)
}

// GetUserDevices lists the devices registered for a user.
// GET /users/{id}/devices.
func (a *API) GetUserDevices(ctx context.Context, userID string) (json.RawMessage, error) {
	return a.get(ctx, "/users/"+userID+"/devices", nil)
}

// GetUserDevicesFiltered lists a user's devices whose model offers the
// given meaning. GET /users/{id}/devices?meaning=.
func (a *API) GetUserDevicesFiltered(ctx context.Context, userID, meaning string) (json.RawMessage, error) {
	return a.get(ctx, "/users/"+userID+"/devices", url.Values{"meaning": {meaning}})
}

// GetUserDevicesBookmarked lists the devices bookmarked by a user.
// GET /users/{id}/devices/bookmarks.
func (a *API) GetUserDevicesBookmarked(ctx context.Context, userID string) (json.RawMessage, error) {
	return a.get(ctx, "/users/"+userID+"/devices/bookmarks", nil)
}

// DeleteUserDeviceBookmark removes a device bookmark.
// DELETE /users/{id}/devices/{deviceID}/bookmarks.
func (a *API) DeleteUserDeviceBookmark(ctx context.Context, userID, deviceID string) (json.RawMessage, error) {
	return a.delete(ctx, "/users/"+userID+"/devices/"+deviceID+"/bookmarks")
}

// PostUserWunderbar provisions a wunderbar kit for a user and returns
// its master module and sensor devices. POST /users/{id}/wunderbar.
func (a *API) PostUserWunderbar(ctx context.Context, userID string) (json.RawMessage, error) {
	return a.post(ctx, "/users/"+userID+"/wunderbar", nil)
}

// PostUserDestroy removes all wunderbars of a user. Irreversible.
// POST /users/{id}/destroy-everything-i-love.
func (a *API) PostUserDestroy(ctx context.Context, userID string) (json.RawMessage, error) {
	return a.post(ctx, "/users/"+userID+"/destroy-everything-i-love", nil)
}

// ...........................................................................
// Applications
// ...........................................................................

// GetPublicApps lists all applications. GET /apps.
func (a *API) GetPublicApps(ctx context.Context) (json.RawMessage, error) {
	return a.get(ctx, "/apps", nil)
}

// PostApp registers a new application. POST /apps.
func (a *API) PostApp(ctx context.Context, name, publisherID, redirectURI, description string) (json.RawMessage, error) {
	body := map[string]any{
		"name":        name,
		"publisher":   publisherID,
		"redirectUri": redirectURI,
		"description": description,
	}
	return a.post(ctx, "/apps", body)
}

// GetAppInfo returns the basic representation of an app.
// GET /apps/{id}.
func (a *API) GetAppInfo(ctx context.Context, appID string) (json.RawMessage, error) {
	return a.get(ctx, "/apps/"+appID, nil)
}

// GetAppInfoExtended returns the extended representation of an app,
// including clientId, clientSecret and redirectUri.
// GET /apps/{id}/extended.
func (a *API) GetAppInfoExtended(ctx context.Context, appID string) (json.RawMessage, error) {
	return a.get(ctx, "/apps/"+appID+"/extended", nil)
}

// PatchApp updates app attributes. PATCH /apps/{id}.
func (a *API) PatchApp(ctx context.Context, appID string, fields map[string]any) (json.RawMessage, error) {
	return a.patch(ctx, "/apps/"+appID, fields)
}

// DeleteApp deletes an app. DELETE /apps/{id}.
func (a *API) DeleteApp(ctx context.Context, appID string) (json.RawMessage, error) {
	return a.delete(ctx, "/apps/"+appID)
}

// PostAppDevice connects an app to a device; subscription credentials
// are part of the response. POST /apps/{appID}/devices/{deviceID}.
func (a *API) PostAppDevice(ctx context.Context, appID, deviceID string) (json.RawMessage, error) {
	return a.post(ctx, "/apps/"+appID+"/devices/"+deviceID, nil)
}

// DeleteAppDevice disconnects an app from a device.
// DELETE /apps/{appID}/devices/{deviceID}.
func (a *API) DeleteAppDevice(ctx context.Context, appID, deviceID string) (json.RawMessage, error) {
	return a.delete(ctx, "/apps/"+appID+"/devices/"+deviceID)
}

// ...........................................................................
// Publishers
// ...........................................................................

// GetPublicPublishers lists all publishers. GET /publishers.
func (a *API) GetPublicPublishers(ctx context.Context) (json.RawMessage, error) {
	return a.get(ctx, "/publishers", nil)
}

// PostPublisher registers a new publisher owned by a user.
// POST /publishers.
func (a *API) PostPublisher(ctx context.Context, userID, name string) (json.RawMessage, error) {
	body := map[string]any{"owner": userID, "name": name}
	return a.post(ctx, "/publishers", body)
}

// PatchPublisher updates publisher attributes. PATCH /publishers/{id}.
func (a *API) PatchPublisher(ctx context.Context, publisherID string, fields map[string]any) (json.RawMessage, error) {
	return a.patch(ctx, "/publishers/"+publisherID, fields)
}

// DeletePublisher deletes a publisher. DELETE /publishers/{id}.
func (a *API) DeletePublisher(ctx context.Context, publisherID string) (json.RawMessage, error) {
	return a.delete(ctx, "/publishers/"+publisherID)
}

// GetPublisherApps lists the apps published by a publisher.
// GET /publishers/{id}/apps.
func (a *API) GetPublisherApps(ctx context.Context, publisherID string) (json.RawMessage, error) {
	return a.get(ctx, "/publishers/"+publisherID+"/apps", nil)
}

// GetPublisherAppsExtended lists the apps of a publisher in extended
// form. GET /publishers/{id}/apps/extended.
func (a *API) GetPublisherAppsExtended(ctx context.Context, publisherID string) (json.RawMessage, error) {
	return a.get(ctx, "/publishers/"+publisherID+"/apps/extended", nil)
}

// ...........................................................................
// Devices
// ...........................................................................

// GetPublicDevices lists all public devices, optionally filtered by
// meaning. GET /devices/public[?meaning=].
func (a *API) GetPublicDevices(ctx context.Context, meaning string) (json.RawMessage, error) {
	var query url.Values
	if meaning != "" {
		query = url.Values{"meaning": {meaning}}
	}
	return a.get(ctx, "/devices/public", query)
}

// PostDevice registers a new device. POST /devices.
func (a *API) PostDevice(ctx context.Context, name, ownerID, modelID, firmwareVersion string) (json.RawMessage, error) {
	body := map[string]any{
		"name":            name,
		"owner":           ownerID,
		"model":           modelID,
		"firmwareVersion": firmwareVersion,
	}
	return a.post(ctx, "/devices", body)
}

// GetDevice returns the representation of a device. GET /devices/{id}.
func (a *API) GetDevice(ctx context.Context, deviceID string) (json.RawMessage, error) {
	return a.get(ctx, "/devices/"+deviceID, nil)
}

// PatchDevice updates device attributes. PATCH /devices/{id}.
func (a *API) PatchDevice(ctx context.Context, deviceID string, fields map[string]any) (json.RawMessage, error) {
	return a.patch(ctx, "/devices/"+deviceID, fields)
}

// DeleteDevice deletes a device. DELETE /devices/{id}.
func (a *API) DeleteDevice(ctx context.Context, deviceID string) (json.RawMessage, error) {
	return a.delete(ctx, "/devices/"+deviceID)
}

// GetDeviceApps lists the apps connected to a device.
// GET /devices/{id}/apps.
func (a *API) GetDeviceApps(ctx context.Context, deviceID string) (json.RawMessage, error) {
	return a.get(ctx, "/devices/"+deviceID+"/apps", nil)
}

// PostDeviceSubscription requests subscription credentials for a
// device's data stream. POST /devices/{id}/subscription.
func (a *API) PostDeviceSubscription(ctx context.Context, deviceID string) (json.RawMessage, error) {
	return a.post(ctx, "/devices/"+deviceID+"/subscription", nil)
}

// PostDeviceCommand sends a named command with a JSON payload to a
// device. POST /devices/{id}/cmd/{command}.
func (a *API) PostDeviceCommand(ctx context.Context, deviceID, command string, payload any) (json.RawMessage, error) {
	return a.post(ctx, "/devices/"+deviceID+"/cmd/"+command, payload)
}

// PostDeviceApp connects a device to an app; subscription credentials
// are part of the response. POST /devices/{deviceID}/apps/{appID}.
func (a *API) PostDeviceApp(ctx context.Context, deviceID, appID string) (json.RawMessage, error) {
	return a.post(ctx, "/devices/"+deviceID+"/apps/"+appID, nil)
}

// DeleteDeviceApp disconnects a device from an app.
// DELETE /devices/{deviceID}/apps/{appID}.
func (a *API) DeleteDeviceApp(ctx context.Context, deviceID, appID string) (json.RawMessage, error) {
	return a.delete(ctx, "/devices/"+deviceID+"/apps/"+appID)
}

// GetDeviceConfiguration returns a device's current configuration and
// its configuration schema. GET /devices/{id}/firmware.
func (a *API) GetDeviceConfiguration(ctx context.Context, deviceID string) (json.RawMessage, error) {
	return a.get(ctx, "/devices/"+deviceID+"/firmware", nil)
}

// PostDeviceConfiguration sets the sensor update frequency of a device,
// in milliseconds. POST /devices/{id}/configuration.
func (a *API) PostDeviceConfiguration(ctx context.Context, deviceID string, frequency int) (json.RawMessage, error) {
	body := map[string]any{"frequency": frequency, "deviceId": deviceID}
	return a.post(ctx, "/devices/"+deviceID+"/configuration", body)
}

// ...........................................................................
// Device models
// ...........................................................................

// GetPublicDeviceModels lists all device models. GET /device-models.
func (a *API) GetPublicDeviceModels(ctx context.Context) (json.RawMessage, error) {
	return a.get(ctx, "/device-models", nil)
}

// GetDeviceModel returns the representation of a device model.
// GET /device-models/{id}.
func (a *API) GetDeviceModel(ctx context.Context, modelID string) (json.RawMessage, error) {
	return a.get(ctx, "/device-models/"+modelID, nil)
}

// GetPublicDeviceModelMeanings lists all device model meanings.
// GET /device-models/meanings.
func (a *API) GetPublicDeviceModelMeanings(ctx context.Context) (json.RawMessage, error) {
	return a.get(ctx, "/device-models/meanings", nil)
}

// ...........................................................................
// Transmitters
// ...........................................................................

// GetTransmitter returns the representation of a transmitter.
// GET /transmitters/{id}.
func (a *API) GetTransmitter(ctx context.Context, transmitterID string) (json.RawMessage, error) {
	return a.get(ctx, "/transmitters/"+transmitterID, nil)
}

// PostTransmitter registers a transmitter. POST /transmitters/{id}.
func (a *API) PostTransmitter(ctx context.Context, transmitterID string, fields map[string]any) (json.RawMessage, error) {
	return a.post(ctx, "/transmitters/"+transmitterID, fields)
}

// PatchTransmitter updates transmitter attributes.
// PATCH /transmitters/{id}.
func (a *API) PatchTransmitter(ctx context.Context, transmitterID string, fields map[string]any) (json.RawMessage, error) {
	return a.patch(ctx, "/transmitters/"+transmitterID, fields)
}

// DeleteTransmitter deletes a transmitter. DELETE /transmitters/{id}.
func (a *API) DeleteTransmitter(ctx context.Context, transmitterID string) (json.RawMessage, error) {
	return a.delete(ctx, "/transmitters/"+transmitterID)
}

// GetTransmitterDevices lists the devices connected to a transmitter.
// GET /transmitters/{id}/devices.
func (a *API) GetTransmitterDevices(ctx context.Context, transmitterID string) (json.RawMessage, error) {
	return a.get(ctx, "/transmitters/"+transmitterID+"/devices", nil)
}

// PostTransmitterDevice connects a transmitter to a device.
// POST /transmitters/{transmitterID}/devices/{deviceID}.
func (a *API) PostTransmitterDevice(ctx context.Context, transmitterID, deviceID string) (json.RawMessage, error) {
	return a.post(ctx, "/transmitters/"+transmitterID+"/devices/"+deviceID, nil)
}

// DeleteTransmitterDevice disconnects a transmitter from a device.
// DELETE /transmitters/{transmitterID}/devices/{deviceID}.
func (a *API) DeleteTransmitterDevice(ctx context.Context, transmitterID, deviceID string) (json.RawMessage, error) {
	return a.delete(ctx, "/transmitters/"+transmitterID+"/devices/"+deviceID)
}
