// Package relayr is a client library for the relayr cloud IoT platform.
//
// The platform exposes users, publishers, applications, devices, device
// models and transmitters through a JSON/HTTP API. This package wraps
// that API twice: the API type offers one method per endpoint, and on
// top of it typed proxy objects (User, Device, ...) carry the entity
// state locally and know how to fetch, update and delete themselves.
//
// A proxy is a snapshot, not a cache entry. It is created with an ID and
// a bound client and stays empty until hydrated:
//
//	client, err := relayr.New(token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	device, err := client.Device("9b04...").Hydrate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(device.Name, device.Model.Manufacturer)
//
// Hydration merges every field the server returns over the local state;
// fields the server does not mention are left untouched, and unknown
// fields are kept in the proxy's Extra map. Nested relation values, such
// as a device's model, are replaced by hydrated proxies of their own
// type.
//
// One-to-many relations are exposed as lazy, single-use sequences that
// hydrate each child with its own request:
//
//	devices := user.Devices(ctx)
//	for {
//	    d, ok, err := devices.Next()
//	    if err != nil || !ok {
//	        break
//	    }
//	    fmt.Println(d.Name)
//	}
//
// Every failed call produces an *APIError carrying the HTTP status, the
// server message and a curl command that replays the request verbatim.
//
// Real-time telemetry is delivered outside this package: a device's
// Subscribe method obtains subscription credentials and hands them to
// the stream package, which manages the push channel.
package relayr
