// Package stream delivers device telemetry pushed by the relayr cloud.
//
// The REST API only issues channel credentials; the data itself arrives
// over MQTT. Open takes the credentials returned by a device
// subscription call and a handler, connects to the broker and invokes
// the handler for every published reading:
//
//	conn, err := user.ConnectDevice(ctx, device,
//		func(channel string, payload []byte) {
//			fmt.Printf("%s: %s\n", channel, payload)
//		})
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
// Handlers are invoked on the broker client's goroutines and should not
// block for extended periods.
package stream
