/*
Package console implements the line provisioning console.

A Console consumes a raw byte stream one byte at a time, keeps a single capacity-bounded
LineBuffer with backspace editing, echoes typed bytes back to the same stream (masking the
password region of "wifi/SSID/PASSWORD" style lines) and, when a line completes, resolves it
against a fixed command table and dispatches it to a ports.Device.

Parsing is pure (Parse, MaskEcho) and can be tested without any collaborator. Execution lives
on the Console, which is driven by a single polling goroutine:

	c := console.New(w, device, console.WithLogger(logger))
	defer c.Close()
	for b := range input {
		c.Feed(b)
		c.Poll()
	}

Scans and Wi-Fi connection attempts run as asynchronous jobs; their output is written by Poll
on the polling goroutine, followed by a redraw of the prompt and the partially typed line.
*/
package console
