/*
Package httpcall is an HTTP client for Tarmac guest functions that can either
wait for a response or hand back a pending result and keep going.

A synchronous call blocks until the response body is available:

	c, err := httpcall.New(httpcall.Config{})
	if err != nil {
		return err
	}
	body, err := c.Call(ctx, httpcall.Request{URL: "http://example.com/api?id=5"})

A deferred call sends the request and returns immediately, so many requests
can be in flight from one goroutine. Each result is collected exactly once:

	a, _ := c.DeferCall(ctx, httpcall.Request{URL: "http://a.example/"})
	b, _ := c.DeferCall(ctx, httpcall.Request{URL: "http://b.example/", Method: httpcall.POST,
		Payload: httpcall.Form{"name": "x"}})

	bodyB, err := b.Receive(ctx)
	bodyA, err := a.Receive(ctx)

Each request parses its URL (package endpoint), resolves the host through the
dns capability unless it is an IPv4 literal (package dns), encodes the payload
(package request) and performs the exchange over a transport session (package
transport). Timing is reported to a metrics.Profiler under the key
METHOD + "." + URL and a debug line with the result body goes to the logger.

Nothing is retried. Errors are returned as they come from the failing stage
and can be matched with errors.Is against endpoint.ErrMalformedURL,
dns.ErrResolution, transport.ErrTransport and ErrInvalidState.

Collaborators that are not set in Config are built on the Tarmac host
capabilities using Config.HostCall, or the waPC host function when that is nil.
*/
package httpcall
