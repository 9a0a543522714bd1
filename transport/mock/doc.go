/*
Package mock provides a deterministic in-memory transport.Dialer.

Sessions opened by the mock never touch the host. Responses are keyed by
method and URI, and every setting a client applies to a session is recorded
for inspection.

	d := mock.New(mock.Config{})
	d.On("GET", "/api?id=5").Return(`{"ok":true}`)

	gate := make(chan struct{})
	d.On("GET", "/slow?").Hold("late", gate) // completes once gate is closed

	s := d.Sessions()[0].Record()
	_ = s.Closes

A session refuses a second Send with transport.ErrAlreadySent and reports
transport.ErrClosed on its second Close, like the host-backed sessions.
*/
package mock
