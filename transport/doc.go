/*
Package transport performs the network exchange for a single request.

A Dialer opens a Session bound to an already resolved host and port. The
caller configures the session (headers, method, body, timeout, scheme) and
calls Send with the request URI. In deferred mode Send returns a Token as soon
as the request is issued and Wait later collects the outcome; otherwise Send
blocks until the response is complete.

HostDialer performs the exchange through the Tarmac "httpclient" capability.
The timeout is enforced in the guest and is measured from Send, so a deferred
request that is received late can already have expired.

All failures wrap ErrTransport.
*/
package transport
