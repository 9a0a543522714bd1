/*
Package sdk holds the runtime configuration and host-call plumbing shared by
the httpcall capability clients.

RuntimeConfig carries the waPC namespace and the default request timeout.
Every capability package (logging, metrics, kv, dns, transport) accepts an
SDKConfig and an optional HostCall override; ResolveHostCall falls back to
wapc.HostCall when none is given. CheckStatus maps the status block returned
by the host onto the ErrHost* sentinels so callers can match with errors.Is.
*/
package sdk
