/*
Package hostmock provides a pretend waPC host for tests.

Use it when you want to check exactly what a component sends across the host
boundary (namespace, capability, function, payload) without a running Tarmac
host. A single httpcall request touches several capabilities (dns, httpclient,
logging, metrics), so the package also offers a Router that dispatches each
call to a per-capability Mock.

Quick start

	m, _ := hostmock.New(hostmock.Config{
	  ExpectedNamespace:  "tarmac",
	  ExpectedCapability: "dns",
	  ExpectedFunction:   "lookup",
	  Response:           func() []byte { return []byte("93.184.216.34") },
	})

	r := hostmock.NewRouter()
	r.Handle("dns", "lookup", hostmock.Config{Response: func() []byte { return []byte("10.0.0.1") }})
	r.Handle("logging", "", hostmock.Config{})

Behavior

  - If Fail is true and Error is set, HostCall returns that error.
  - If Fail is true and Error is nil, HostCall returns ErrOperationFailed.
  - Otherwise HostCall enforces the expectations that are set (blank fields are
    wildcards) and runs PayloadValidator. Response, when set, supplies the
    returned bytes.
  - Every call is recorded; Calls returns a snapshot. Mock and Router are safe
    for concurrent use, which matters for deferred requests.
*/
package hostmock
