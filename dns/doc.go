/*
Package dns resolves host names for httpcall requests.

Resolve returns IPv4 literals unchanged. Other names are looked up through
the host "dns" capability (function "lookup", payload is the host name,
response is the address). An optional read-only Cache, typically the kv
capability, is consulted first. A failed lookup is logged at error level and
returned wrapped in ErrResolution; there are no retries.
*/
package dns
