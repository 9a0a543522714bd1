/*
Package request encodes httpcall request content.

A Payload is one of Raw (sent as-is), Form (URL-encoded key/value pairs in
sorted key order) or Value (anything else, sent via fmt.Sprint). BuildHeaders
applies the per-method header defaults and Encode produces the Encoded
request handed to the transport.

GET requests carry their content in the URI as uri + "&" + content. With a
URL that has no query this yields "/path?&a=1", and with an empty payload a
trailing "&". Callers rely on this exact shape, so it is kept.
*/
package request
