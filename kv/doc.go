/*
Package kv provides read access to the Tarmac host key/value store.

httpcall only ever reads from the store: the DNS resolver consults it as a
host name to address cache that something else populates. Get and Keys send
protobuf payloads to the "kvstore" capability; a 404 status maps to
ErrKeyNotFound and other failures to the sdk ErrHost* sentinels.
*/
package kv
