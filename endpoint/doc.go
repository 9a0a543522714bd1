// Package endpoint decomposes request URLs into scheme, host, port, path
// and query, applying the http/https default ports.
package endpoint
