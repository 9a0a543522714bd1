/*
Package logging offers a client for emitting log entries from Tarmac WebAssembly
functions to the host runtime.

The Client interface has one method per level (Info, Warn, Error, Debug,
Trace). New returns a host-backed client that sends the raw message to the
"logging" capability, using the level name as the function. Messages below
Config.Level never cross the host boundary.

NewZerolog wraps a zerolog.Logger for native builds and tests, and Discard
drops everything.
*/
package logging
