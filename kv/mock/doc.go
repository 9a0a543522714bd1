/*
Package mock provides an in-memory kv.Reader for tests.

Seed it with data, force per-key Get failures with FailGet, and inspect the
recorded operations with Calls:

	m := mock.New(mock.Config{Seed: map[string][]byte{"dns:example.com": []byte("10.0.0.1")}})
	m.FailGet("dns:broken.example", kv.ErrKeyNotFound)
*/
package mock
