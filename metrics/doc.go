/*
Package metrics provides custom metrics and request profiling through the
Tarmac host runtime.

Counter, Gauge, and Histogram handles send protobuf payloads over waPC host
calls. Emission is best-effort: Inc, Dec, and Observe never return errors.

A Profiler brackets a keyed operation with Start and End. HostProfiler turns
each finished span into a histogram observation on the host; Recorder keeps
HDR histograms in process for native builds and tests.
*/
package metrics
