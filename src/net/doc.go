// Package net implements the transports the benchmark uses to talk to the
// admission-control service of a ledger.
//
// The Client interface exposes the two calls the benchmark needs as
// asynchronous operations. Issuing a call returns immediately with a future,
// or with an error when the call cannot be started at all (the client is
// closed, or the request is malformed). The outcome of an issued call is
// collected later through the future. Every call carries a CallOption with
// its own timeout and wait-for-ready policy.
//
// There are two implementations:
//
// - GRPCClient: talks to a remote AdmissionControl gRPC service. The service
// descriptor is declared in this package and messages travel with a JSON
// codec, so no protobuf compiler is involved. The same descriptor is used by
// RegisterAdmissionControlServer to expose an AdmissionControlServer.
//
// - InmemClient: calls an AdmissionControlServer in the same process. It is
// used by tests and by the standalone mode of the benchmark, and it can
// inject faults.
package net
