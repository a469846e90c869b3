// Package indexapi provides the driven.IndexClient adapter for the remote
// document indexing service's HTTP API.
//
// All endpoints live under "<base URL>/api". Requests carry no
// credentials and are never retried; every call is bounded by the
// configured timeout and paced by a client-side rate limiter.
package indexapi
