// Package http contains the chi HTTP handlers for the attendance API.
//
// Handlers are thin: decode and validate the request, call one service
// method, and render either a JSON envelope or an RFC 7807 problem via the
// shared error handler. Service sentinel errors are mapped to API errors at
// this boundary; everything else falls through to the generic problem
// mapping.
package http
