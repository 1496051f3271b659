// Package api implements the HTTP handlers, request/response DTOs, and
// error-to-status mapping for the service's REST surface. Handlers stay
// thin: decode, validate, delegate to a service, respond.
package api
