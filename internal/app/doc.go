// Package app provides the application service layer.
//
// Orchestrates use cases: analyzing text for a dashboard session, validating
// uploads, resetting a session and exporting its recent results. Sits between
// HTTP handlers and the session repository. Depends on domain interfaces, not
// concrete implementations.
package app
