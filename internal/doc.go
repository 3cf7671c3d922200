// Package internal documents the campus events server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem responses, and routing
// - domain: event lifecycle, expiration sweep, users, and ids
// - storage: Postgres repositories and schema migrations
// - jobs: background workers and the periodic sweep
// - images: uploaded poster storage
// - auth, audit, config, metrics: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
