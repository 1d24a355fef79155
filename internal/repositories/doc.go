// Package repositories implements SQLite persistence for server-side state.
//
// Sessions are the only persisted entity. [SessionRepository] implements [session.Store] on top of the
// sessions table created by the embedded migrations in the shared package, storing the session fields
// as a JSON document next to created/updated timestamps used for pruning.
package repositories
