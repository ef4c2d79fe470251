// Package vault stores credentials in a local SQLite database.
//
// Secrets are encrypted with a secrets.Key before they are written and only
// ever stored as tokens. The database also keeps a key check token, so a vault
// refuses to open with a key other than the one that created it.
//
// The schema is managed by golang-migrate from migrations embedded in the
// binary. Writes go through a single-connection pool whose transactions start
// IMMEDIATE; reads use a separate pool.
package vault
