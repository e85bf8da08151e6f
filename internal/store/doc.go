// Package store persists knowledge-base entries in SQLite.
//
// The store is the collaborator that owns entry data; the search engine only
// ever sees read-only snapshots from ListEntries. Usage feedback flows back
// through RecordUsage, which bumps the usage counter together with the
// success or failure counter.
//
// # Drivers
//
// Two SQLite drivers are supported through build tags:
//
//	CGO_ENABLED=0 go build ./...                     // modernc.org/sqlite
//	CGO_ENABLED=1 go build -tags "cgo_sqlite" ./...  // mattn/go-sqlite3
//
// The pure Go driver requires no C toolchain and is the default for
// development; the cgo driver is faster for large knowledge bases.
package store
