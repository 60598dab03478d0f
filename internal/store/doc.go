// Package store provides SQLite-backed durable storage for the provenance
// ledger.
//
// The store keeps two things:
//   - Collections: one canonical JSON blob per named collection (drugs,
//     shipments, inventory), replaced whole on every save
//   - Events: an append-only log of committed ledger mutations, ordered by a
//     logical sequence number
//
// # Write discipline
//
// A ledger operation touches up to three collections. Commit writes all of
// them together with the operation's event in one transaction, so durable
// state never reflects half an operation.
//
// Loading a collection that was never saved returns an empty array. Loading
// a blob that does not decode into valid records is a PersistenceError.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single open connection: SQLite allows one writer
package store
