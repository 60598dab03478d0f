// Package ir defines the provenance record model shared by every other
// package: drugs, shipments, inventory rows, sales and the path entries that
// make up a custody history.
//
// This package contains types, validation and encoding only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Dates are ISO calendar dates (YYYY-MM-DD) held as strings
//   - No float types: quantities are int64, shipment temperatures are the
//     decimal strings entered by the distributor
//   - Persisted field names are camelCase and match the legacy collections
//   - Every collection is encoded with MarshalCanonical so load followed by
//     save is byte-identical
package ir
