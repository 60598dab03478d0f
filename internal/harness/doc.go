// Package harness runs YAML conformance scenarios against the ledger.
//
// A scenario drives a fresh in-memory ledger through a sequence of
// operations, checks each outcome, and asserts on the recorded trace and the
// final drugs, shipments and inventory collections.
//
// # Scenario Format
//
//	name: oversell_refused
//	description: "What this scenario validates"
//	today: "2024-01-15"
//	setup:
//	  - action: add_drug
//	    args: { id: d1, name: Aspirin, serialNumber: SN1, ... }
//	flow:
//	  - invoke: record_sale
//	    args: { drugId: d1, quantity: 200, ... }
//	    expect:
//	      case: InsufficientInventory
//	assertions:
//	  - type: trace_count
//	    action: record_sale
//	    count: 1
//	  - type: final_state
//	    collection: inventory
//	    where: { id: d1 }
//	    expect: { quantity: 70 }
//
// Operations are add_drug, add_shipment, update_shipment_status,
// record_sale and verify_drug. Args use the collection field names. Dates
// and temperatures should be quoted so YAML keeps them as strings.
//
// # Outcome Cases
//
// Each completion is classified as Success, NotFound, InvalidInput,
// Duplicate, InvalidTransition, InsufficientInventory, MalformedPath or
// PersistenceError. A flow step without an expect clause must succeed.
//
// # Assertion Types
//
//   - trace_contains: an operation was invoked with matching args
//   - trace_order: operations were invoked in the given order
//   - trace_count: an operation was invoked exactly N times
//   - final_state: exactly one record matches where and has the expected fields
//
// # Deterministic Runs
//
// Generated ids come from a sequence ("id-1", "id-2", ...), the calendar is
// pinned to the scenario's today, and trace events are numbered by
// testutil.DeterministicClock. The same scenario always yields the same
// snapshot, which is compared against testdata/golden/<name>.golden.
package harness
