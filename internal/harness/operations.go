package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/roach88/rxtrace/internal/ir"
	"github.com/roach88/rxtrace/internal/ledger"
	"github.com/roach88/rxtrace/internal/store"
)

// OpVerifyDrug names the read-only verification step.
const OpVerifyDrug = "verify_drug"

// Outcome names used in expect clauses and the trace.
const (
	CaseSuccess               = "Success"
	CaseNotFound              = "NotFound"
	CaseInvalidInput          = "InvalidInput"
	CaseDuplicate             = "Duplicate"
	CaseInvalidTransition     = "InvalidTransition"
	CaseInsufficientInventory = "InsufficientInventory"
	CaseMalformedPath         = "MalformedPath"
	CasePersistenceError      = "PersistenceError"
	CaseError                 = "Error"
)

// operationArgs lists the accepted args per operation.
var operationArgs = map[string][]string{
	ledger.OpAddDrug:        {"id", "name", "description", "serialNumber", "batchNumber", "manufacturingDate", "expiryDate"},
	ledger.OpAddShipment:    {"id", "drugId", "destination", "quantity", "temperature", "shipmentDate", "expectedDelivery"},
	ledger.OpUpdateShipment: {"shipmentId", "status"},
	ledger.OpRecordSale:     {"id", "drugId", "quantity", "customerName", "customerID", "date"},
	OpVerifyDrug:            {"serialNumber", "batchNumber"},
}

func isOperation(name string) bool {
	_, ok := operationArgs[name]
	return ok
}

// outcome classifies an operation error into an expect case.
func outcome(err error) string {
	switch {
	case err == nil:
		return CaseSuccess
	case ledger.IsNotFound(err):
		return CaseNotFound
	case ledger.IsInsufficientInventory(err):
		return CaseInsufficientInventory
	case ledger.IsMalformedPath(err):
		return CaseMalformedPath
	case errors.Is(err, ledger.ErrInvalidInput):
		return CaseInvalidInput
	case errors.Is(err, ledger.ErrDuplicate):
		return CaseDuplicate
	case errors.Is(err, ledger.ErrInvalidTransition):
		return CaseInvalidTransition
	case store.IsPersistenceError(err):
		return CasePersistenceError
	default:
		return CaseError
	}
}

// execute runs one operation and returns its canonical result.
func (h *Harness) execute(ctx context.Context, op string, args map[string]interface{}) (map[string]any, error) {
	a, err := newArgReader(op, args)
	if err != nil {
		return nil, err
	}

	switch op {
	case ledger.OpAddDrug:
		d := ir.Drug{
			ID:                a.str("id"),
			Name:              a.str("name"),
			Description:       a.str("description"),
			SerialNumber:      a.str("serialNumber"),
			BatchNumber:       a.str("batchNumber"),
			ManufacturingDate: a.str("manufacturingDate"),
			ExpiryDate:        a.str("expiryDate"),
		}
		if a.err != nil {
			return nil, a.err
		}
		d, err := h.ledger.AddDrug(ctx, d)
		if err != nil {
			return nil, err
		}
		return d.Canonical(), nil

	case ledger.OpAddShipment:
		s := ir.Shipment{
			ID:               a.str("id"),
			DrugID:           a.str("drugId"),
			Destination:      a.str("destination"),
			Quantity:         a.int("quantity"),
			Temperature:      a.str("temperature"),
			ShipmentDate:     a.str("shipmentDate"),
			ExpectedDelivery: a.str("expectedDelivery"),
		}
		if a.err != nil {
			return nil, a.err
		}
		s, err := h.ledger.AddShipment(ctx, s)
		if err != nil {
			return nil, err
		}
		return s.Canonical(), nil

	case ledger.OpUpdateShipment:
		id, status := a.str("shipmentId"), a.str("status")
		if a.err != nil {
			return nil, a.err
		}
		s, err := h.ledger.UpdateShipmentStatus(ctx, id, ir.ShipmentStatus(status))
		if err != nil {
			return nil, err
		}
		return s.Canonical(), nil

	case ledger.OpRecordSale:
		sale := ir.Sale{
			ID:           a.str("id"),
			DrugID:       a.str("drugId"),
			Quantity:     a.int("quantity"),
			CustomerName: a.str("customerName"),
			CustomerID:   a.str("customerID"),
			Date:         a.str("date"),
		}
		if a.err != nil {
			return nil, a.err
		}
		item, err := h.ledger.RecordSale(ctx, sale)
		if err != nil {
			return nil, err
		}
		return item.Canonical(), nil

	case OpVerifyDrug:
		serial, batch := a.str("serialNumber"), a.str("batchNumber")
		if a.err != nil {
			return nil, a.err
		}
		res, err := h.resolver.VerifyDrug(serial, batch)
		if err != nil {
			return nil, err
		}
		if !res.Success {
			return nil, &ledger.NotFoundError{Kind: "drug", ID: serial + "/" + batch}
		}
		v := res.Drug
		m := map[string]any{
			"id":                v.ID,
			"currentStatus":     string(v.CurrentStatus),
			"lastKnownLocation": v.LastKnownLocation,
			"source":            v.Source,
		}
		if v.ShipmentDetails != nil {
			m["shipmentId"] = v.ShipmentDetails.ID
		}
		if v.Quantity != nil {
			m["quantity"] = *v.Quantity
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown operation %q", op)
}

// argReader pulls typed fields out of a YAML arg map, keeping the first
// conversion error.
type argReader struct {
	op   string
	args map[string]interface{}
	err  error
}

func newArgReader(op string, args map[string]interface{}) (*argReader, error) {
	allowed := operationArgs[op]
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !slices.Contains(allowed, k) {
			return nil, fmt.Errorf("%s: unknown arg %q", op, k)
		}
	}
	return &argReader{op: op, args: args}, nil
}

func (a *argReader) str(key string) string {
	switch v := a.args[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return ir.FormatDate(v)
	default:
		a.fail(fmt.Errorf("%s: arg %q: want string, got %T", a.op, key, v))
		return ""
	}
}

func (a *argReader) int(key string) int64 {
	switch v := a.args[key].(type) {
	case nil:
		return 0
	case int:
		return int64(v)
	default:
		a.fail(fmt.Errorf("%s: arg %q: want integer, got %T", a.op, key, v))
		return 0
	}
}

func (a *argReader) fail(err error) {
	if a.err == nil {
		a.err = err
	}
}
