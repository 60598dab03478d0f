package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire shapes. Field names are the collection field names of the legacy
// dashboard so existing exports decode unchanged.

type pathEntryJSON struct {
	Stage       Stage  `json:"stage"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Temperature string `json:"temperature"`
	Customer    string `json:"customer,omitempty"`
	CustomerID  string `json:"customerID,omitempty"`
}

type drugJSON struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	SerialNumber      string          `json:"serialNumber"`
	BatchNumber       string          `json:"batchNumber"`
	ManufacturingDate string          `json:"manufacturingDate"`
	ExpiryDate        string          `json:"expiryDate"`
	Status            DrugStatus      `json:"status"`
	Path              []pathEntryJSON `json:"path"`
}

type shipmentJSON struct {
	ID               string          `json:"id"`
	DrugID           string          `json:"drugId"`
	Destination      string          `json:"destination"`
	Quantity         int64           `json:"quantity"`
	Temperature      string          `json:"temperature"`
	ShipmentDate     string          `json:"shipmentDate"`
	ExpectedDelivery string          `json:"expectedDelivery,omitempty"`
	Status           ShipmentStatus  `json:"status"`
	Path             []pathEntryJSON `json:"path"`
}

type inventoryJSON struct {
	drugJSON
	Quantity int64 `json:"quantity"`
}

func (e PathEntry) canonical() map[string]any {
	m := map[string]any{
		"stage":       string(e.Stage),
		"location":    e.Location,
		"date":        e.Date,
		"temperature": e.Temperature,
	}
	if e.Buyer != nil {
		m["customer"] = e.Buyer.Name
		m["customerID"] = e.Buyer.ID
	}
	return m
}

func (p Path) canonical() []any {
	out := make([]any, len(p))
	for i, e := range p {
		out[i] = e.canonical()
	}
	return out
}

// Canonical returns the drug as a map accepted by MarshalCanonical.
func (d Drug) Canonical() map[string]any {
	m := map[string]any{
		"id":                d.ID,
		"name":              d.Name,
		"serialNumber":      d.SerialNumber,
		"batchNumber":       d.BatchNumber,
		"manufacturingDate": d.ManufacturingDate,
		"expiryDate":        d.ExpiryDate,
		"status":            string(d.Status),
		"path":              d.Path.canonical(),
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	return m
}

// Canonical returns the shipment as a map accepted by MarshalCanonical.
func (s Shipment) Canonical() map[string]any {
	m := map[string]any{
		"id":           s.ID,
		"drugId":       s.DrugID,
		"destination":  s.Destination,
		"quantity":     s.Quantity,
		"temperature":  s.Temperature,
		"shipmentDate": s.ShipmentDate,
		"status":       string(s.Status),
		"path":         s.Path.canonical(),
	}
	if s.ExpectedDelivery != "" {
		m["expectedDelivery"] = s.ExpectedDelivery
	}
	return m
}

// Canonical returns the inventory row as a map accepted by MarshalCanonical.
func (it InventoryItem) Canonical() map[string]any {
	m := it.Drug.Canonical()
	m["quantity"] = it.Quantity
	return m
}

// Canonical returns the sale as a map accepted by MarshalCanonical.
func (s Sale) Canonical() map[string]any {
	return map[string]any{
		"id":           s.ID,
		"drugId":       s.DrugID,
		"quantity":     s.Quantity,
		"customerName": s.CustomerName,
		"customerID":   s.CustomerID,
		"date":         s.Date,
	}
}

func (w pathEntryJSON) entry() PathEntry {
	e := PathEntry{Stage: w.Stage, Location: w.Location, Date: w.Date, Temperature: w.Temperature}
	if w.Customer != "" || w.CustomerID != "" {
		e.Buyer = &Buyer{Name: w.Customer, ID: w.CustomerID}
	}
	return e
}

func pathFromJSON(ws []pathEntryJSON) Path {
	p := make(Path, len(ws))
	for i, w := range ws {
		p[i] = w.entry()
	}
	return p
}

func (w drugJSON) drug() Drug {
	return Drug{
		ID:                w.ID,
		Name:              w.Name,
		Description:       w.Description,
		SerialNumber:      w.SerialNumber,
		BatchNumber:       w.BatchNumber,
		ManufacturingDate: w.ManufacturingDate,
		ExpiryDate:        w.ExpiryDate,
		Status:            w.Status,
		Path:              pathFromJSON(w.Path),
	}
}

// MarshalDrugs encodes a drug collection as canonical JSON.
func MarshalDrugs(drugs []Drug) ([]byte, error) {
	return marshalRecords(drugs, Drug.Canonical)
}

// MarshalShipments encodes a shipment collection as canonical JSON.
func MarshalShipments(shipments []Shipment) ([]byte, error) {
	return marshalRecords(shipments, Shipment.Canonical)
}

// MarshalInventory encodes an inventory collection as canonical JSON.
func MarshalInventory(items []InventoryItem) ([]byte, error) {
	return marshalRecords(items, InventoryItem.Canonical)
}

func marshalRecords[T any](records []T, canonical func(T) map[string]any) ([]byte, error) {
	arr := make([]any, len(records))
	for i, r := range records {
		arr[i] = canonical(r)
	}
	return MarshalCanonical(arr)
}

// UnmarshalDrugs decodes and validates a drug collection.
func UnmarshalDrugs(data []byte) ([]Drug, error) {
	var ws []drugJSON
	if err := decodeStrict(data, &ws); err != nil {
		return nil, err
	}
	out := make([]Drug, len(ws))
	for i, w := range ws {
		out[i] = w.drug()
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("drugs[%d]: %w", i, err)
		}
	}
	return out, nil
}

// UnmarshalShipments decodes and validates a shipment collection.
func UnmarshalShipments(data []byte) ([]Shipment, error) {
	var ws []shipmentJSON
	if err := decodeStrict(data, &ws); err != nil {
		return nil, err
	}
	out := make([]Shipment, len(ws))
	for i, w := range ws {
		out[i] = Shipment{
			ID:               w.ID,
			DrugID:           w.DrugID,
			Destination:      w.Destination,
			Quantity:         w.Quantity,
			Temperature:      w.Temperature,
			ShipmentDate:     w.ShipmentDate,
			ExpectedDelivery: w.ExpectedDelivery,
			Status:           w.Status,
			Path:             pathFromJSON(w.Path),
		}
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("shipments[%d]: %w", i, err)
		}
	}
	return out, nil
}

// UnmarshalInventory decodes and validates an inventory collection.
func UnmarshalInventory(data []byte) ([]InventoryItem, error) {
	var ws []inventoryJSON
	if err := decodeStrict(data, &ws); err != nil {
		return nil, err
	}
	out := make([]InventoryItem, len(ws))
	for i, w := range ws {
		out[i] = InventoryItem{Drug: w.drug(), Quantity: w.Quantity}
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("inventory[%d]: %w", i, err)
		}
	}
	return out, nil
}

// decodeStrict rejects unknown fields and trailing data so that a corrupt
// blob is reported instead of silently dropping fields.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode collection: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("decode collection: trailing data")
	}
	return nil
}
