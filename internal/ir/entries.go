package ir

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for every date field.
const DateLayout = "2006-01-02"

// Location used on every Sold to Customer entry.
const RetailLocation = "Retail Store"

const distributionPrefix = "Distribution Center - "

// FormatDate renders t as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// Celsius renders a numeric temperature reading as "<number>°C".
func Celsius(reading string) string {
	return strings.TrimSpace(reading) + "°C"
}

// ValidateReading checks that a temperature reading is a plain decimal number.
func ValidateReading(reading string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(reading), 64); err != nil {
		return fmt.Errorf("invalid temperature %q: want a number", reading)
	}
	return nil
}

// NewManufacturingEntry records production at a plant. The ledger never
// appends one itself; it is the first entry of a caller-supplied shipment
// path, as built by `shipment create --origin`.
func NewManufacturingEntry(location, date, reading string) PathEntry {
	return PathEntry{Stage: StageManufacturing, Location: location, Date: date, Temperature: Celsius(reading)}
}

// NewDistributionEntry records dispatch of a shipment towards destination.
func NewDistributionEntry(destination, date, reading string) PathEntry {
	return PathEntry{
		Stage:       StageDistribution,
		Location:    distributionPrefix + destination,
		Date:        date,
		Temperature: Celsius(reading),
	}
}

// NewDeliveryEntry records arrival of a shipment at the retailer.
func NewDeliveryEntry(destination, date, reading string) PathEntry {
	return PathEntry{Stage: StageDelivered, Location: destination, Date: date, Temperature: Celsius(reading)}
}

// NewSaleEntry records a sale. The temperature is carried over verbatim from
// the previous entry since no reading is taken at the till.
func NewSaleEntry(date, temperature string, buyer Buyer) PathEntry {
	return PathEntry{
		Stage:       StageSold,
		Location:    RetailLocation,
		Date:        date,
		Temperature: temperature,
		Buyer:       &buyer,
	}
}

// Validate checks the stage tag and the stage-specific payload.
func (e PathEntry) Validate() error {
	if !e.Stage.Valid() {
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	text := []textField{{"location", e.Location}, {"temperature", e.Temperature}}
	if e.Buyer != nil {
		text = append(text, textField{"customer", e.Buyer.Name}, textField{"customerID", e.Buyer.ID})
	}
	if err := checkUTF8(text...); err != nil {
		return fmt.Errorf("%s entry: %w", e.Stage, err)
	}
	if e.Location == "" {
		return fmt.Errorf("%s entry: location is required", e.Stage)
	}
	if _, err := ParseDate(e.Date); err != nil {
		return fmt.Errorf("%s entry: %w", e.Stage, err)
	}
	if !strings.HasSuffix(e.Temperature, "°C") {
		return fmt.Errorf("%s entry: temperature %q must end in °C", e.Stage, e.Temperature)
	}
	if e.Stage == StageSold && e.Buyer == nil {
		return fmt.Errorf("%s entry: customer is required", e.Stage)
	}
	if e.Stage != StageSold && e.Buyer != nil {
		return fmt.Errorf("%s entry: customer is only allowed on %s", e.Stage, StageSold)
	}
	return nil
}

// Validate checks every entry of the path.
func (p Path) Validate() error {
	for i, e := range p {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("path[%d]: %w", i, err)
		}
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ValidateIdentity checks the fields a drug needs before registration.
// ID and status are assigned by the ledger; a supplied ID is only checked
// for valid UTF-8.
func (d Drug) ValidateIdentity() error {
	if err := checkUTF8(
		textField{"id", d.ID},
		textField{"name", d.Name},
		textField{"description", d.Description},
		textField{"serialNumber", d.SerialNumber},
		textField{"batchNumber", d.BatchNumber},
	); err != nil {
		return err
	}
	for _, f := range []textField{
		{"name", d.Name},
		{"serialNumber", d.SerialNumber},
		{"batchNumber", d.BatchNumber},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	mfg, err := ParseDate(d.ManufacturingDate)
	if err != nil {
		return fmt.Errorf("manufacturingDate: %w", err)
	}
	exp, err := ParseDate(d.ExpiryDate)
	if err != nil {
		return fmt.Errorf("expiryDate: %w", err)
	}
	if exp.Before(mfg) {
		return fmt.Errorf("expiryDate %s is before manufacturingDate %s", d.ExpiryDate, d.ManufacturingDate)
	}
	return nil
}

// Validate checks a stored drug record, including its status and path.
func (d Drug) Validate() error {
	if err := required("id", d.ID); err != nil {
		return err
	}
	if err := d.ValidateIdentity(); err != nil {
		return err
	}
	if !d.Status.Valid() {
		return fmt.Errorf("unknown status %q", d.Status)
	}
	return d.Path.Validate()
}

// ValidateRequest checks the caller-supplied fields of a new shipment.
func (s Shipment) ValidateRequest() error {
	if err := checkUTF8(
		textField{"id", s.ID},
		textField{"drugId", s.DrugID},
		textField{"destination", s.Destination},
	); err != nil {
		return err
	}
	if err := required("drugId", s.DrugID); err != nil {
		return err
	}
	if err := required("destination", s.Destination); err != nil {
		return err
	}
	if s.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", s.Quantity)
	}
	if err := ValidateReading(s.Temperature); err != nil {
		return err
	}
	if _, err := ParseDate(s.ShipmentDate); err != nil {
		return fmt.Errorf("shipmentDate: %w", err)
	}
	if s.ExpectedDelivery != "" {
		if _, err := ParseDate(s.ExpectedDelivery); err != nil {
			return fmt.Errorf("expectedDelivery: %w", err)
		}
	}
	return s.Path.Validate()
}

// Validate checks a stored shipment record.
func (s Shipment) Validate() error {
	if err := required("id", s.ID); err != nil {
		return err
	}
	if err := s.ValidateRequest(); err != nil {
		return err
	}
	if !s.Status.Valid() {
		return fmt.Errorf("unknown shipment status %q", s.Status)
	}
	return nil
}

// Validate checks a stored inventory row.
func (it InventoryItem) Validate() error {
	if err := it.Drug.Validate(); err != nil {
		return err
	}
	if it.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative, got %d", it.Quantity)
	}
	return nil
}

// Validate checks the caller-supplied fields of a sale.
func (s Sale) Validate() error {
	if err := checkUTF8(
		textField{"id", s.ID},
		textField{"drugId", s.DrugID},
		textField{"customerName", s.CustomerName},
		textField{"customerID", s.CustomerID},
	); err != nil {
		return err
	}
	if err := required("drugId", s.DrugID); err != nil {
		return err
	}
	if s.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", s.Quantity)
	}
	if err := required("customerName", s.CustomerName); err != nil {
		return err
	}
	if err := required("customerID", s.CustomerID); err != nil {
		return err
	}
	if _, err := ParseDate(s.Date); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return nil
}
