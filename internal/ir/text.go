package ir

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText returns s in Unicode Normalization Form C, the form every
// string has once persisted by MarshalCanonical. Records are normalized
// before they are indexed so lookups match across a reload.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

type textField struct {
	name  string
	value string
}

// checkUTF8 rejects text that could not be persisted unchanged.
func checkUTF8(fields ...textField) error {
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%s is not valid UTF-8", f.name)
		}
	}
	return nil
}

// Normalized returns a copy of e with its free-text fields in NFC.
func (e PathEntry) Normalized() PathEntry {
	e = e.clone()
	e.Location = NormalizeText(e.Location)
	e.Temperature = NormalizeText(e.Temperature)
	if e.Buyer != nil {
		e.Buyer.Name = NormalizeText(e.Buyer.Name)
		e.Buyer.ID = NormalizeText(e.Buyer.ID)
	}
	return e
}

// Normalized returns a deep copy of p with every entry normalized.
func (p Path) Normalized() Path {
	out := make(Path, len(p))
	for i, e := range p {
		out[i] = e.Normalized()
	}
	return out
}

// Normalized returns a deep copy of d with its free-text fields in NFC.
func (d Drug) Normalized() Drug {
	d.ID = NormalizeText(d.ID)
	d.Name = NormalizeText(d.Name)
	d.Description = NormalizeText(d.Description)
	d.SerialNumber = NormalizeText(d.SerialNumber)
	d.BatchNumber = NormalizeText(d.BatchNumber)
	d.Path = d.Path.Normalized()
	return d
}

// Normalized returns a deep copy of s with its free-text fields in NFC.
func (s Shipment) Normalized() Shipment {
	s.ID = NormalizeText(s.ID)
	s.DrugID = NormalizeText(s.DrugID)
	s.Destination = NormalizeText(s.Destination)
	s.Temperature = NormalizeText(s.Temperature)
	s.Path = s.Path.Normalized()
	return s
}

// Normalized returns a copy of s with its free-text fields in NFC.
func (s Sale) Normalized() Sale {
	s.ID = NormalizeText(s.ID)
	s.DrugID = NormalizeText(s.DrugID)
	s.CustomerName = NormalizeText(s.CustomerName)
	s.CustomerID = NormalizeText(s.CustomerID)
	return s
}
