package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalized_MatchesPersistedForm(t *testing.T) {
	d := Drug{
		ID:                "d1",
		Name:              "Cafe\u0301 tablets",
		SerialNumber:      "SN-e\u0301",
		BatchNumber:       "B1",
		ManufacturingDate: "2024-01-01",
		ExpiryDate:        "2025-01-01",
		Status:            StatusSold,
		Path:              Path{NewSaleEntry("2024-02-01", "5°C", Buyer{Name: "Zoe\u0308", ID: "C1"})},
	}

	n := d.Normalized()
	assert.Equal(t, "Caf\u00e9 tablets", n.Name)
	assert.Equal(t, "SN-\u00e9", n.SerialNumber)
	assert.Equal(t, "Zo\u00eb", n.Path[0].Buyer.Name)
	assert.Equal(t, "Zoe\u0308", d.Path[0].Buyer.Name, "receiver is not modified")

	data, err := MarshalDrugs([]Drug{d})
	require.NoError(t, err)
	back, err := UnmarshalDrugs(data)
	require.NoError(t, err)
	assert.Equal(t, []Drug{n}, back)
}

func TestNormalized_ShipmentAndSale(t *testing.T) {
	s := Shipment{Destination: "Pharmacie Ce\u0301ntrale", Path: Path{}}.Normalized()
	assert.Equal(t, "Pharmacie C\u00e9ntrale", s.Destination)

	sale := Sale{CustomerName: "Rene\u0301"}.Normalized()
	assert.Equal(t, "Ren\u00e9", sale.CustomerName)
}

func TestValidate_RejectsInvalidUTF8(t *testing.T) {
	d := Drug{Name: "n", SerialNumber: "bad\xff", BatchNumber: "b", ManufacturingDate: "2024-01-01", ExpiryDate: "2025-01-01"}
	assert.ErrorContains(t, d.ValidateIdentity(), "serialNumber is not valid UTF-8")

	s := Shipment{DrugID: "d-1", Destination: "DC-\xfe", Quantity: 1, Temperature: "5", ShipmentDate: "2024-01-01"}
	assert.ErrorContains(t, s.ValidateRequest(), "destination is not valid UTF-8")

	sale := Sale{DrugID: "d-1", Quantity: 1, CustomerName: "A", CustomerID: "\xc3", Date: "2024-02-01"}
	assert.ErrorContains(t, sale.Validate(), "customerID is not valid UTF-8")

	entry := NewDeliveryEntry("DC-\xfe", "2024-01-03", "5")
	assert.ErrorContains(t, entry.Validate(), "location is not valid UTF-8")
}
