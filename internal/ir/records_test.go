package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDrug() Drug {
	return Drug{
		ID:                "d-1",
		Name:              "Amoxicillin 500mg",
		SerialNumber:      "SN1",
		BatchNumber:       "B1",
		ManufacturingDate: "2024-01-01",
		ExpiryDate:        "2026-01-01",
		Status:            StatusSold,
		Path: Path{
			NewDistributionEntry("DC-A", "2024-01-02", "5"),
			NewDeliveryEntry("DC-A", "2024-01-05", "5"),
			NewSaleEntry("2024-02-01", "5°C", Buyer{Name: "Alice", ID: "C1"}),
		},
	}
}

func TestMarshalDrugs_FieldNames(t *testing.T) {
	d := sampleDrug()
	d.Path = d.Path[:1]
	d.Status = StatusInTransit

	data, err := MarshalDrugs([]Drug{d})
	require.NoError(t, err)

	expected := `[{"batchNumber":"B1","expiryDate":"2026-01-01","id":"d-1","manufacturingDate":"2024-01-01",` +
		`"name":"Amoxicillin 500mg","path":[{"date":"2024-01-02","location":"Distribution Center - DC-A",` +
		`"stage":"Distribution","temperature":"5°C"}],"serialNumber":"SN1","status":"InTransit"}]`
	assert.Equal(t, expected, string(data))
}

func TestMarshalDrugs_EmptyCollection(t *testing.T) {
	data, err := MarshalDrugs(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestDrugs_LoadSaveByteIdentical(t *testing.T) {
	d := sampleDrug()
	d.Description = "broad-spectrum antibiotic"

	first, err := MarshalDrugs([]Drug{d})
	require.NoError(t, err)

	loaded, err := UnmarshalDrugs(first)
	require.NoError(t, err)
	second, err := MarshalDrugs(loaded)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, d, loaded[0])
}

func TestShipments_LoadSaveByteIdentical(t *testing.T) {
	s := Shipment{
		ID:               "s-1",
		DrugID:           "d-1",
		Destination:      "DC-A",
		Quantity:         100,
		Temperature:      "2.5",
		ShipmentDate:     "2024-01-01",
		ExpectedDelivery: "2024-01-04",
		Status:           ShipmentInTransit,
		Path:             Path{NewDistributionEntry("DC-A", "2024-01-01", "2.5")},
	}

	first, err := MarshalShipments([]Shipment{s})
	require.NoError(t, err)
	assert.Contains(t, string(first), `"quantity":100`)
	assert.Contains(t, string(first), `"status":"In Transit"`)

	loaded, err := UnmarshalShipments(first)
	require.NoError(t, err)
	second, err := MarshalShipments(loaded)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInventory_LoadSaveByteIdentical(t *testing.T) {
	it := InventoryItem{Drug: sampleDrug(), Quantity: 70}

	first, err := MarshalInventory([]InventoryItem{it})
	require.NoError(t, err)
	assert.Contains(t, string(first), `"customer":"Alice","customerID":"C1"`)

	loaded, err := UnmarshalInventory(first)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(70), loaded[0].Quantity)
	require.NotNil(t, loaded[0].Path[2].Buyer)
	assert.Equal(t, "Alice", loaded[0].Path[2].Buyer.Name)

	second, err := MarshalInventory(loaded)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUnmarshal_RejectsCorruptData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"object instead of array", `{"id":"d-1"}`},
		{"unknown field", `[{"id":"d-1","colour":"red"}]`},
		{"trailing data", `[] []`},
		{"bad status", `[{"id":"d-1","name":"n","serialNumber":"s","batchNumber":"b","manufacturingDate":"2024-01-01","expiryDate":"2025-01-01","status":"Lost","path":[]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalDrugs([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalInventory_RejectsNegativeQuantity(t *testing.T) {
	it := InventoryItem{Drug: sampleDrug(), Quantity: -1}
	data, err := MarshalInventory([]InventoryItem{it})
	require.NoError(t, err)

	_, err = UnmarshalInventory(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
}
