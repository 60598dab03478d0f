package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathAppend_DoesNotAliasReceiver(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = NewDistributionEntry("DC-A", "2024-01-01", "5")

	a := base.Append(NewDeliveryEntry("DC-A", "2024-01-03", "5"))
	b := base.Append(NewDeliveryEntry("DC-B", "2024-01-04", "5"))

	assert.Len(t, base, 1)
	assert.Equal(t, "DC-A", a[1].Location)
	assert.Equal(t, "DC-B", b[1].Location)
}

func TestPathClone_CopiesBuyer(t *testing.T) {
	p := Path{NewSaleEntry("2024-02-01", "5°C", Buyer{Name: "Alice", ID: "C1"})}
	c := p.Clone()
	c[0].Buyer.Name = "Mallory"

	assert.Equal(t, "Alice", p[0].Buyer.Name)
}

func TestPathHasPrefix(t *testing.T) {
	dist := NewDistributionEntry("DC-A", "2024-01-01", "5")
	del := NewDeliveryEntry("DC-A", "2024-01-03", "5")
	p := Path{dist, del}

	assert.True(t, p.HasPrefix(nil))
	assert.True(t, p.HasPrefix(Path{dist}))
	assert.True(t, p.HasPrefix(p))
	assert.False(t, p.HasPrefix(Path{del}))
	assert.False(t, Path{dist}.HasPrefix(p))
}

func TestPathLast(t *testing.T) {
	_, ok := Path{}.Last()
	assert.False(t, ok)

	e, ok := Path{NewDistributionEntry("DC-A", "2024-01-01", "5")}.Last()
	require.True(t, ok)
	assert.Equal(t, "Distribution Center - DC-A", e.Location)
}

func TestEntryConstructors(t *testing.T) {
	dist := NewDistributionEntry("DC-A", "2024-01-01", "5")
	assert.Equal(t, StageDistribution, dist.Stage)
	assert.Equal(t, "Distribution Center - DC-A", dist.Location)
	assert.Equal(t, "5°C", dist.Temperature)
	assert.Nil(t, dist.Buyer)

	del := NewDeliveryEntry("Pharmacy 12", "2024-01-03", " 4.5 ")
	assert.Equal(t, StageDelivered, del.Stage)
	assert.Equal(t, "Pharmacy 12", del.Location)
	assert.Equal(t, "4.5°C", del.Temperature)

	sold := NewSaleEntry("2024-02-01", "4.5°C", Buyer{Name: "Alice", ID: "C1"})
	assert.Equal(t, StageSold, sold.Stage)
	assert.Equal(t, RetailLocation, sold.Location)
	require.NotNil(t, sold.Buyer)
	assert.Equal(t, "C1", sold.Buyer.ID)
}

func TestPathEntryValidate_VariantRules(t *testing.T) {
	ok := NewSaleEntry("2024-02-01", "5°C", Buyer{Name: "Alice", ID: "C1"})
	require.NoError(t, ok.Validate())

	noBuyer := ok
	noBuyer.Buyer = nil
	assert.Error(t, noBuyer.Validate())

	buyerOnDelivery := NewDeliveryEntry("DC-A", "2024-01-03", "5")
	buyerOnDelivery.Buyer = &Buyer{Name: "Alice"}
	assert.Error(t, buyerOnDelivery.Validate())

	badStage := NewDeliveryEntry("DC-A", "2024-01-03", "5")
	badStage.Stage = "Teleported"
	assert.Error(t, badStage.Validate())

	badTemp := NewDeliveryEntry("DC-A", "2024-01-03", "5")
	badTemp.Temperature = "5"
	assert.Error(t, badTemp.Validate())
}

func TestDrugValidateIdentity(t *testing.T) {
	d := Drug{Name: "n", SerialNumber: "s", BatchNumber: "b", ManufacturingDate: "2024-01-01", ExpiryDate: "2025-01-01"}
	require.NoError(t, d.ValidateIdentity())

	missing := d
	missing.SerialNumber = " "
	assert.ErrorContains(t, missing.ValidateIdentity(), "serialNumber")

	backwards := d
	backwards.ExpiryDate = "2023-01-01"
	assert.ErrorContains(t, backwards.ValidateIdentity(), "before")

	badDate := d
	badDate.ManufacturingDate = "01/01/2024"
	assert.ErrorContains(t, badDate.ValidateIdentity(), "manufacturingDate")
}

func TestShipmentValidateRequest(t *testing.T) {
	s := Shipment{DrugID: "d-1", Destination: "DC-A", Quantity: 10, Temperature: "5", ShipmentDate: "2024-01-01"}
	require.NoError(t, s.ValidateRequest())

	zero := s
	zero.Quantity = 0
	assert.Error(t, zero.ValidateRequest())

	warm := s
	warm.Temperature = "warm"
	assert.ErrorContains(t, warm.ValidateRequest(), "temperature")
}

func TestSaleValidate(t *testing.T) {
	s := Sale{DrugID: "d-1", Quantity: 1, CustomerName: "Alice", CustomerID: "C1", Date: "2024-02-01"}
	require.NoError(t, s.Validate())

	anon := s
	anon.CustomerID = ""
	assert.ErrorContains(t, anon.Validate(), "customerID")
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusAtRetailer.Valid())
	assert.False(t, DrugStatus("In Transit").Valid())
	assert.True(t, ShipmentDelivered.Valid())
	assert.False(t, ShipmentStatus("Lost").Valid())
	assert.True(t, StageSold.Valid())
}
