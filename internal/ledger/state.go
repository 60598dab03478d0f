package ledger

import (
	"maps"
	"slices"

	"github.com/roach88/rxtrace/internal/ir"
)

// state is one immutable-once-published version of the three collections
// and their indexes.
//
// Operations derive a new state with clone, mutate the copy, persist it
// and only then swap it in. Records are stored by value and paths are only
// ever extended through ir.Path.Append, so a shallow slice copy is enough
// to keep published states untouched.
type state struct {
	drugs     []ir.Drug
	shipments []ir.Shipment
	inventory []ir.InventoryItem

	drugByID     map[string]int
	drugByKey    map[ir.NaturalKey]int
	shipmentByID map[string]int
	shipsByDrug  map[string][]int // creation order
	invByID      map[string]int
	invByKey     map[ir.NaturalKey]int
}

func newState(drugs []ir.Drug, shipments []ir.Shipment, inventory []ir.InventoryItem) *state {
	s := &state{
		drugs:        drugs,
		shipments:    shipments,
		inventory:    inventory,
		drugByID:     make(map[string]int, len(drugs)),
		drugByKey:    make(map[ir.NaturalKey]int, len(drugs)),
		shipmentByID: make(map[string]int, len(shipments)),
		shipsByDrug:  make(map[string][]int),
		invByID:      make(map[string]int, len(inventory)),
		invByKey:     make(map[ir.NaturalKey]int, len(inventory)),
	}
	// On collisions in older data the first record wins, as a front-to-back
	// search would find it.
	for i, d := range drugs {
		if _, ok := s.drugByID[d.ID]; !ok {
			s.drugByID[d.ID] = i
		}
		if _, ok := s.drugByKey[d.Key()]; !ok {
			s.drugByKey[d.Key()] = i
		}
	}
	for i, sh := range shipments {
		if _, ok := s.shipmentByID[sh.ID]; !ok {
			s.shipmentByID[sh.ID] = i
		}
		s.shipsByDrug[sh.DrugID] = append(s.shipsByDrug[sh.DrugID], i)
	}
	for i, it := range inventory {
		if _, ok := s.invByID[it.ID]; !ok {
			s.invByID[it.ID] = i
		}
		if _, ok := s.invByKey[it.Key()]; !ok {
			s.invByKey[it.Key()] = i
		}
	}
	return s
}

func (s *state) clone() *state {
	return &state{
		drugs:        slices.Clone(s.drugs),
		shipments:    slices.Clone(s.shipments),
		inventory:    slices.Clone(s.inventory),
		drugByID:     maps.Clone(s.drugByID),
		drugByKey:    maps.Clone(s.drugByKey),
		shipmentByID: maps.Clone(s.shipmentByID),
		shipsByDrug:  maps.Clone(s.shipsByDrug),
		invByID:      maps.Clone(s.invByID),
		invByKey:     maps.Clone(s.invByKey),
	}
}

func (s *state) drug(id string) (ir.Drug, bool) {
	i, ok := s.drugByID[id]
	if !ok {
		return ir.Drug{}, false
	}
	return s.drugs[i], true
}

func (s *state) shipment(id string) (ir.Shipment, bool) {
	i, ok := s.shipmentByID[id]
	if !ok {
		return ir.Shipment{}, false
	}
	return s.shipments[i], true
}

func (s *state) inventoryItem(id string) (ir.InventoryItem, bool) {
	i, ok := s.invByID[id]
	if !ok {
		return ir.InventoryItem{}, false
	}
	return s.inventory[i], true
}

func (s *state) putDrug(d ir.Drug) {
	if i, ok := s.drugByID[d.ID]; ok {
		s.drugs[i] = d
		return
	}
	s.drugs = append(s.drugs, d)
	s.drugByID[d.ID] = len(s.drugs) - 1
	s.drugByKey[d.Key()] = len(s.drugs) - 1
}

func (s *state) putShipment(sh ir.Shipment) {
	if i, ok := s.shipmentByID[sh.ID]; ok {
		s.shipments[i] = sh
		return
	}
	s.shipments = append(s.shipments, sh)
	i := len(s.shipments) - 1
	s.shipmentByID[sh.ID] = i
	// Clip so the append never writes into a slice shared with the
	// published state.
	s.shipsByDrug[sh.DrugID] = append(slices.Clip(s.shipsByDrug[sh.DrugID]), i)
}

func (s *state) putInventory(it ir.InventoryItem) {
	if i, ok := s.invByID[it.ID]; ok {
		s.inventory[i] = it
		return
	}
	s.inventory = append(s.inventory, it)
	s.invByID[it.ID] = len(s.inventory) - 1
	if _, ok := s.invByKey[it.Key()]; !ok {
		s.invByKey[it.Key()] = len(s.inventory) - 1
	}
}
