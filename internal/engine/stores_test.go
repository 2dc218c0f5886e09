package engine

import (
	"context"
	"fmt"
)

// fakeCatalog is an in-memory CatalogStore for engine tests.
type fakeCatalog struct {
	components map[string]*Component
	boms       map[string]*BOMSnapshot // keyed by product id
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		components: make(map[string]*Component),
		boms:       make(map[string]*BOMSnapshot),
	}
}

func (f *fakeCatalog) addProduct(id string, cost float64) *Component {
	c := &Component{ID: id, SKU: "SKU-" + id, Name: "Product " + id, Unit: "pcs", StandardCost: cost}
	f.components[id] = c
	return c
}

func (f *fakeCatalog) addBOM(productID string, lines ...LineSnapshot) *BOMSnapshot {
	bom := &BOMSnapshot{
		ID:        "bom-" + productID,
		ProductID: productID,
		Code:      "BOM-" + productID,
		Version:   1,
		Lines:     lines,
	}
	f.boms[productID] = bom
	if c, ok := f.components[productID]; ok {
		c.HasBOM = true
	}
	return bom
}

func (f *fakeCatalog) Component(ctx context.Context, id string) (*Component, error) {
	c, ok := f.components[id]
	if !ok {
		return nil, &NotFoundError{Kind: "product", ID: id}
	}
	return c, nil
}

func (f *fakeCatalog) ActiveBOM(ctx context.Context, productID string) (*BOMSnapshot, error) {
	b, ok := f.boms[productID]
	if !ok {
		return nil, &NotFoundError{Kind: "bom", ID: productID}
	}
	return b, nil
}

// fakeAvailability is an in-memory AvailabilityStore; ids in fail error out
// to exercise the conservative zero-availability path.
type fakeAvailability struct {
	avail map[string]float64
	fail  map[string]bool
}

func newFakeAvailability() *fakeAvailability {
	return &fakeAvailability{avail: make(map[string]float64), fail: make(map[string]bool)}
}

func (f *fakeAvailability) Available(ctx context.Context, productID, location string) (float64, error) {
	if f.fail[productID] {
		return 0, fmt.Errorf("availability source unreachable for %s", productID)
	}
	return f.avail[productID], nil
}

func line(id, componentID string, seq int, qty, scrap float64) LineSnapshot {
	return LineSnapshot{ID: id, ComponentID: componentID, Sequence: seq, Quantity: qty, ScrapFactor: scrap}
}
