package features

import (
	"fmt"
	"slices"

	"github.com/huangsam/tsfeat/schema"
)

// Catalog is an ordered, immutable bundle of capabilities applied together.
// A Catalog is itself a Capability.
type Catalog struct {
	name string
	caps []Capability
}

// NewCatalog builds a catalog that applies caps in the given order.
func NewCatalog(name string, caps ...Capability) *Catalog {
	return &Catalog{name: name, caps: slices.Clone(caps)}
}

// Name returns the catalog name.
func (c *Catalog) Name() string {
	return c.name
}

// Len returns the number of capabilities in the catalog.
func (c *Catalog) Len() int {
	return len(c.caps)
}

// Apply runs every capability in order and concatenates their results.
func (c *Catalog) Apply(series []float64) []schema.FeatureResult {
	results := make([]schema.FeatureResult, 0, len(c.caps))
	for _, capability := range c.caps {
		results = append(results, capability.Apply(series)...)
	}
	return results
}

// Describe lists the emitted features in application order. Capabilities
// without a description are probed with an empty series for their names.
func (c *Catalog) Describe() []schema.FeatureInfo {
	var infos []schema.FeatureInfo
	for _, capability := range c.caps {
		if d, ok := capability.(Describer); ok {
			infos = append(infos, d.Describe()...)
			continue
		}
		for _, r := range capability.Apply(nil) {
			infos = append(infos, schema.FeatureInfo{Name: r.Name})
		}
	}
	return infos
}

// Names returns the emitted feature names in application order.
func (c *Catalog) Names() []string {
	infos := c.Describe()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

var (
	minimalCatalog = NewCatalog(string(schema.MinimalCatalog),
		AbsoluteMaximumFeature,
		LengthFeature,
		MaximumFeature,
		MeanFeature,
		MedianFeature,
		MinimumFeature,
		RootMeanSquareFeature,
		StandardDeviationFeature,
		SumValuesFeature,
		VarianceFeature,
	)
	extendedCatalog = NewCatalog(string(schema.ExtendedCatalog),
		minimalCatalog,
		AbsoluteEnergyFeature,
		AbsoluteSumOfChangesFeature,
	)
)

// Minimal returns the catalog of the ten basic descriptors.
func Minimal() *Catalog {
	return minimalCatalog
}

// Extended returns the minimal catalog plus energy and change descriptors.
func Extended() *Catalog {
	return extendedCatalog
}

// Lookup resolves a catalog by name.
func Lookup(name schema.CatalogName) (*Catalog, error) {
	switch name {
	case schema.MinimalCatalog, "":
		return minimalCatalog, nil
	case schema.ExtendedCatalog:
		return extendedCatalog, nil
	default:
		return nil, fmt.Errorf("unknown catalog %q", name)
	}
}
