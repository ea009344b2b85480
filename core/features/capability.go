package features

import "github.com/huangsam/tsfeat/schema"

// Capability computes zero or more named scalar results from a numeric series.
// Implementations must not mutate the series and must be safe for concurrent use.
type Capability interface {
	Apply(series []float64) []schema.FeatureResult
}

// Describer is implemented by capabilities that can list the features they emit.
type Describer interface {
	Describe() []schema.FeatureInfo
}

// Canonical feature names.
const (
	NameLength               = "length"
	NameSumValues            = "sum_values"
	NameMean                 = "mean"
	NameMedian               = "median"
	NameVariance             = "variance"
	NameStandardDeviation    = "standard_deviation"
	NameMinimum              = "minimum"
	NameMaximum              = "maximum"
	NameAbsoluteMaximum      = "absolute_maximum"
	NameRootMeanSquare       = "root_mean_square"
	NameAbsoluteEnergy       = "absolute_energy"
	NameAbsoluteSumOfChanges = "absolute_sum_of_changes"
)

// scalarFeature is a capability producing exactly one named result.
type scalarFeature struct {
	name        string
	description string
	fn          func([]float64) float64
}

// NewScalar wraps a pure function as a single-result capability.
func NewScalar(name, description string, fn func([]float64) float64) Capability {
	return scalarFeature{name: name, description: description, fn: fn}
}

// Apply implements Capability.
func (f scalarFeature) Apply(series []float64) []schema.FeatureResult {
	return []schema.FeatureResult{{Name: f.name, Value: f.fn(series)}}
}

// Describe implements Describer.
func (f scalarFeature) Describe() []schema.FeatureInfo {
	return []schema.FeatureInfo{{Name: f.name, Description: f.description}}
}

// Shared capability values. They hold no state.
var (
	LengthFeature               = NewScalar(NameLength, "Number of observations (0 when empty)", Length)
	SumValuesFeature            = NewScalar(NameSumValues, "Sum of observations (0 when empty)", SumValues)
	MeanFeature                 = NewScalar(NameMean, "Arithmetic mean", Mean)
	MedianFeature               = NewScalar(NameMedian, "Middle order statistic, averaged on even counts", Median)
	VarianceFeature             = NewScalar(NameVariance, "Population variance (divisor n)", Variance)
	StandardDeviationFeature    = NewScalar(NameStandardDeviation, "Square root of the population variance", StandardDeviation)
	MinimumFeature              = NewScalar(NameMinimum, "Smallest observation", Minimum)
	MaximumFeature              = NewScalar(NameMaximum, "Largest observation", Maximum)
	AbsoluteMaximumFeature      = NewScalar(NameAbsoluteMaximum, "Largest absolute value", AbsoluteMaximum)
	RootMeanSquareFeature       = NewScalar(NameRootMeanSquare, "Square root of the mean of squares", RootMeanSquare)
	AbsoluteEnergyFeature       = NewScalar(NameAbsoluteEnergy, "Sum of squares (0 when empty)", AbsoluteEnergy)
	AbsoluteSumOfChangesFeature = NewScalar(NameAbsoluteSumOfChanges, "Sum of absolute consecutive differences (0 when shorter than two)", AbsoluteSumOfChanges)
)
