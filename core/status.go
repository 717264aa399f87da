package core

import "github.com/huangsam/pagepulse/schema"

// Metric names accepted by MetricStatus.
const (
	MetricLCP         = "lcp"
	MetricINP         = "inp"
	MetricCLS         = "cls"
	MetricPerformance = "performance"
)

// threshold holds the good and poor boundaries of a metric.
type threshold struct {
	good, poor     float64
	higherIsBetter bool
}

var thresholds = map[string]threshold{
	MetricLCP:         {good: 2500, poor: 4000},
	MetricINP:         {good: 200, poor: 500},
	MetricCLS:         {good: 0.1, poor: 0.25},
	MetricPerformance: {good: 90, poor: 50, higherIsBetter: true},
}

// MetricStatus labels a metric value as good, needs improvement or poor.
// A nil value or an unknown metric is NA.
func MetricStatus(metric string, value *float64) schema.MetricStatus {
	th, ok := thresholds[metric]
	if !ok || value == nil {
		return schema.StatusNA
	}
	v := *value
	if th.higherIsBetter {
		switch {
		case v >= th.good:
			return schema.StatusGood
		case v >= th.poor:
			return schema.StatusNeedsImprovement
		default:
			return schema.StatusPoor
		}
	}
	switch {
	case v <= th.good:
		return schema.StatusGood
	case v <= th.poor:
		return schema.StatusNeedsImprovement
	default:
		return schema.StatusPoor
	}
}

// ScoreStatus labels an integer category score.
func ScoreStatus(score *int) schema.MetricStatus {
	if score == nil {
		return schema.StatusNA
	}
	v := float64(*score)
	return MetricStatus(MetricPerformance, &v)
}
