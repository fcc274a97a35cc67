package experiments

import "math"

// Analyze compares every variant with the control using a two-proportion
// z-test. A variant wins when it beats the control with confidence at or above
// the experiment's threshold; among several winners the highest conversion
// rate is chosen. The control wins when every other variant is significantly
// worse. No winner is picked until every variant reaches MinSampleSize
// impressions.
func Analyze(experiment Experiment) Analysis {
	threshold := experiment.ConfidenceThreshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	minSample := experiment.MinSampleSize
	if minSample <= 0 {
		minSample = DefaultMinSampleSize
	}

	analysis := Analysis{
		ExperimentID:        experiment.ID,
		ConfidenceThreshold: threshold,
		MinSampleSize:       minSample,
		Variants:            make([]VariantResult, 0, len(experiment.Variants)),
	}
	if len(experiment.Variants) < 2 {
		analysis.Reason = ReasonInsufficientData
		return analysis
	}

	control := experiment.Variants[0]
	controlRate := rate(control)
	enoughData := true

	for i, variant := range experiment.Variants {
		result := VariantResult{
			Name:           variant.Name,
			Control:        i == 0,
			Impressions:    variant.Impressions,
			Conversions:    variant.Conversions,
			ConversionRate: rate(variant),
		}
		if variant.Impressions < int64(minSample) {
			enoughData = false
		}
		if i > 0 {
			if controlRate > 0 {
				result.Lift = (result.ConversionRate - controlRate) / controlRate
			}
			result.ZScore = zScore(control, variant)
			result.Confidence = normalCDF(math.Abs(result.ZScore))
		}
		analysis.Variants = append(analysis.Variants, result)
	}

	if !enoughData {
		analysis.Reason = ReasonInsufficientData
		return analysis
	}

	best := -1
	allWorse := true
	for i, result := range analysis.Variants {
		if i == 0 {
			continue
		}
		significant := result.Confidence >= threshold
		if !significant || result.ConversionRate >= controlRate {
			allWorse = false
		}
		if significant && result.ConversionRate > controlRate {
			if best < 0 || result.ConversionRate > analysis.Variants[best].ConversionRate {
				best = i
			}
		}
	}

	switch {
	case best > 0:
		analysis.Winner = analysis.Variants[best].Name
	case allWorse:
		analysis.Winner = control.Name
	default:
		analysis.Reason = ReasonNoSignificantDifference
	}
	return analysis
}

func rate(variant Variant) float64 {
	if variant.Impressions <= 0 {
		return 0
	}
	return float64(variant.Conversions) / float64(variant.Impressions)
}

// zScore is the pooled two-proportion z statistic of b against a.
func zScore(a, b Variant) float64 {
	if a.Impressions <= 0 || b.Impressions <= 0 {
		return 0
	}
	n1, n2 := float64(a.Impressions), float64(b.Impressions)
	pooled := float64(a.Conversions+b.Conversions) / (n1 + n2)
	se := math.Sqrt(pooled * (1 - pooled) * (1/n1 + 1/n2))
	if se == 0 {
		return 0
	}
	return (rate(b) - rate(a)) / se
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
