package core

import (
	"math"

	"github.com/huangsam/pagepulse/schema"
)

// Visitor loss descriptions per LCP bucket.
const (
	LossNoData   = "No data available yet."
	LossFast     = "Your site is fast. Minimal visitor loss expected."
	LossGood     = "Good speed, but every 0.1s improvement could boost conversions by 1%."
	LossMedium   = "You are likely losing ~30-50% of impatient visitors before they even see content."
	LossCritical = "Critical Issues: High probability of 60%+ visitor abandonment."
)

// LCP bucket boundaries in milliseconds.
const (
	lcpFastMs     = 1000.0
	lcpGoodMs     = 2500.0
	lcpPoorMs     = 4000.0
	lcpCriticalMs = 6000.0
)

// DeriveImpact maps an LCP value to its business impact.
// It is a pure step function over LCP with bounce rate interpolated inside each bucket.
func DeriveImpact(lcpMs *float64) schema.BusinessImpact {
	if lcpMs == nil {
		return schema.BusinessImpact{
			BounceRate:  0,
			RevenueRisk: schema.RiskLow,
			VisitorLoss: LossNoData,
			SEOPenalty:  schema.SEOPenaltyNone,
		}
	}
	lcp := *lcpMs

	out := schema.BusinessImpact{
		RevenueRisk:  schema.RiskLow,
		VisitorLoss:  LossFast,
		SEOPenalty:   schema.SEOPenaltyNone,
		LCPAvailable: true,
	}
	bounce := 10.0

	switch {
	case lcp > lcpFastMs && lcp <= lcpGoodMs:
		bounce = 15 + (lcp-lcpFastMs)/1500*15
		out.VisitorLoss = LossGood
	case lcp > lcpGoodMs && lcp <= lcpPoorMs:
		bounce = 30 + (lcp-lcpGoodMs)/1500*30
		out.RevenueRisk = schema.RiskMedium
		out.SEOPenalty = schema.SEOPenaltyPossible
		out.VisitorLoss = LossMedium
	case lcp > lcpPoorMs:
		bounce = 60 + math.Min(40, (lcp-lcpPoorMs)/4000*30)
		out.RevenueRisk = schema.RiskHigh
		out.SEOPenalty = schema.SEOPenaltyLikely
		out.VisitorLoss = LossCritical
	}

	if lcp > lcpCriticalMs {
		out.RevenueRisk = schema.RiskCritical
	}

	out.BounceRate = int(math.Round(math.Min(100, bounce)))
	return out
}
