package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/pagepulse/core"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
)

// impactView is the JSON shape of a run with its business impact.
type impactView struct {
	Run    *schema.Run           `json:"run"`
	Impact schema.BusinessImpact `json:"impact"`
	Status map[string]string     `json:"status"`
}

// WriteImpactResults renders a run with its derived business impact.
func WriteImpactResults(w io.Writer, run *schema.Run, impact schema.BusinessImpact, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, impactView{Run: run, Impact: impact, Status: runStatuses(run)})
		}, "Wrote JSON")
	case schema.TextOut, "":
		return writeWithFile(w, cfg.OutputFile, func(w io.Writer) error {
			return writeImpactText(w, run, impact, cfg)
		}, "Wrote report")
	default:
		return fmt.Errorf("output %q is not supported for impact", cfg.Output)
	}
}

// runStatuses labels the core vitals of a run.
func runStatuses(run *schema.Run) map[string]string {
	if run == nil {
		return nil
	}
	m := run.Metrics
	return map[string]string{
		core.MetricPerformance: string(core.ScoreStatus(m.Performance)),
		core.MetricLCP:         string(core.MetricStatus(core.MetricLCP, m.LCPMs)),
		core.MetricINP:         string(core.MetricStatus(core.MetricINP, m.INPMs)),
		core.MetricCLS:         string(core.MetricStatus(core.MetricCLS, m.CLS)),
	}
}

func writeImpactText(w io.Writer, run *schema.Run, impact schema.BusinessImpact, cfg *contract.Config) error {
	status := func(s schema.MetricStatus) string {
		if cfg.UseColors {
			return contract.GetColorStatus(s)
		}
		return string(s)
	}
	risk := string(impact.RevenueRisk)
	if cfg.UseColors {
		risk = contract.GetColorRisk(impact.RevenueRisk)
	}

	var lines []string
	if run != nil {
		m := run.Metrics
		inp := fmtFloatPtr(m.INPMs, 0)
		if m.INPSource != schema.InpSourceNone {
			inp = fmt.Sprintf("%s (%s)", inp, m.INPSource)
		}
		lines = append(lines,
			fmt.Sprintf("Run:          %s (%s, %s)", run.ID, run.Strategy, run.CreatedAt.UTC().Format(contract.DateTimeFormat)),
			fmt.Sprintf("Performance:  %s [%s]", fmtIntPtr(m.Performance), status(core.ScoreStatus(m.Performance))),
			fmt.Sprintf("LCP (ms):     %s [%s]", fmtFloatPtr(m.LCPMs, 0), status(core.MetricStatus(core.MetricLCP, m.LCPMs))),
			fmt.Sprintf("INP (ms):     %s [%s]", inp, status(core.MetricStatus(core.MetricINP, m.INPMs))),
			fmt.Sprintf("CLS:          %s [%s]", fmtFloatPtr(m.CLS, 3), status(core.MetricStatus(core.MetricCLS, m.CLS))),
		)
	}
	if !impact.LCPAvailable {
		lines = append(lines, "Impact:       NA (no LCP measured)")
	}
	lines = append(lines,
		fmt.Sprintf("Bounce rate:  %d%%", impact.BounceRate),
		fmt.Sprintf("Revenue risk: %s", risk),
		fmt.Sprintf("Visitor loss: %s", impact.VisitorLoss),
		fmt.Sprintf("SEO penalty:  %s", impact.SEOPenalty),
	)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
