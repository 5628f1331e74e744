package workflow

import (
	"math"

	"driver-companion/internal/domain"
)

// CalculateProgress summarizes checklist completion. Percent is 0 for an empty checklist.
func CalculateProgress(items domain.Checklist) domain.Progress {
	p := domain.Progress{Collected: items.CollectedCount(), Total: len(items)}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Collected) / float64(p.Total) * 100))
	}
	return p
}
