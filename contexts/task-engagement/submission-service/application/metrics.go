package application

import "questboard/contexts/task-engagement/submission-service/ports"

// ResolveMetrics returns a no-op recorder when none is wired.
func ResolveMetrics(metrics ports.Metrics) ports.Metrics {
	if metrics == nil {
		return noopMetrics{}
	}
	return metrics
}

type noopMetrics struct{}

func (noopMetrics) SubmissionCreated() {}
func (noopMetrics) SubmissionRejected(string) {}
func (noopMetrics) SubmissionDecided(string, int) {}
func (noopMetrics) SideEffectFailed(string) {}
