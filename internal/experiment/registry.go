package experiment

import (
	"sort"
	"strings"

	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/metrics"
)

// DefaultStabilityThreshold is the relative energy error above which a run
// is reported unstable.
const DefaultStabilityThreshold = 1e-3

// Registry resolves kernel and integrator names for a run.
type Registry struct{}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) GetKernel(name string) (compute.Kernel, error) {
	return compute.Parse(strings.TrimSpace(name))
}

func (r *Registry) GetIntegrator(name string) (integrators.Integrator, error) {
	return integrators.New(strings.ToLower(strings.TrimSpace(name)))
}

func (r *Registry) ListKernels() []string {
	kinds := compute.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := integrators.Names()
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh instances of the metrics every run reports.
func (r *Registry) DefaultMetrics() []metrics.Metric {
	return []metrics.Metric{
		metrics.NewEnergyDrift(),
		metrics.NewMomentumDrift(),
		metrics.NewStability(DefaultStabilityThreshold),
	}
}
