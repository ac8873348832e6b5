package health

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/routecost/lookup"
)

// DomainChecker reports a registry as degraded once any name has reached
// the per-name variant cap. Further values for such a name are recorded as
// unknown.
type DomainChecker struct {
	name     string
	registry *lookup.Registry
}

// NewDomainChecker creates a domain-capacity checker for registry.
func NewDomainChecker(name string, registry *lookup.Registry) *DomainChecker {
	return &DomainChecker{name: name, registry: registry}
}

// Name returns the name of this checker.
func (d *DomainChecker) Name() string {
	return d.name
}

// Check performs the domain-capacity check.
func (d *DomainChecker) Check(ctx context.Context) Result {
	if r, done := cancelled(ctx); done {
		return r
	}
	if d.registry == nil {
		return Unhealthy("no registry", ErrNilSource)
	}

	var (
		saturated []string
		largest   int
	)
	for num := range d.registry.Len() {
		size := d.registry.DomainSize(num)
		largest = max(largest, size)
		if size >= lookup.MaxDomainSize {
			saturated = append(saturated, d.registry.Name(num))
		}
	}

	details := map[string]any{
		"names":      d.registry.Len(),
		"largest":    largest,
		"max_domain": lookup.MaxDomainSize,
		"frozen":     d.registry.Frozen(),
		"saturated":  saturated,
	}

	if len(saturated) > 0 {
		return Degraded(
			fmt.Sprintf("value domain full: %s", strings.Join(saturated, ", ")),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("%d names, largest domain %d of %d", d.registry.Len(), largest, lookup.MaxDomainSize),
	).WithDetails(details)
}
