package body

import (
	"fmt"

	"github.com/pthm-cable/planetforge/config"
	"github.com/pthm-cable/planetforge/telemetry"
)

// Generate resolves req against cfg and runs the matching pipeline. The
// request is a pure function of its inputs: the same config and request give
// identical maps.
func Generate(cfg *config.Config, req Request) (*Result, error) {
	timer := telemetry.StartTimer()
	timer.StartPhase(telemetry.PhaseResolve)
	p, err := Resolve(cfg, req)
	if err != nil {
		return nil, err
	}
	return Run(p, timer)
}

// Run executes already resolved parameters. timer may be nil.
func Run(p *Params, timer *telemetry.PhaseTimer) (*Result, error) {
	if timer == nil {
		timer = telemetry.StartTimer()
	}

	var res *Result
	var err error
	switch {
	case p.Terrestrial != nil:
		res, err = terrestrial(p, timer)
	case p.Gas != nil:
		res, err = gasGiant(p, timer)
	case p.Star != nil:
		res, err = star(p, timer)
	case p.Asteroid != nil:
		res, err = asteroid(p, timer)
	case p.Ring != nil:
		res, err = ring(p, timer)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBodyType, p.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", p.Kind, p.Preset, err)
	}
	res.Perf = timer.Stop()
	return res, nil
}
