package handlers

import (
	"autobid/internal/condition"
	"autobid/internal/logger"
)

// RegisterDefaults registers the built-in condition handlers.
//
// The order below is the documented modifier chain for this deployment:
// gates first, then buffer_pct (percentage shaping), then bid_step last so
// the final amount lands on a clean step before the processor's ceiling
// clamp.
func RegisterDefaults(r *condition.Registry) error {
	expr, err := newExprHandler()
	if err != nil {
		return err
	}
	r.Register(&maxPriceHandler{})
	r.Register(&activeWindowHandler{})
	r.Register(expr)
	r.Register(&bufferPctHandler{})
	r.Register(&bidStepHandler{})
	logger.Debugf("conditions: registered %d built-in handlers", len(r.Handlers()))
	return nil
}
