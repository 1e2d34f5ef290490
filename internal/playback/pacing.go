// internal/playback/pacing.go
package playback

import (
	"time"

	"github.com/zageabb/reflex-AgentDemo/internal/config"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
)

// Range derives a typing delay from content length.
type Range struct {
	PerChar time.Duration
	Min     time.Duration
	Max     time.Duration
}

// For returns length*PerChar clamped to [Min, Max].
func (r Range) For(length int) time.Duration {
	d := time.Duration(length) * r.PerChar
	if d < r.Min {
		d = r.Min
	}
	if r.Max > 0 && d > r.Max {
		d = r.Max
	}
	return d
}

// Pacing holds the animation timings.
type Pacing struct {
	CharDelay      time.Duration
	User           Range
	Assistant      Range
	ScrollDebounce time.Duration
}

// DefaultPacing matches the built-in configuration.
func DefaultPacing() Pacing {
	return PacingFromConfig(config.Default().Pacing)
}

// PacingFromConfig converts millisecond settings.
func PacingFromConfig(p config.PacingConfig) Pacing {
	return Pacing{
		CharDelay: config.Millis(p.CharDelayMS),
		User: Range{
			PerChar: config.Millis(p.UserPerCharMS),
			Min:     config.Millis(p.UserMinMS),
			Max:     config.Millis(p.UserMaxMS),
		},
		Assistant: Range{
			PerChar: config.Millis(p.AssistantPerCharMS),
			Min:     config.Millis(p.AssistantMinMS),
			Max:     config.Millis(p.AssistantMaxMS),
		},
		ScrollDebounce: config.Millis(p.ScrollDebounceMS),
	}
}

// TypingDelay returns the step's explicit delay or the role default.
func (p Pacing) TypingDelay(step models.Step) time.Duration {
	if step.TypingDelay != nil {
		return step.TypingDelay.Duration()
	}
	if step.Role() == models.ActorUser {
		return p.User.For(step.ContentLength())
	}
	return p.Assistant.For(step.ContentLength())
}
