package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	JitterMin = 0.8
	JitterMax = 1.2
)

var validate = validator.New()

// PacingPolicy задаётся один раз на прогон и дальше не меняется.
type PacingPolicy struct {
	BaseIntervalSeconds float64 `json:"base_interval_seconds" validate:"gte=0"`
	JitterEnabled       bool    `json:"jitter_enabled"`
	// множитель для FLOOD_WAIT: ждём wait*multiplier перед следующей попыткой
	FloodWaitMultiplier float64 `json:"flood_wait_multiplier" validate:"omitempty,gte=1"`
}

func (p PacingPolicy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid pacing policy: %w", err)
	}
	return nil
}

// FloodMultiplier returns the effective multiplier; zero means 1.
func (p PacingPolicy) FloodMultiplier() float64 {
	if p.FloodWaitMultiplier < 1 {
		return 1
	}
	return p.FloodWaitMultiplier
}
