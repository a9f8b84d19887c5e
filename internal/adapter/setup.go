package adapter

import (
	"main/pkg/exception"
)

// Setup binds one master account to an ordered set of child accounts.
//
// Setups are owned by an external surface and re-read every cycle, so
// enable/disable and membership changes take effect without a restart.
type Setup struct {
	Name        string             `json:"name"`
	Master      string             `json:"master"`
	Children    []string           `json:"children"`
	Multipliers map[string]float64 `json:"multipliers"`
	Enabled     bool               `json:"enabled"`
}

// Multiplier returns the size multiplier for a child account, default 1.
func (s Setup) Multiplier(childID string) float64 {
	if m, ok := s.Multipliers[childID]; ok && m > 0 {
		return m
	}
	return 1
}

func (s Setup) Validate() error {
	if s.Name == "" {
		return exception.ErrSetupMissingName
	}
	if s.Master == "" {
		return exception.ErrSetupMissingMaster
	}
	if len(s.Children) == 0 {
		return exception.ErrSetupMissingChildren
	}
	return nil
}
