package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/loadshare/core/model"
)

// DefaultNodes is the cluster size of the reference data set.
const DefaultNodes = 8

// DefaultStartDate is the first day covered by the reference workbook.
const DefaultStartDate = "2018-08-01"

// RunConfig holds the parameters of one allocation run.
type RunConfig struct {
	Days  int `json:"days"`
	Hours int `json:"hours"`
	Nodes int `json:"nodes"`
	// StartDate anchors time-stamped sinks. Accepts 2006-01-02 or RFC3339.
	StartDate string `json:"start_date"`
}

// SetDefaults applies sane defaults.
func (c *RunConfig) SetDefaults() {
	if c.Days == 0 {
		c.Days = model.DefaultDays
	}
	if c.Hours == 0 {
		c.Hours = model.DefaultHours
	}
	if c.Nodes == 0 {
		c.Nodes = DefaultNodes
	}
	if c.StartDate == "" {
		c.StartDate = DefaultStartDate
	}
}

// Validate checks mandatory fields.
func (c RunConfig) Validate() error {
	if err := c.Shape().Validate(); err != nil {
		return err
	}
	if c.Nodes <= 0 {
		return fmt.Errorf("nodes must be positive, got %d", c.Nodes)
	}
	if _, err := c.Start(); err != nil {
		return err
	}
	return nil
}

// Shape returns the configured profile dimensions.
func (c RunConfig) Shape() model.Shape {
	return model.Shape{Days: c.Days, Hours: c.Hours}
}

// Start parses StartDate.
func (c RunConfig) Start() (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, c.StartDate); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start_date %q", c.StartDate)
	}
	return t, nil
}
