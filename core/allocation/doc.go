package allocation

// Package allocation splits an aggregate load profile across network buses
// in proportion to each bus's static Load weight. ComputeTotalWeight and
// Allocate are pure functions over already-parsed inputs; Engine adds shape
// validation and logging around them for the batch pipeline.
