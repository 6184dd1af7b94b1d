package model

import "fmt"

// Strategy is the tie-break policy governing which task in a conflicting
// pair is delayed.
type Strategy string

const (
	// StrategyBalanced delays the task with the lower priority score.
	StrategyBalanced Strategy = "balanced"
	// StrategyMinimizeDelay delays the task with the shorter duration.
	StrategyMinimizeDelay Strategy = "minimize_delay"
	// StrategyMaximizeEfficiency delays the task with fewer predecessor
	// dependencies, leaving the more constrained task untouched.
	StrategyMaximizeEfficiency Strategy = "maximize_efficiency"
)

var validStrategies = map[Strategy]bool{
	StrategyBalanced:           true,
	StrategyMinimizeDelay:      true,
	StrategyMaximizeEfficiency: true,
}

func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(s)
	if !validStrategies[st] {
		return "", fmt.Errorf("unknown strategy %q (want balanced, minimize_delay, or maximize_efficiency)", s)
	}
	return st, nil
}
