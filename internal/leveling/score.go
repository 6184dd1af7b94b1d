// Package leveling turns detected conflicts into ranked, strategy-driven
// recommendations: delay one task, reassign a resource, or split work.
package leveling

import "github.com/sitework/leveler/internal/model"

// PriorityScore ranks a task for the balanced strategy's delay/keep
// decision. The is_critical flag outranks every priority value.
func PriorityScore(t model.Task) int {
	if t.IsCritical {
		return 4
	}
	switch t.Priority {
	case model.PriorityCritical:
		return 3
	case model.PriorityHigh:
		return 2
	default:
		return 1
	}
}

// chooseDelayTask picks which task of the conflicting pair to delay.
// Ties default to delaying task2 under every strategy.
func chooseDelayTask(c model.Conflict, strategy model.Strategy) (delay, keep model.Task) {
	t1, t2 := c.Task1, c.Task2

	switch strategy {
	case model.StrategyMinimizeDelay:
		// Delay whichever task is shorter.
		if t1.DurationDays < t2.DurationDays {
			return t1, t2
		}
		return t2, t1

	case model.StrategyMaximizeEfficiency:
		// Leave the more dependency-constrained task untouched.
		if len(t1.PredecessorIDs) < len(t2.PredecessorIDs) {
			return t1, t2
		}
		return t2, t1

	default: // balanced
		if PriorityScore(t1) < PriorityScore(t2) {
			return t1, t2
		}
		return t2, t1
	}
}
