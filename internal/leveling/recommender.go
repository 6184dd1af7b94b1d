package leveling

import (
	"fmt"

	"github.com/sitework/leveler/internal/model"
	"github.com/sitework/leveler/internal/snapshot"
)

// Build turns detected conflicts into a ranked recommendation list. It is
// a pure function of (conflicts, strategy, snapshot, policy): inputs are
// never mutated and identical inputs yield identical output.
//
// Conflicts are deduplicated per unordered task-pair key, so a pair that
// surfaces through several shared resources is processed once. The final
// list is stably sorted ascending by severity rank.
func Build(conflicts []model.Conflict, strategy model.Strategy, snap *snapshot.Snapshot, policy model.LevelingPolicy) []model.Recommendation {
	seen := make(map[string]bool, len(conflicts))
	var recs []model.Recommendation

	for _, c := range conflicts {
		key := c.PairKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		recs = append(recs, buildForConflict(c, strategy, snap, policy)...)
	}

	model.SortRecommendations(recs)
	return recs
}

// buildForConflict emits the Delay recommendation for one conflict, plus a
// Reallocate when a qualifying alternative resource exists and a Split
// when the delayed task is long enough to run in parallel.
func buildForConflict(c model.Conflict, strategy model.Strategy, snap *snapshot.Snapshot, policy model.LevelingPolicy) []model.Recommendation {
	delayTask, keepTask := chooseDelayTask(c, strategy)

	delay := buildDelay(c, delayTask, keepTask, snap, policy)
	out := []model.Recommendation{delay}

	alts := findAlternatives(snap, delayTask, c.ResourceID)
	if len(alts) > 0 {
		best := alts[0].resource
		out = append(out, model.Reallocate{
			Task:             delayTask,
			FromResourceID:   c.ResourceID,
			ToResourceID:     best.ID,
			AlternativeCount: len(alts),
			// A reassignment is less disruptive than a deadline-threatening
			// delay, so it ranks one step below the delay.
			Severity: delay.Severity.StepDown(),
			Reason: fmt.Sprintf("Reassign %q from %s to %s (%d qualified alternative(s), least loaded chosen)",
				delayTask.Name, c.ResourceID, best.ID, len(alts)),
		})

		if delayTask.DurationDays > policy.SplitMinDurationDays {
			out = append(out, model.Split{
				Task:                delayTask,
				PrimaryResourceID:   c.ResourceID,
				SecondaryResourceID: best.ID,
				Severity:            model.SeverityLow,
				Reason: fmt.Sprintf("Split %q between %s and %s to run the remaining work in parallel",
					delayTask.Name, c.ResourceID, best.ID),
			})
		}
	}

	return out
}

func buildDelay(c model.Conflict, delayTask, keepTask model.Task, snap *snapshot.Snapshot, policy model.LevelingPolicy) model.Delay {
	// The buffer guarantees the shifted task starts strictly after the
	// kept task ends, covering same-day edges.
	delayDays := delayTask.StartDate.DaysUntil(*keepTask.EndDate) + policy.DelayBufferDays
	newStart := delayTask.StartDate.AddDays(delayDays)
	newEnd := delayTask.EndDate.AddDays(delayDays)

	successors := snap.SuccessorsOf(delayTask.ID)

	violates := false
	if delayTask.WorkPackageID != "" {
		if wp, ok := snap.WorkPackageByID(delayTask.WorkPackageID); ok && wp.TargetDelivery != nil {
			violates = newEnd.After(*wp.TargetDelivery)
		}
	}

	severity := delaySeverity(c.OverlapDays, violates, policy)

	reason := fmt.Sprintf("Delay %q by %d day(s) to clear its %d-day overlap with %q; %d successor task(s) affected",
		delayTask.Name, delayDays, c.OverlapDays, keepTask.Name, len(successors))
	if violates {
		reason += fmt.Sprintf("; WARNING: new end date %s misses the work package delivery target", newEnd)
	}

	return model.Delay{
		Task:                   delayTask,
		DelayDays:              delayDays,
		NewStart:               newStart,
		NewEnd:                 newEnd,
		ImpactedSuccessorCount: len(successors),
		ViolatesDeadline:       violates,
		Severity:               severity,
		Reason:                 reason,
	}
}

// delaySeverity grades a delay: deadline violations escalate to critical,
// otherwise the overlap magnitude decides against the policy thresholds.
func delaySeverity(overlapDays int, violatesDeadline bool, policy model.LevelingPolicy) model.Severity {
	switch {
	case violatesDeadline:
		return model.SeverityCritical
	case overlapDays > policy.SevereOverlapDays:
		return model.SeverityHigh
	case overlapDays > policy.ModerateOverlapDays:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}
