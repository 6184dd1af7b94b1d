package model

import "fmt"

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusOnHold     TaskStatus = "on_hold"
)

type ResourceStatus string

const (
	ResourceStatusAvailable   ResourceStatus = "available"
	ResourceStatusAssigned    ResourceStatus = "assigned"
	ResourceStatusUnavailable ResourceStatus = "unavailable"
)

type ResourceType string

const (
	ResourceTypeLabor         ResourceType = "labor"
	ResourceTypeEquipment     ResourceType = "equipment"
	ResourceTypeSubcontractor ResourceType = "subcontractor"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type WorkPackageStatus string

const (
	WorkPackageStatusPlanned   WorkPackageStatus = "planned"
	WorkPackageStatusActive    WorkPackageStatus = "active"
	WorkPackageStatusDelivered WorkPackageStatus = "delivered"
	WorkPackageStatusCancelled WorkPackageStatus = "cancelled"
)

// Terminal task statuses: a task in one of these states holds no resource
// commitment and can never participate in a conflict.
var terminalTaskStatuses = map[TaskStatus]bool{
	TaskStatusCompleted: true,
	TaskStatusCancelled: true,
}

// Task status transitions. blocked and on_hold are re-enterable holding
// states, not terminal.
var validTaskTransitions = map[TaskStatus]map[TaskStatus]bool{
	TaskStatusNotStarted: {
		TaskStatusInProgress: true,
		TaskStatusBlocked:    true,
		TaskStatusOnHold:     true,
		TaskStatusCancelled:  true,
	},
	TaskStatusInProgress: {
		TaskStatusCompleted: true,
		TaskStatusBlocked:   true,
		TaskStatusOnHold:    true,
		TaskStatusCancelled: true,
	},
	TaskStatusBlocked: {
		TaskStatusNotStarted: true,
		TaskStatusInProgress: true,
		TaskStatusOnHold:     true,
		TaskStatusCancelled:  true,
	},
	TaskStatusOnHold: {
		TaskStatusNotStarted: true,
		TaskStatusInProgress: true,
		TaskStatusBlocked:    true,
		TaskStatusCancelled:  true,
	},
}

func IsTerminal(s TaskStatus) bool {
	return terminalTaskStatuses[s]
}

var validTaskStatuses = map[TaskStatus]bool{
	TaskStatusNotStarted: true,
	TaskStatusInProgress: true,
	TaskStatusCompleted:  true,
	TaskStatusCancelled:  true,
	TaskStatusBlocked:    true,
	TaskStatusOnHold:     true,
}

func ValidateTaskStatus(s TaskStatus) error {
	if !validTaskStatuses[s] {
		return fmt.Errorf("unknown task status %q", s)
	}
	return nil
}

func ValidateTaskTransition(from, to TaskStatus) error {
	if IsTerminal(from) {
		return fmt.Errorf("cannot transition from terminal status %q", from)
	}
	allowed, ok := validTaskTransitions[from]
	if !ok {
		return fmt.Errorf("unknown task status %q", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid task transition: %q -> %q", from, to)
	}
	return nil
}

var validResourceStatuses = map[ResourceStatus]bool{
	ResourceStatusAvailable:   true,
	ResourceStatusAssigned:    true,
	ResourceStatusUnavailable: true,
}

func ValidateResourceStatus(s ResourceStatus) error {
	if !validResourceStatuses[s] {
		return fmt.Errorf("unknown resource status %q", s)
	}
	return nil
}

var validResourceTypes = map[ResourceType]bool{
	ResourceTypeLabor:         true,
	ResourceTypeEquipment:     true,
	ResourceTypeSubcontractor: true,
}

func ValidateResourceType(t ResourceType) error {
	if !validResourceTypes[t] {
		return fmt.Errorf("unknown resource type %q", t)
	}
	return nil
}

var validPriorities = map[Priority]bool{
	PriorityLow:      true,
	PriorityHigh:     true,
	PriorityCritical: true,
}

func ValidatePriority(p Priority) error {
	if !validPriorities[p] {
		return fmt.Errorf("unknown priority %q", p)
	}
	return nil
}
