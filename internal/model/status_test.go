package model

import "testing"

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		terminal bool
	}{
		{TaskStatusNotStarted, false},
		{TaskStatusInProgress, false},
		{TaskStatusBlocked, false},
		{TaskStatusOnHold, false},
		{TaskStatusCompleted, true},
		{TaskStatusCancelled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := IsTerminal(tt.status); got != tt.terminal {
				t.Errorf("IsTerminal(%q) = %v, want %v", tt.status, got, tt.terminal)
			}
		})
	}
}

func TestValidateTaskTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    TaskStatus
		to      TaskStatus
		wantErr bool
	}{
		{"start work", TaskStatusNotStarted, TaskStatusInProgress, false},
		{"complete", TaskStatusInProgress, TaskStatusCompleted, false},
		{"block in progress", TaskStatusInProgress, TaskStatusBlocked, false},
		{"unblock", TaskStatusBlocked, TaskStatusInProgress, false},
		{"resume from hold", TaskStatusOnHold, TaskStatusInProgress, false},
		{"cancel pending", TaskStatusNotStarted, TaskStatusCancelled, false},
		{"complete without starting", TaskStatusNotStarted, TaskStatusCompleted, true},
		{"reopen completed", TaskStatusCompleted, TaskStatusInProgress, true},
		{"revive cancelled", TaskStatusCancelled, TaskStatusNotStarted, true},
		{"unknown status", TaskStatus("bogus"), TaskStatusInProgress, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaskTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTaskTransition(%q, %q) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestValidateResourceType(t *testing.T) {
	for _, rt := range []ResourceType{ResourceTypeLabor, ResourceTypeEquipment, ResourceTypeSubcontractor} {
		if err := ValidateResourceType(rt); err != nil {
			t.Errorf("ValidateResourceType(%q) = %v, want nil", rt, err)
		}
	}
	if err := ValidateResourceType("crane"); err == nil {
		t.Error("expected error for unknown resource type")
	}
}

func TestValidatePriority(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityHigh, PriorityCritical} {
		if err := ValidatePriority(p); err != nil {
			t.Errorf("ValidatePriority(%q) = %v, want nil", p, err)
		}
	}
	for _, p := range []Priority{"urgent", "medium"} {
		if err := ValidatePriority(p); err == nil {
			t.Errorf("ValidatePriority(%q): expected error for unknown priority", p)
		}
	}
}

func TestValidateTaskStatus(t *testing.T) {
	for _, s := range []TaskStatus{
		TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted,
		TaskStatusCancelled, TaskStatusBlocked, TaskStatusOnHold,
	} {
		if err := ValidateTaskStatus(s); err != nil {
			t.Errorf("ValidateTaskStatus(%q) = %v, want nil", s, err)
		}
	}
	for _, s := range []TaskStatus{"", "done", "in-progress"} {
		if err := ValidateTaskStatus(s); err == nil {
			t.Errorf("ValidateTaskStatus(%q): expected error", s)
		}
	}
}
