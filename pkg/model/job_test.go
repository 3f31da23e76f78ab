package model

import (
	"testing"
	"time"
)

func TestCanTransitionJob(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusDraft, JobStatusActive, true},
		{JobStatusDraft, JobStatusPaused, false},
		{JobStatusDraft, JobStatusClosed, false},
		{JobStatusActive, JobStatusPaused, true},
		{JobStatusActive, JobStatusClosed, true},
		{JobStatusActive, JobStatusFilled, true},
		{JobStatusActive, JobStatusDraft, false},
		{JobStatusPaused, JobStatusActive, true},
		{JobStatusPaused, JobStatusClosed, true},
		{JobStatusPaused, JobStatusFilled, true},
		{JobStatusClosed, JobStatusActive, false},
		{JobStatusFilled, JobStatusClosed, false},
		{JobStatusActive, JobStatusActive, false},
	}
	for _, tc := range cases {
		if got := CanTransitionJob(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionJob(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestAcceptingApplications(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name string
		job  Job
		want bool
	}{
		{"active no deadline", Job{Status: JobStatusActive}, true},
		{"active future deadline", Job{Status: JobStatusActive, ApplicationDeadline: &future}, true},
		{"active past deadline", Job{Status: JobStatusActive, ApplicationDeadline: &past}, false},
		{"deadline is inclusive", Job{Status: JobStatusActive, ApplicationDeadline: &now}, true},
		{"paused", Job{Status: JobStatusPaused}, false},
		{"draft", Job{Status: JobStatusDraft}, false},
		{"closed", Job{Status: JobStatusClosed}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.job.AcceptingApplications(now); got != tc.want {
				t.Errorf("AcceptingApplications = %v, want %v", got, tc.want)
			}
		})
	}
}
