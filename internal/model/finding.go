package model

import "time"

// Finding is one observation reported by a check.
type Finding struct {
	Severity Severity
	Summary  string
	Details  string
}

// Outcome is the result of merging findings. It has the same shape as a
// Finding so that outcomes can be merged again.
type Outcome = Finding

// VMState is the per-VM snapshot evaluated by the autostart check.
type VMState struct {
	Node      string
	ID        int
	Name      string
	Status    string
	Autostart bool
}

// Running reports whether the VM is currently running.
func (v VMState) Running() bool {
	return v.Status == "running"
}

// Variant selects which memory accounting the evictability check evaluates.
type Variant string

const (
	// VariantActual uses live memory consumption.
	VariantActual Variant = "actual"
	// VariantTheoretical uses configured maximum memory of every VM.
	VariantTheoretical Variant = "theoretical"
)

// NodeCapacity holds per-node memory accounting in bytes.
type NodeCapacity struct {
	Node            string
	UsedActual      int64
	UsedTheoretical int64
	FreeActual      int64
	FreeTheoretical int64
}

// Used returns the used bytes for the given variant.
func (n NodeCapacity) Used(v Variant) int64 {
	if v == VariantTheoretical {
		return n.UsedTheoretical
	}
	return n.UsedActual
}

// Free returns the free bytes for the given variant.
func (n NodeCapacity) Free(v Variant) int64 {
	if v == VariantTheoretical {
		return n.FreeTheoretical
	}
	return n.FreeActual
}

// ProfileOutcome is the merged result of all checks run against one profile.
type ProfileOutcome struct {
	Profile  string
	Findings []Finding
	Outcome  Outcome
	Duration time.Duration
}

// Report holds the per-profile outcomes of one run and their merged verdict.
// Profiles keeps the order in which profiles were requested.
type Report struct {
	Profiles  []ProfileOutcome
	Final     Outcome
	StartedAt time.Time
}
