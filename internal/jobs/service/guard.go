package service

import (
	"github.com/skillconnect/jobcore/internal/ecode"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
)

// IsOwner reports whether callerID owns job.
func IsOwner(job *structs.Job, callerID string) bool {
	return callerID != "" && job.Employer == callerID
}

// HasRole reports whether the caller holds one of roles.
func HasRole(caller structs.Caller, roles ...structs.Role) bool {
	if caller.Anonymous() {
		return false
	}
	for _, r := range roles {
		if caller.Role == r {
			return true
		}
	}
	return false
}

// RequireRole fails unless the caller holds one of roles.
func RequireRole(caller structs.Caller, roles ...structs.Role) error {
	if caller.Anonymous() {
		return ecode.NewUnauthorized("authentication required")
	}
	if !HasRole(caller, roles...) {
		return ecode.NewForbidden("insufficient permissions")
	}
	return nil
}

// RequireOwner fails unless the caller owns job.
func RequireOwner(job *structs.Job, caller structs.Caller) error {
	if !IsOwner(job, caller.ID) {
		return ecode.NewForbidden("not authorized to manage this job")
	}
	return nil
}
