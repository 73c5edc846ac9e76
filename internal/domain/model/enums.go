package model

// PRState represents the lifecycle state of a pull request.
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
	PRStateMerged PRState = "merged"
)

// CIStatus represents the last known CI outcome for a pull request.
// Enrichment never consults a CI provider, so records start out as
// CIStatusUnknown; callers may overwrite the field before re-upserting.
type CIStatus string

const (
	CIStatusSuccess    CIStatus = "success"
	CIStatusFailure    CIStatus = "failure"
	CIStatusError      CIStatus = "error"
	CIStatusPending    CIStatus = "pending"
	CIStatusInProgress CIStatus = "in_progress"
	CIStatusCancelled  CIStatus = "cancelled"
	CIStatusNeutral    CIStatus = "neutral"
	CIStatusUnknown    CIStatus = "unknown"
)
