package types

// Status is a type for the lifecycle status of a persisted resource in the database.
// This is independent of any domain-level status a resource may carry.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)
