package constants

// Pagination bounds for task listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MinLimit        = 1
	MinOffset       = 0
)

// Sort parameters accepted by the task listing endpoint.
const (
	SortByCreatedAt = "created_at"
	SortByDueDate   = "due_date"
	SortByPriority  = "priority"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// Conflict resolution strategies for task imports.
const (
	ConflictStrategySkip               = "skip"
	ConflictStrategyReplace            = "replace"
	ConflictStrategyMergeWithTimestamp = "merge_with_timestamp"
)
