package structs

// ListQuery is the raw listing request. Values are sanitized by the
// discovery engine.
type ListQuery struct {
	Category string
	JobType  string
	// Status defaults to open when StatusSet is false; an explicit empty
	// status lists every status.
	Status    string
	StatusSet bool
	City      string
	Employer  string
	Page      string
	Limit     string
	SortBy    string
}

// SearchQuery is the raw proximity search request.
type SearchQuery struct {
	Lat      string
	Lng      string
	Distance string
	City     string
	Category string
	JobType  string
	Skills   string
	Page     string
	Limit    string
}
