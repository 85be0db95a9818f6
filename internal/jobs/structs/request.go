package structs

// LocationBody is the location part of a job body.
type LocationBody struct {
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
	Address     string    `json:"address" validate:"required,max=300"`
	City        string    `json:"city" validate:"required,max=100"`
	State       string    `json:"state" validate:"max=100"`
	Pincode     string    `json:"pincode" validate:"max=20"`
}

// SalaryBody is the salary part of a job body.
type SalaryBody struct {
	Min  float64   `json:"min" validate:"gte=0"`
	Max  float64   `json:"max" validate:"gtefield=Min"`
	Type PayPeriod `json:"type" validate:"required,oneof=hourly daily weekly monthly fixed"`
}

// CreateJobBody is the body of a create request.
type CreateJobBody struct {
	Title        string       `json:"title" validate:"required,min=3,max=200"`
	Description  string       `json:"description" validate:"required,max=5000"`
	Category     Category     `json:"category" validate:"required,oneof=construction plumbing electrical carpentry painting welding masonry landscaping cleaning other"`
	JobType      JobType      `json:"jobType" validate:"required,oneof=full-time part-time contract temporary"`
	Profession   string       `json:"profession" validate:"max=100"`
	Requirements []string     `json:"requirements" validate:"max=50,dive,max=500"`
	Skills       []string     `json:"skills" validate:"max=50,dive,max=100"`
	Location     LocationBody `json:"location"`
	Salary       SalaryBody   `json:"salary"`
	Urgency      Urgency      `json:"urgency" validate:"omitempty,oneof=low medium high"`
	Duration     *Duration    `json:"duration" validate:"omitempty"`
}

// UpdateJobBody is the body of an update request. Nil fields are left
// unchanged; employer and applications cannot be set through it.
type UpdateJobBody struct {
	Title        *string       `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string       `json:"description" validate:"omitempty,max=5000"`
	Category     *Category     `json:"category" validate:"omitempty,oneof=construction plumbing electrical carpentry painting welding masonry landscaping cleaning other"`
	JobType      *JobType      `json:"jobType" validate:"omitempty,oneof=full-time part-time contract temporary"`
	Profession   *string       `json:"profession" validate:"omitempty,max=100"`
	Requirements []string      `json:"requirements" validate:"omitempty,max=50,dive,max=500"`
	Skills       []string      `json:"skills" validate:"omitempty,max=50,dive,max=100"`
	Location     *LocationBody `json:"location" validate:"omitempty"`
	Salary       *SalaryBody   `json:"salary" validate:"omitempty"`
	Status       *JobStatus    `json:"status" validate:"omitempty,oneof=open in-progress completed closed cancelled"`
	Urgency      *Urgency      `json:"urgency" validate:"omitempty,oneof=low medium high"`
	IsActive     *bool         `json:"isActive"`
	Duration     *Duration     `json:"duration" validate:"omitempty"`
}

// ApplyBody is the body of an apply request.
type ApplyBody struct {
	CoverLetter string `json:"coverLetter"`
}

// StatusBody is the body of a set-status request.
type StatusBody struct {
	Status ApplicationStatus `json:"status"`
}
