package structs

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is the trade a job belongs to.
type Category string

const (
	CategoryConstruction Category = "construction"
	CategoryPlumbing     Category = "plumbing"
	CategoryElectrical   Category = "electrical"
	CategoryCarpentry    Category = "carpentry"
	CategoryPainting     Category = "painting"
	CategoryWelding      Category = "welding"
	CategoryMasonry      Category = "masonry"
	CategoryLandscaping  Category = "landscaping"
	CategoryCleaning     Category = "cleaning"
	CategoryOther        Category = "other"
)

// JobType is the engagement type.
type JobType string

const (
	JobTypeFullTime  JobType = "full-time"
	JobTypePartTime  JobType = "part-time"
	JobTypeContract  JobType = "contract"
	JobTypeTemporary JobType = "temporary"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in-progress"
	JobCompleted  JobStatus = "completed"
	JobClosed     JobStatus = "closed"
	JobCancelled  JobStatus = "cancelled"
)

// Urgency of a job.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// PayPeriod is the unit a salary is quoted in.
type PayPeriod string

const (
	PayHourly  PayPeriod = "hourly"
	PayDaily   PayPeriod = "daily"
	PayWeekly  PayPeriod = "weekly"
	PayMonthly PayPeriod = "monthly"
	PayFixed   PayPeriod = "fixed"
)

// PointType is the GeoJSON type of every job location.
const PointType = "Point"

// Location is a GeoJSON point plus a postal address. Coordinates are
// [longitude, latitude].
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	City        string    `bson:"city,omitempty" json:"city,omitempty"`
	State       string    `bson:"state,omitempty" json:"state,omitempty"`
	Pincode     string    `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// Lon returns the longitude, or 0 for a malformed point.
func (l Location) Lon() float64 {
	if len(l.Coordinates) != 2 {
		return 0
	}
	return l.Coordinates[0]
}

// Lat returns the latitude, or 0 for a malformed point.
func (l Location) Lat() float64 {
	if len(l.Coordinates) != 2 {
		return 0
	}
	return l.Coordinates[1]
}

type Salary struct {
	Min  float64   `bson:"min" json:"min"`
	Max  float64   `bson:"max" json:"max"`
	Type PayPeriod `bson:"type" json:"type"`
}

type Duration struct {
	Value int    `bson:"value" json:"value" validate:"gt=0,lte=1000"`
	Unit  string `bson:"unit" json:"unit" validate:"oneof=hours days weeks months"`
}

// Job is a posting and the root of its applications.
type Job struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Slug         string             `bson:"slug,omitempty" json:"slug,omitempty"`
	Category     Category           `bson:"category" json:"category"`
	JobType      JobType            `bson:"jobType" json:"jobType"`
	Profession   string             `bson:"profession,omitempty" json:"profession,omitempty"`
	Requirements []string           `bson:"requirements" json:"requirements"`
	Skills       []string           `bson:"skills" json:"skills"`
	Location     Location           `bson:"location" json:"location"`
	Salary       Salary             `bson:"salary" json:"salary"`
	Status       JobStatus          `bson:"status" json:"status"`
	Urgency      Urgency            `bson:"urgency" json:"urgency"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	Duration     *Duration          `bson:"duration,omitempty" json:"duration,omitempty"`
	Employer     string             `bson:"employer" json:"employer"`
	Applicants   []Application      `bson:"applicants" json:"applicants"`
	HiredWorker  string             `bson:"hiredWorker,omitempty" json:"hiredWorker,omitempty"`
	Views        int64              `bson:"views" json:"views"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FindApplicant returns the application submitted by worker, if any.
func (j *Job) FindApplicant(worker string) (*Application, bool) {
	for i := range j.Applicants {
		if j.Applicants[i].Worker == worker {
			return &j.Applicants[i], true
		}
	}
	return nil, false
}

// FindApplication returns the application with the given id, if any.
func (j *Job) FindApplication(id primitive.ObjectID) (*Application, bool) {
	for i := range j.Applicants {
		if j.Applicants[i].ID == id {
			return &j.Applicants[i], true
		}
	}
	return nil, false
}

// Application is a worker's bid on a job, embedded in the job document.
type Application struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Worker      string             `bson:"worker" json:"worker"`
	CoverLetter string             `bson:"coverLetter,omitempty" json:"coverLetter,omitempty"`
	Status      ApplicationStatus  `bson:"status" json:"status"`
	AppliedAt   time.Time          `bson:"appliedAt" json:"appliedAt"`
}

// JobSummary is the job part of a MyApplication.
type JobSummary struct {
	ID       primitive.ObjectID `json:"id"`
	Title    string             `json:"title"`
	Category Category           `json:"category"`
	Location Location           `json:"location"`
	Salary   Salary             `json:"salary"`
	Employer string             `json:"employer"`
	Views    int64              `json:"views"`
	Status   JobStatus          `json:"status"`
}

// MyApplication is a worker's view of one of their applications.
type MyApplication struct {
	ID          primitive.ObjectID `json:"id"`
	Job         JobSummary         `json:"job"`
	Status      ApplicationStatus  `json:"status"`
	AppliedAt   time.Time          `json:"appliedAt"`
	CoverLetter string             `json:"coverLetter,omitempty"`
}

// Page is one page of a listing.
type Page struct {
	Items      []*Job `json:"items"`
	Count      int    `json:"count"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	TotalPages int64  `json:"totalPages"`
}

// NewPage builds a page; TotalPages is ceil(total/limit).
func NewPage(items []*Job, total int64, page, limit int) *Page {
	if items == nil {
		items = []*Job{}
	}
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return &Page{Items: items, Count: len(items), Total: total, Page: page, TotalPages: pages}
}
