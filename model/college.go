package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CollegeType is the institution type of a college
type CollegeType string

const (
	CollegeTypePublic     CollegeType = "Public"
	CollegeTypePrivate    CollegeType = "Private"
	CollegeTypeGovernment CollegeType = "Government"
	CollegeTypeDeemed     CollegeType = "Deemed"
)

// CollegeStatus controls public visibility of a college
type CollegeStatus string

const (
	CollegeStatusDraft     CollegeStatus = "draft"
	CollegeStatusPublished CollegeStatus = "published"
)

// Toggle returns the other status
func (s CollegeStatus) Toggle() CollegeStatus {
	if s == CollegeStatusPublished {
		return CollegeStatusDraft
	}
	return CollegeStatusPublished
}

// College is the catalog aggregate. Courses, fee structures, placement and
// eligibility records are owned by the college and stored inside it.
type College struct {
	ID               string         `gorm:"type:uuid;primaryKey" json:"id" bson:"_id"`
	Slug             string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug" bson:"slug" validate:"required,max=255"`
	Name             string         `gorm:"type:varchar(255);not null" json:"name" bson:"name" validate:"required,min=2,max=255"`
	Description      string         `gorm:"type:text" json:"description" bson:"description"`
	ShortDescription string         `gorm:"type:text" json:"shortDescription" bson:"shortDescription"`
	Image            string         `gorm:"type:varchar(512)" json:"image" bson:"image" validate:"omitempty,max=512"`
	Logo             string         `gorm:"type:varchar(512)" json:"logo" bson:"logo" validate:"omitempty,max=512"`
	Location         string         `gorm:"type:varchar(255)" json:"location" bson:"location"`
	City             string         `gorm:"type:varchar(120);index" json:"city" bson:"city"`
	State            string         `gorm:"type:varchar(120);index" json:"state" bson:"state"`
	Established      int            `json:"established" bson:"established" validate:"gte=0"`
	Type             CollegeType    `gorm:"type:varchar(20);index;default:'Private'" json:"type" bson:"type" validate:"oneof=Public Private Government Deemed"`
	Accreditation    string         `gorm:"type:varchar(120)" json:"accreditation" bson:"accreditation"`
	Rating           float64        `gorm:"default:0" json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	Ranking          int            `gorm:"default:0;index" json:"ranking" bson:"ranking" validate:"gte=0"`
	Status           CollegeStatus  `gorm:"type:varchar(20);index;default:'draft'" json:"status" bson:"status" validate:"oneof=draft published"`
	Facilities       pq.StringArray `gorm:"type:text[]" json:"facilities" bson:"facilities"`

	Courses      datatypes.JSONSlice[Course]              `gorm:"type:jsonb" json:"courses" bson:"courses" validate:"dive"`
	FeeStructure datatypes.JSONSlice[FeeStructure]        `gorm:"type:jsonb" json:"feeStructure" bson:"feeStructure" validate:"dive"`
	Placement    PlacementStats                           `gorm:"type:jsonb" json:"placement" bson:"placement"`
	Eligibility  datatypes.JSONSlice[EligibilityCriteria] `gorm:"type:jsonb" json:"eligibility" bson:"eligibility" validate:"dive"`

	CreatedAt time.Time `gorm:"autoCreateTime:false;index" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updatedAt" bson:"updatedAt"`
}

// Course is a program offered by a college
type Course struct {
	ID          string  `json:"id,omitempty" bson:"id,omitempty"`
	Name        string  `json:"name" bson:"name" validate:"required,max=255"`
	Duration    string  `json:"duration" bson:"duration"`
	Fees        float64 `json:"fees" bson:"fees" validate:"gte=0"`
	Seats       int     `json:"seats" bson:"seats" validate:"gte=0"`
	Description string  `json:"description" bson:"description"`
	Eligibility string  `json:"eligibility" bson:"eligibility"`
}

// FeeStructure breaks the cost of a course down. Total is always derived.
type FeeStructure struct {
	CourseID   string  `json:"courseId,omitempty" bson:"courseId,omitempty"`
	CourseName string  `json:"courseName" bson:"courseName"`
	Year       string  `json:"year,omitempty" bson:"year,omitempty"`
	Tuition    float64 `json:"tuition" bson:"tuition" validate:"gte=0"`
	Hostel     float64 `json:"hostel" bson:"hostel" validate:"gte=0"`
	Other      float64 `json:"other" bson:"other" validate:"gte=0"`
	Total      float64 `json:"total" bson:"total"`
}

// PlacementStats holds placement outcomes of a college
type PlacementStats struct {
	Percentage     float64         `json:"percentage" bson:"percentage" validate:"gte=0,lte=100"`
	AveragePackage float64         `json:"averagePackage" bson:"averagePackage" validate:"gte=0"`
	HighestPackage float64         `json:"highestPackage" bson:"highestPackage" validate:"gtefield=AveragePackage"`
	TopRecruiters  []string        `json:"topRecruiters" bson:"topRecruiters"`
	YearWiseData   []PlacementYear `json:"yearWiseData" bson:"yearWiseData" validate:"dive"`
}

// PlacementYear is one entry of the historical placement series
type PlacementYear struct {
	Year           string  `json:"year" bson:"year"`
	Percentage     float64 `json:"percentage" bson:"percentage" validate:"gte=0,lte=100"`
	AveragePackage float64 `json:"averagePackage" bson:"averagePackage" validate:"gte=0"`
	HighestPackage float64 `json:"highestPackage" bson:"highestPackage" validate:"gte=0"`
}

// EligibilityCriteria lists admission requirements for a course
type EligibilityCriteria struct {
	CourseID      string   `json:"courseId,omitempty" bson:"courseId,omitempty"`
	CourseName    string   `json:"courseName" bson:"courseName"`
	EntranceExams []string `json:"entranceExams" bson:"entranceExams"`
	Criteria      string   `json:"criteria" bson:"criteria"`
}

// DashboardStats aggregates catalog counts for the admin dashboard
type DashboardStats struct {
	TotalColleges int64 `json:"totalColleges"`
	Published     int64 `json:"published"`
	Drafts        int64 `json:"drafts"`
	TotalCourses  int64 `json:"totalCourses"`
}

// Value stores placement stats as a JSONB document
func (p PlacementStats) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads placement stats from a JSONB column
func (p *PlacementStats) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*p = PlacementStats{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("placement: unsupported scan type")
	}
	return json.Unmarshal(data, p)
}

// BeforeCreate assigns an id when the caller did not
func (c *College) BeforeCreate(tx *gorm.DB) error {
	c.EnsureID()
	return nil
}

// EnsureID assigns a time-ordered UUID when ID is empty
func (c *College) EnsureID() {
	if c.ID == "" {
		c.ID = uuid.Must(uuid.NewV7()).String()
	}
}

// MinCourseFee returns the cheapest course fee. ok is false when the college
// has no courses.
func (c *College) MinCourseFee() (fee float64, ok bool) {
	for i, course := range c.Courses {
		if i == 0 || course.Fees < fee {
			fee = course.Fees
		}
	}
	return fee, len(c.Courses) > 0
}

// Normalize fills defaults and recomputes derived fields. It is applied on
// every write path before validation.
func (c *College) Normalize() {
	if c.Type == "" {
		c.Type = CollegeTypePrivate
	}
	if c.Status == "" {
		c.Status = CollegeStatusDraft
	}
	if c.Slug != "" {
		c.Slug = Slugify(c.Slug)
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}

	if c.Facilities == nil {
		c.Facilities = pq.StringArray{}
	}
	if c.Courses == nil {
		c.Courses = datatypes.JSONSlice[Course]{}
	}
	if c.FeeStructure == nil {
		c.FeeStructure = datatypes.JSONSlice[FeeStructure]{}
	}
	if c.Eligibility == nil {
		c.Eligibility = datatypes.JSONSlice[EligibilityCriteria]{}
	}
	if c.Placement.TopRecruiters == nil {
		c.Placement.TopRecruiters = []string{}
	}
	if c.Placement.YearWiseData == nil {
		c.Placement.YearWiseData = []PlacementYear{}
	}

	for i := range c.FeeStructure {
		fee := &c.FeeStructure[i]
		fee.Total = fee.Tuition + fee.Hostel + fee.Other
	}
	for i := range c.Eligibility {
		if c.Eligibility[i].EntranceExams == nil {
			c.Eligibility[i].EntranceExams = []string{}
		}
	}
}

// Clone returns a deep copy so callers never share nested slices
func (c College) Clone() College {
	out := c
	if c.Facilities != nil {
		out.Facilities = append(pq.StringArray{}, c.Facilities...)
	}
	if c.Courses != nil {
		out.Courses = append(datatypes.JSONSlice[Course]{}, c.Courses...)
	}
	if c.FeeStructure != nil {
		out.FeeStructure = append(datatypes.JSONSlice[FeeStructure]{}, c.FeeStructure...)
	}
	if c.Eligibility != nil {
		out.Eligibility = make(datatypes.JSONSlice[EligibilityCriteria], len(c.Eligibility))
		for i, e := range c.Eligibility {
			if e.EntranceExams != nil {
				e.EntranceExams = append([]string{}, e.EntranceExams...)
			}
			out.Eligibility[i] = e
		}
	}
	if c.Placement.TopRecruiters != nil {
		out.Placement.TopRecruiters = append([]string{}, c.Placement.TopRecruiters...)
	}
	if c.Placement.YearWiseData != nil {
		out.Placement.YearWiseData = append([]PlacementYear{}, c.Placement.YearWiseData...)
	}
	return out
}
