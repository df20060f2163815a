package apiclient

import "time"

// EnrollmentStatus is the review state of a membership application
type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentApproved EnrollmentStatus = "approved"
	EnrollmentRejected EnrollmentStatus = "rejected"
)

// Valid reports whether s is a known status
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentPending, EnrollmentApproved, EnrollmentRejected:
		return true
	}
	return false
}

// Enrollment is a membership application
type Enrollment struct {
	ID        string           `json:"id,omitempty"`
	FirstName string           `json:"firstName" validate:"required,max=80"`
	LastName  string           `json:"lastName" validate:"required,max=80"`
	Email     string           `json:"email" validate:"required,email"`
	Phone     string           `json:"phone,omitempty" validate:"omitempty,max=32"`
	Company   string           `json:"company,omitempty" validate:"omitempty,max=120"`
	Sector    string           `json:"sector,omitempty" validate:"omitempty,max=80"`
	Country   string           `json:"country" validate:"required,max=80"`
	Message   string           `json:"message,omitempty" validate:"omitempty,max=2000"`
	Status    EnrollmentStatus `json:"status,omitempty"`
	CreatedAt time.Time        `json:"createdAt,omitempty"`
}

// Product is an item offered by a member producer
type Product struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name" validate:"required,max=120"`
	Description string    `json:"description,omitempty" validate:"omitempty,max=4000"`
	Category    string    `json:"category,omitempty" validate:"omitempty,max=80"`
	Price       float64   `json:"price" validate:"gte=0"`
	Currency    string    `json:"currency,omitempty" validate:"omitempty,len=3"`
	Producer    string    `json:"producer,omitempty" validate:"omitempty,max=120"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Featured    bool      `json:"featured,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Blog is a published article
type Blog struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title" validate:"required,max=200"`
	Slug        string    `json:"slug,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	Content     string    `json:"content" validate:"required"`
	Author      string    `json:"author,omitempty" validate:"omitempty,max=120"`
	CoverURL    string    `json:"coverUrl,omitempty" validate:"omitempty,url"`
	Tags        []string  `json:"tags,omitempty"`
	PublishedAt time.Time `json:"publishedAt,omitempty"`
}

// Formation is a training session
type Formation struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description,omitempty" validate:"omitempty,max=4000"`
	Trainer     string    `json:"trainer,omitempty" validate:"omitempty,max=120"`
	Location    string    `json:"location,omitempty" validate:"omitempty,max=200"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate,omitempty"`
	Seats       int       `json:"seats,omitempty" validate:"gte=0"`
	Price       float64   `json:"price,omitempty" validate:"gte=0"`
}

// Event is a public event on the agenda
type Event struct {
	ID              string    `json:"id,omitempty"`
	Title           string    `json:"title" validate:"required,max=200"`
	Description     string    `json:"description,omitempty" validate:"omitempty,max=4000"`
	Location        string    `json:"location,omitempty" validate:"omitempty,max=200"`
	StartsAt        time.Time `json:"startsAt" validate:"required"`
	EndsAt          time.Time `json:"endsAt,omitempty"`
	ImageURL        string    `json:"imageUrl,omitempty" validate:"omitempty,url"`
	RegistrationURL string    `json:"registrationUrl,omitempty" validate:"omitempty,url"`
}

// Contact is a message sent through the contact form
type Contact struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name" validate:"required,max=120"`
	Email     string    `json:"email" validate:"required,email"`
	Subject   string    `json:"subject,omitempty" validate:"omitempty,max=200"`
	Message   string    `json:"message" validate:"required,max=4000"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Stats are the back-office counters
type Stats struct {
	Enrollments        int `json:"enrollments"`
	PendingEnrollments int `json:"pendingEnrollments"`
	Products           int `json:"products"`
	Blogs              int `json:"blogs"`
	Formations         int `json:"formations"`
	Events             int `json:"events"`
	Contacts           int `json:"contacts"`
}
