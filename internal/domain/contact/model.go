package contact

import "time"

// Kind distinguishes the public forms.
type Kind string

const (
	KindContact Kind = "contact"
	KindQuote   Kind = "quote"
)

// Valid reports whether k is a known form kind.
func (k Kind) Valid() bool {
	return k == KindContact || k == KindQuote
}

// Status tracks how far a submission has been handled.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusSpam       Status = "spam"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved, StatusSpam:
		return true
	}
	return false
}

// Submission is a stored contact or quote request.
type Submission struct {
	ID        uint      `json:"id"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Budget    string    `json:"budget,omitempty"`
	Seats     int       `json:"seats,omitempty"`
	Status    Status    `json:"status"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter narrows the admin listing.
type Filter struct {
	Kind   Kind
	Status Status
	Limit  int
	Offset int
}

// SubmitInput is the body of both public forms. Website is a honeypot that
// real visitors never fill in.
type SubmitInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Company string `json:"company,omitempty" validate:"max=160"`
	Phone   string `json:"phone,omitempty" validate:"max=40"`
	Subject string `json:"subject,omitempty" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
	Budget  string `json:"budget,omitempty" validate:"max=64"`
	Seats   int    `json:"seats,omitempty" validate:"gte=0,lte=1000000"`
	Website string `json:"website,omitempty"`

	IP        string `json:"-"`
	UserAgent string `json:"-"`
}
