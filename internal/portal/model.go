package portal

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"eventportal/internal/auth"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time component, stored as midnight UTC.
type Date struct {
	time.Time
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		parsed, err := ParseDate(v)
		*d = parsed
		return err
	case []byte:
		parsed, err := ParseDate(string(v))
		*d = parsed
		return err
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// User is an account in the user directory.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Event is a faculty-owned event students can register for until its
// deadline (inclusive).
type Event struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	EventDate         Date      `json:"event_date"`
	Deadline          Date      `json:"deadline"`
	Link              string    `json:"link"`
	CreatedBy         int64     `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	RegistrationCount int       `json:"registration_count"`
}

// Registration records a student's registration for an event.
type Registration struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	StudentName  string    `json:"student_name"`
	EventID      int64     `json:"event_id"`
	ProofImage   string    `json:"proof_image"`
	RegisteredAt time.Time `json:"registered_at"`
}

// RegistrationDetail is a registration joined with its event.
type RegistrationDetail struct {
	Registration
	Title       string `json:"title"`
	Description string `json:"description"`
	EventDate   Date   `json:"event_date"`
	Deadline    Date   `json:"deadline"`
	Link        string `json:"link"`
}

// EventFilter narrows ListEvents. Zero values disable a filter.
type EventFilter struct {
	CreatedBy int64
	Search    string
	OpenOnly  bool
}

// SignupInput is the signup request schema.
type SignupInput struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginInput is the login request schema.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EventInput is the create/update event schema. Dates are YYYY-MM-DD.
type EventInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	EventDate   string `json:"event_date" validate:"required,datetime=2006-01-02"`
	Deadline    string `json:"deadline" validate:"required,datetime=2006-01-02"`
	Link        string `json:"link" validate:"required,max=500"`
}
