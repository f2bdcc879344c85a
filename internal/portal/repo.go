package portal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists users, events and registrations in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return hasPgCode(err, uniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return hasPgCode(err, foreignKeyViolation)
}

// FindUserByEmail looks up a user by exact email.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password, role, created_at
		FROM users WHERE email = $1
	`, email)
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// InsertUser writes a new user; a taken email yields ErrDuplicate.
func (r *Repository) InsertUser(ctx context.Context, u User) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, u.Name, u.Email, u.PasswordHash, string(u.Role))
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicate
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

const eventColumns = `e.id, e.title, e.description, e.event_date, e.deadline, e.link, e.created_by, e.created_at,
	(SELECT COUNT(*) FROM registration r WHERE r.event_id = e.id)`

func scanEvent(sc interface{ Scan(...any) error }) (Event, error) {
	var e Event
	err := sc.Scan(&e.ID, &e.Title, &e.Description, &e.EventDate, &e.Deadline, &e.Link, &e.CreatedBy, &e.CreatedAt, &e.RegistrationCount)
	return e, err
}

// InsertEvent writes a new event.
func (r *Repository) InsertEvent(ctx context.Context, e Event) (Event, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO events (title, description, event_date, deadline, link, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, e.Title, e.Description, e.EventDate.Time, e.Deadline.Time, e.Link, e.CreatedBy)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

// UpdateEvent overwrites the editable fields; returns nil if id is unknown.
func (r *Repository) UpdateEvent(ctx context.Context, e Event) (*Event, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET title = $2, description = $3, event_date = $4, deadline = $5, link = $6
		WHERE id = $1
	`, e.ID, e.Title, e.Description, e.EventDate.Time, e.Deadline.Time, e.Link)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	} else if n == 0 {
		return nil, nil
	}
	return r.GetEvent(ctx, e.ID)
}

// GetEvent returns a single event by id, or nil.
func (r *Repository) GetEvent(ctx context.Context, id int64) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// ListEvents returns events matching f ordered by event date descending.
func (r *Repository) ListEvents(ctx context.Context, f EventFilter, today Date) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e`
	args := []any{}
	clauses := []string{}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.CreatedBy != 0 {
		clauses = append(clauses, "e.created_by = "+next(f.CreatedBy))
	}
	if f.Search != "" {
		p := next("%" + escapeLike(f.Search) + "%")
		clauses = append(clauses, "(e.title ILIKE "+p+" OR e.description ILIKE "+p+")")
	}
	if f.OpenOnly {
		clauses = append(clauses, "e.deadline >= "+next(today.Time))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY e.event_date DESC, e.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	res := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// DeleteEvent removes the event row; false if it did not exist. Callers
// remove registrations first.
func (r *Repository) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrForeignKey
		}
		return false, fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	return n > 0, nil
}

// FindRegistration returns the registration for (email, eventID), or nil.
func (r *Repository) FindRegistration(ctx context.Context, email string, eventID int64) (*Registration, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, student_name, event_id, proof_image, registered_at
		FROM registration WHERE email = $1 AND event_id = $2
	`, email, eventID)
	var reg Registration
	if err := row.Scan(&reg.ID, &reg.Email, &reg.StudentName, &reg.EventID, &reg.ProofImage, &reg.RegisteredAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

// InsertRegistration writes a registration; the (email, event_id) unique
// index turns a concurrent duplicate into ErrDuplicate.
func (r *Repository) InsertRegistration(ctx context.Context, reg Registration) (Registration, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO registration (email, student_name, event_id, proof_image, registered_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, reg.Email, reg.StudentName, reg.EventID, reg.ProofImage, reg.RegisteredAt)
	if err := row.Scan(&reg.ID); err != nil {
		if isUniqueViolation(err) {
			return Registration{}, ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return Registration{}, ErrForeignKey
		}
		return Registration{}, fmt.Errorf("insert registration: %w", err)
	}
	return reg, nil
}

// ListRegistrationsByEmail returns a student's registrations joined with
// their events, newest first.
func (r *Repository) ListRegistrationsByEmail(ctx context.Context, email string) ([]RegistrationDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.email, r.student_name, r.event_id, r.proof_image, r.registered_at,
		       e.title, e.description, e.event_date, e.deadline, e.link
		FROM registration r
		JOIN events e ON r.event_id = e.id
		WHERE r.email = $1
		ORDER BY r.registered_at DESC, r.id DESC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()
	res := []RegistrationDetail{}
	for rows.Next() {
		var d RegistrationDetail
		if err := rows.Scan(&d.ID, &d.Email, &d.StudentName, &d.EventID, &d.ProofImage, &d.RegisteredAt,
			&d.Title, &d.Description, &d.EventDate, &d.Deadline, &d.Link); err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// ListRegistrationsByEvent returns an event's registrations, newest first.
func (r *Repository) ListRegistrationsByEvent(ctx context.Context, eventID int64) ([]Registration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, student_name, event_id, proof_image, registered_at
		FROM registration
		WHERE event_id = $1
		ORDER BY registered_at DESC, id DESC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event registrations: %w", err)
	}
	defer rows.Close()
	res := []Registration{}
	for rows.Next() {
		var reg Registration
		if err := rows.Scan(&reg.ID, &reg.Email, &reg.StudentName, &reg.EventID, &reg.ProofImage, &reg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("list event registrations: %w", err)
		}
		res = append(res, reg)
	}
	return res, rows.Err()
}

// DeleteRegistrationsByEvent removes every registration for eventID.
func (r *Repository) DeleteRegistrationsByEvent(ctx context.Context, eventID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registration WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, fmt.Errorf("delete registrations: %w", err)
	}
	return res.RowsAffected()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ Store = (*Repository)(nil)
