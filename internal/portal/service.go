package portal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"eventportal/internal/apperr"
	"eventportal/internal/auth"
	"eventportal/internal/metrics"
	"eventportal/internal/proof"
)

// ErrDuplicate is returned by stores when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate key")

// ErrForeignKey is returned by stores when a write references an event that
// no longer exists, or a delete would orphan registrations.
var ErrForeignKey = errors.New("foreign key violation")

// UserStore persists user accounts. FindUserByEmail returns (nil, nil) when
// no user matches.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	InsertUser(ctx context.Context, u User) (User, error)
}

// EventStore persists events. Lookups return (nil, nil) for unknown ids.
type EventStore interface {
	InsertEvent(ctx context.Context, e Event) (Event, error)
	UpdateEvent(ctx context.Context, e Event) (*Event, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	ListEvents(ctx context.Context, f EventFilter, today Date) ([]Event, error)
	DeleteEvent(ctx context.Context, id int64) (bool, error)
}

// RegistrationStore persists registrations. InsertRegistration must return
// ErrDuplicate when (email, event_id) already exists.
type RegistrationStore interface {
	FindRegistration(ctx context.Context, email string, eventID int64) (*Registration, error)
	InsertRegistration(ctx context.Context, r Registration) (Registration, error)
	ListRegistrationsByEmail(ctx context.Context, email string) ([]RegistrationDetail, error)
	ListRegistrationsByEvent(ctx context.Context, eventID int64) ([]Registration, error)
	DeleteRegistrationsByEvent(ctx context.Context, eventID int64) (int64, error)
}

// Store is the full persistence surface used by Service.
type Store interface {
	UserStore
	EventStore
	RegistrationStore
}

// Hasher is the credential primitive.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Options tunes a Service.
type Options struct {
	// QueryTimeout bounds every persistence call.
	QueryTimeout time.Duration
	// Location decides which calendar day "today" is.
	Location *time.Location
	Now      func() time.Time
}

// Service implements the user, event and registration workflows. Every
// operation takes the caller's session explicitly.
type Service struct {
	store    Store
	creds    Hasher
	proofs   proof.Store
	validate *validator.Validate
	timeout  time.Duration
	loc      *time.Location
	now      func() time.Time
}

// NewService creates a service backed by a store.
func NewService(store Store, creds Hasher, proofs proof.Store, opts Options) *Service {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 5 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:    store,
		creds:    creds,
		proofs:   proofs,
		validate: newValidator(),
		timeout:  opts.QueryTimeout,
		loc:      opts.Location,
		now:      opts.Now,
	}
}

// Today returns the current calendar day.
func (s *Service) Today() Date {
	return DateOf(s.now().In(s.loc))
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Wrap(apperr.ErrStorageUnavailable, err)
}

// ---------- Users ----------

// Signup creates an account whose role is derived from the email domain.
func (s *Service) Signup(ctx context.Context, in SignupInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.check(in); err != nil {
		return User{}, err
	}
	role, ok := auth.ResolveRole(in.Email)
	if !ok {
		return User{}, apperr.ErrInvalidDomain
	}

	qctx, cancel := s.bound(ctx)
	existing, err := s.store.FindUserByEmail(qctx, in.Email)
	cancel()
	if err != nil {
		return User{}, unavailable(err)
	}
	if existing != nil {
		return User{}, apperr.ErrEmailTaken
	}

	hash, err := s.creds.Hash(in.Password)
	if err != nil {
		return User{}, apperr.Wrap(apperr.ErrInternal, err)
	}

	qctx, cancel = s.bound(ctx)
	defer cancel()
	u, err := s.store.InsertUser(qctx, User{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: role})
	if errors.Is(err, ErrDuplicate) {
		return User{}, apperr.ErrEmailTaken
	}
	if err != nil {
		return User{}, unavailable(err)
	}
	log.Info().Int64("user_id", u.ID).Str("role", string(role)).Msg("user signed up")
	return u, nil
}

// Login verifies credentials and returns the session snapshot to store.
func (s *Service) Login(ctx context.Context, in LoginInput) (sess auth.Session, err error) {
	defer func() { metrics.Logins.WithLabelValues(metrics.Outcome(err)).Inc() }()

	in.Email = strings.TrimSpace(in.Email)
	if err := s.check(in); err != nil {
		return auth.Session{}, err
	}
	qctx, cancel := s.bound(ctx)
	defer cancel()
	u, err := s.store.FindUserByEmail(qctx, in.Email)
	if err != nil {
		return auth.Session{}, unavailable(err)
	}
	if u == nil {
		return auth.Session{}, apperr.ErrNoAccount
	}
	if !s.creds.Verify(in.Password, u.PasswordHash) {
		return auth.Session{}, apperr.ErrBadPassword
	}
	return auth.Session{UserID: u.ID, Username: u.Name, Email: u.Email, Role: u.Role}, nil
}

// ---------- Events ----------

func (s *Service) eventFields(in EventInput) (Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Link = strings.TrimSpace(in.Link)
	if err := s.check(in); err != nil {
		return Event{}, err
	}
	eventDate, err := ParseDate(in.EventDate)
	if err != nil {
		return Event{}, apperr.Validation("event_date must be a date in YYYY-MM-DD format")
	}
	deadline, err := ParseDate(in.Deadline)
	if err != nil {
		return Event{}, apperr.Validation("deadline must be a date in YYYY-MM-DD format")
	}
	return Event{
		Title:       in.Title,
		Description: in.Description,
		EventDate:   eventDate,
		Deadline:    deadline,
		Link:        in.Link,
	}, nil
}

// CreateEvent adds an event owned by the calling faculty member.
func (s *Service) CreateEvent(ctx context.Context, sess *auth.Session, in EventInput) (Event, error) {
	if err := auth.Authorize(sess, auth.RequireRole(auth.RoleFaculty)); err != nil {
		return Event{}, err
	}
	e, err := s.eventFields(in)
	if err != nil {
		return Event{}, err
	}
	e.CreatedBy = sess.UserID

	qctx, cancel := s.bound(ctx)
	defer cancel()
	created, err := s.store.InsertEvent(qctx, e)
	if err != nil {
		return Event{}, unavailable(err)
	}
	log.Info().Int64("event_id", created.ID).Int64("created_by", sess.UserID).Msg("event created")
	return created, nil
}

// UpdateEvent replaces an event's editable fields. Any faculty member may
// edit any event; ownership is only enforced on delete.
func (s *Service) UpdateEvent(ctx context.Context, sess *auth.Session, id int64, in EventInput) (Event, error) {
	if err := auth.Authorize(sess, auth.RequireRole(auth.RoleFaculty)); err != nil {
		return Event{}, err
	}
	e, err := s.eventFields(in)
	if err != nil {
		return Event{}, err
	}
	e.ID = id

	qctx, cancel := s.bound(ctx)
	defer cancel()
	updated, err := s.store.UpdateEvent(qctx, e)
	if err != nil {
		return Event{}, unavailable(err)
	}
	if updated == nil {
		return Event{}, apperr.ErrEventNotFound
	}
	return *updated, nil
}

// DeleteEvent removes an event and, first, all its registrations. Admins may
// delete any event; faculty only their own.
func (s *Service) DeleteEvent(ctx context.Context, sess *auth.Session, id int64) error {
	if err := auth.Authorize(sess, auth.Authenticated()); err != nil {
		return err
	}
	ev, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.Authorize(sess, auth.OwnerOrRole(ev.CreatedBy, auth.RoleAdmin)); err != nil {
		return err
	}

	// A registration inserted between the purge and the delete trips the
	// foreign key; purge once more and retry.
	var removed int64
	for attempt := 1; ; attempt++ {
		n, ok, err := s.deleteEventOnce(ctx, id)
		removed += n
		if errors.Is(err, ErrForeignKey) && attempt < deleteAttempts {
			continue
		}
		if err != nil {
			return unavailable(err)
		}
		if !ok {
			return apperr.ErrEventNotFound
		}
		break
	}
	log.Info().Int64("event_id", id).Int64("registrations_removed", removed).Int64("by", sess.UserID).Msg("event deleted")
	return nil
}

const deleteAttempts = 2

func (s *Service) deleteEventOnce(ctx context.Context, id int64) (int64, bool, error) {
	qctx, cancel := s.bound(ctx)
	removed, err := s.store.DeleteRegistrationsByEvent(qctx, id)
	cancel()
	if err != nil {
		return 0, false, err
	}
	qctx, cancel = s.bound(ctx)
	defer cancel()
	ok, err := s.store.DeleteEvent(qctx, id)
	return removed, ok, err
}

// GetEvent returns one event.
func (s *Service) GetEvent(ctx context.Context, id int64) (Event, error) {
	qctx, cancel := s.bound(ctx)
	defer cancel()
	ev, err := s.store.GetEvent(qctx, id)
	if err != nil {
		return Event{}, unavailable(err)
	}
	if ev == nil {
		return Event{}, apperr.ErrEventNotFound
	}
	return *ev, nil
}

// ListEvents returns events ordered by event date, newest first.
func (s *Service) ListEvents(ctx context.Context, f EventFilter) ([]Event, error) {
	f.Search = strings.TrimSpace(f.Search)
	qctx, cancel := s.bound(ctx)
	defer cancel()
	events, err := s.store.ListEvents(qctx, f, s.Today())
	if err != nil {
		return nil, unavailable(err)
	}
	return events, nil
}

// MyEvents lists the events created by the calling faculty member.
func (s *Service) MyEvents(ctx context.Context, sess *auth.Session) ([]Event, error) {
	if err := auth.Authorize(sess, auth.RequireRole(auth.RoleFaculty)); err != nil {
		return nil, err
	}
	return s.ListEvents(ctx, EventFilter{CreatedBy: sess.UserID})
}

// ---------- Registrations ----------

// Register signs the calling student up for an event with an uploaded proof.
// A concurrent duplicate that slips past the existence check is rejected by
// the store's unique constraint and reported as AlreadyRegistered.
func (s *Service) Register(ctx context.Context, sess *auth.Session, eventID int64, up *proof.Upload) (reg Registration, err error) {
	defer func() { metrics.Registrations.WithLabelValues(metrics.Outcome(err)).Inc() }()

	if err := auth.Authorize(sess, auth.RequireRole(auth.RoleStudent)); err != nil {
		return Registration{}, err
	}
	if up == nil || len(up.Data) == 0 {
		return Registration{}, apperr.ErrMissingProof
	}
	if err := proof.Validate(up); err != nil {
		return Registration{}, err
	}

	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return Registration{}, err
	}
	if s.Today().After(ev.Deadline.Time) {
		return Registration{}, apperr.ErrDeadlinePassed
	}

	qctx, cancel := s.bound(ctx)
	existing, err := s.store.FindRegistration(qctx, sess.Email, eventID)
	cancel()
	if err != nil {
		return Registration{}, unavailable(err)
	}
	if existing != nil {
		return Registration{}, apperr.ErrAlreadyRegistered
	}

	pctx, cancel := s.bound(ctx)
	ref, err := s.proofs.Put(pctx, up.Data, up.Filename)
	cancel()
	if err != nil {
		return Registration{}, unavailable(err)
	}

	qctx, cancel = s.bound(ctx)
	defer cancel()
	reg, err = s.store.InsertRegistration(qctx, Registration{
		Email:        sess.Email,
		StudentName:  sess.Username,
		EventID:      eventID,
		ProofImage:   ref,
		RegisteredAt: s.now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Str("artifact", ref).Int64("event_id", eventID).Msg("registration insert failed, proof artifact orphaned")
		switch {
		case errors.Is(err, ErrDuplicate):
			return Registration{}, apperr.ErrAlreadyRegistered
		case errors.Is(err, ErrForeignKey):
			return Registration{}, apperr.ErrEventNotFound
		}
		return Registration{}, unavailable(err)
	}
	return reg, nil
}

// MyRegistrations lists the calling student's registrations, newest first.
func (s *Service) MyRegistrations(ctx context.Context, sess *auth.Session) ([]RegistrationDetail, error) {
	if err := auth.Authorize(sess, auth.RequireRole(auth.RoleStudent)); err != nil {
		return nil, err
	}
	qctx, cancel := s.bound(ctx)
	defer cancel()
	regs, err := s.store.ListRegistrationsByEmail(qctx, sess.Email)
	if err != nil {
		return nil, unavailable(err)
	}
	return regs, nil
}

// IsRegistered reports whether the calling student is registered for eventID.
func (s *Service) IsRegistered(ctx context.Context, sess *auth.Session, eventID int64) (bool, error) {
	if err := auth.Authorize(sess, auth.RequireRole(auth.RoleStudent)); err != nil {
		return false, err
	}
	qctx, cancel := s.bound(ctx)
	defer cancel()
	reg, err := s.store.FindRegistration(qctx, sess.Email, eventID)
	if err != nil {
		return false, unavailable(err)
	}
	return reg != nil, nil
}

// EventRegistrations lists an event's registrations for faculty and admins.
func (s *Service) EventRegistrations(ctx context.Context, sess *auth.Session, eventID int64) ([]Registration, error) {
	if err := auth.Authorize(sess, auth.AnyOfRoles(auth.RoleFaculty, auth.RoleAdmin)); err != nil {
		return nil, err
	}
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	qctx, cancel := s.bound(ctx)
	defer cancel()
	regs, err := s.store.ListRegistrationsByEvent(qctx, eventID)
	if err != nil {
		return nil, unavailable(err)
	}
	return regs, nil
}
