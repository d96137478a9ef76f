package service

import (
	"context"
	"time"

	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/repository"
)

// In-memory stand-ins for the repository layer. They reproduce the
// sentinel errors the real DAOs surface so errors.Is checks behave the
// same way in tests.

type fakeUserRepo struct {
	nextID uint
	users  map[uint]domain.User

	deleted []uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		nextID: 1,
		users:  make(map[uint]domain.User),
	}
}

func (r *fakeUserRepo) add(user domain.User) domain.User {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user

	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
		if u.Username == user.Username {
			return domain.User{}, repository.ErrUserUsernameExists
		}
	}

	return r.add(user), nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return domain.User{}, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}

	return domain.User{}, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	r.users[user.ID] = user

	return user, nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id uint, role domain.Role) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Role = role
	r.users[id] = user

	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uint, hash string) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Password = hash
	r.users[id] = user

	return nil
}

func (r *fakeUserRepo) UpdateProfilePicture(_ context.Context, id uint, path string) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.ProfilePicture = path
	r.users[id] = user

	return nil
}

func (r *fakeUserRepo) ListWithStats(_ context.Context) ([]domain.UserWithStats, error) {
	out := make([]domain.UserWithStats, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, domain.UserWithStats{User: u})
	}

	return out, nil
}

func (r *fakeUserRepo) DeleteCascade(_ context.Context, id uint) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	r.deleted = append(r.deleted, id)

	return nil
}

type fakeRunRepo struct {
	nextID uint
	runs   map[uint]domain.Run

	deleted []uint
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{
		nextID: 1,
		runs:   make(map[uint]domain.Run),
	}
}

func (r *fakeRunRepo) add(run domain.Run) domain.Run {
	run.ID = r.nextID
	r.nextID++
	r.runs[run.ID] = run

	return run
}

func (r *fakeRunRepo) Create(_ context.Context, run domain.Run) (domain.Run, error) {
	return r.add(run), nil
}

func (r *fakeRunRepo) FindByID(_ context.Context, id uint) (domain.Run, error) {
	run, ok := r.runs[id]
	if !ok {
		return domain.Run{}, repository.ErrRunNotFound
	}

	return run, nil
}

func (r *fakeRunRepo) List(_ context.Context, _ domain.RunFilters, authenticated bool) ([]domain.Run, error) {
	out := make([]domain.Run, 0, len(r.runs))
	for _, run := range r.runs {
		if run.IsPrivate && !authenticated {
			continue
		}
		out = append(out, run)
	}

	return out, nil
}

func (r *fakeRunRepo) ListAll(_ context.Context) ([]domain.Run, error) {
	out := make([]domain.Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run)
	}

	return out, nil
}

func (r *fakeRunRepo) Update(_ context.Context, run domain.Run) (domain.Run, error) {
	if _, ok := r.runs[run.ID]; !ok {
		return domain.Run{}, repository.ErrRunNotFound
	}
	r.runs[run.ID] = run

	return run, nil
}

func (r *fakeRunRepo) DeleteCascade(_ context.Context, id uint) error {
	if _, ok := r.runs[id]; !ok {
		return repository.ErrRunNotFound
	}
	delete(r.runs, id)
	r.deleted = append(r.deleted, id)

	return nil
}

func (r *fakeRunRepo) ListOrganizedBy(_ context.Context, userID uint, _ int) ([]domain.Run, error) {
	var out []domain.Run
	for _, run := range r.runs {
		if run.OrganizerID == userID {
			out = append(out, run)
		}
	}

	return out, nil
}

func (r *fakeRunRepo) ListParticipatedBy(_ context.Context, _ uint, _ int) ([]domain.Run, error) {
	return nil, nil
}

type participationKey struct {
	runID  uint
	userID uint
}

type fakeParticipationRepo struct {
	participations map[participationKey]domain.Participation

	// runs lets HasSharedConfirmedRun resolve organizer and date.
	runs *fakeRunRepo
}

func newFakeParticipationRepo(runs *fakeRunRepo) *fakeParticipationRepo {
	return &fakeParticipationRepo{
		participations: make(map[participationKey]domain.Participation),
		runs:           runs,
	}
}

func (r *fakeParticipationRepo) set(runID, userID uint, status domain.ParticipationStatus) {
	r.participations[participationKey{runID, userID}] = domain.Participation{
		UserID:   userID,
		RunID:    runID,
		Status:   status,
		JoinedAt: time.Now(),
	}
}

func (r *fakeParticipationRepo) Find(_ context.Context, runID, userID uint) (domain.Participation, error) {
	p, ok := r.participations[participationKey{runID, userID}]
	if !ok {
		return domain.Participation{}, repository.ErrNotParticipant
	}

	return p, nil
}

func (r *fakeParticipationRepo) Join(_ context.Context, runID, userID uint, status domain.ParticipationStatus) (domain.Participation, error) {
	key := participationKey{runID, userID}
	if existing, ok := r.participations[key]; ok {
		if existing.Status != domain.ParticipationCancelled {
			return domain.Participation{}, repository.ErrAlreadyJoined
		}
		existing.Status = status
		existing.JoinedAt = time.Now()
		r.participations[key] = existing

		return existing, nil
	}

	p := domain.Participation{
		UserID:   userID,
		RunID:    runID,
		Status:   status,
		JoinedAt: time.Now(),
	}
	r.participations[key] = p

	return p, nil
}

func (r *fakeParticipationRepo) UpdateStatus(_ context.Context, runID, userID uint, status domain.ParticipationStatus) error {
	key := participationKey{runID, userID}
	p, ok := r.participations[key]
	if !ok {
		return repository.ErrNotParticipant
	}
	p.Status = status
	r.participations[key] = p

	return nil
}

func (r *fakeParticipationRepo) ListByRun(_ context.Context, runID uint) ([]domain.Participation, error) {
	var out []domain.Participation
	for key, p := range r.participations {
		if key.runID == runID {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *fakeParticipationRepo) HasSharedConfirmedRun(_ context.Context, userA, userB uint, organizerScoped, pastOnly bool) (bool, error) {
	for runID, run := range r.runs.runs {
		pa, okA := r.participations[participationKey{runID, userA}]
		pb, okB := r.participations[participationKey{runID, userB}]
		if !okA || !okB {
			continue
		}
		if pa.Status != domain.ParticipationConfirmed || pb.Status != domain.ParticipationConfirmed {
			continue
		}
		if organizerScoped && run.OrganizerID != userA && run.OrganizerID != userB {
			continue
		}
		if pastOnly && !run.Date.Before(time.Now()) {
			continue
		}

		return true, nil
	}

	return false, nil
}

type userRatingKey struct {
	raterID uint
	rateeID uint
}

type runRatingKey struct {
	userID uint
	runID  uint
}

type fakeRatingRepo struct {
	userRatings map[userRatingKey]domain.UserRating
	runRatings  map[runRatingKey]domain.RunRating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{
		userRatings: make(map[userRatingKey]domain.UserRating),
		runRatings:  make(map[runRatingKey]domain.RunRating),
	}
}

func (r *fakeRatingRepo) UpsertUserRating(_ context.Context, rating domain.UserRating) (domain.UserRating, error) {
	rating.CreatedAt = time.Now()
	r.userRatings[userRatingKey{rating.RaterID, rating.RateeID}] = rating

	return rating, nil
}

func (r *fakeRatingRepo) ListReceivedByUser(_ context.Context, userID uint) ([]domain.UserRating, error) {
	var out []domain.UserRating
	for key, rating := range r.userRatings {
		if key.rateeID == userID {
			out = append(out, rating)
		}
	}

	return out, nil
}

func (r *fakeRatingRepo) UpsertRunRating(_ context.Context, rating domain.RunRating) (domain.RunRating, error) {
	rating.CreatedAt = time.Now()
	r.runRatings[runRatingKey{rating.UserID, rating.RunID}] = rating

	return rating, nil
}

func (r *fakeRatingRepo) ListByRun(_ context.Context, runID uint) ([]domain.RunRating, error) {
	var out []domain.RunRating
	for key, rating := range r.runRatings {
		if key.runID == runID {
			out = append(out, rating)
		}
	}

	return out, nil
}

type fakeMessageRepo struct {
	nextID   uint
	messages []domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{nextID: 1}
}

func (r *fakeMessageRepo) Insert(_ context.Context, message domain.Message) (domain.Message, error) {
	message.ID = r.nextID
	message.SentAt = time.Now()
	r.nextID++
	r.messages = append(r.messages, message)

	return message, nil
}

func (r *fakeMessageRepo) ListBetween(_ context.Context, userA, userB uint) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if (m.SenderID == userA && m.RecipientID == userB) || (m.SenderID == userB && m.RecipientID == userA) {
			out = append(out, m)
		}
	}

	return out, nil
}

func (r *fakeMessageRepo) ListConversations(_ context.Context, userID uint) ([]domain.Conversation, error) {
	seen := make(map[uint]bool)
	var out []domain.Conversation
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		var other uint
		switch userID {
		case m.SenderID:
			other = m.RecipientID
		case m.RecipientID:
			other = m.SenderID
		default:
			continue
		}
		if seen[other] {
			continue
		}
		seen[other] = true
		out = append(out, domain.Conversation{
			OtherUserID:     other,
			LastMessage:     m.Content,
			LastMessageTime: m.SentAt,
		})
	}

	return out, nil
}

func (r *fakeMessageRepo) CountReceived(_ context.Context, userID uint) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.RecipientID == userID {
			count++
		}
	}

	return count, nil
}

// stubEligibility answers with fixed values so service tests can force
// either side of the gate.
type stubEligibility struct {
	canCommunicate bool
	canRate        bool
}

func (s *stubEligibility) CanCommunicate(_ context.Context, _, _ uint) (bool, error) {
	return s.canCommunicate, nil
}

func (s *stubEligibility) CanRate(_ context.Context, _, _ uint) (bool, error) {
	return s.canRate, nil
}

type fakeMailer struct {
	sent []string // recipient addresses, in order
}

func (m *fakeMailer) Send(to, _, _, _ string) error {
	m.sent = append(m.sent, to)

	return nil
}
