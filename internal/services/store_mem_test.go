package services

import (
	"database/sql"
	"time"

	"uniauth/internal/models"
	"uniauth/internal/repositories"
)

// In-memory Store used by the service tests. InTx snapshots the state and
// restores it when the unit of work fails, mirroring rollback semantics.

type memState struct {
	users      []models.User
	otps       []models.Otp
	nextUserID int
	nextOtpID  int64
}

func (st *memState) clone() *memState {
	c := &memState{
		users:      append([]models.User(nil), st.users...),
		otps:       append([]models.Otp(nil), st.otps...),
		nextUserID: st.nextUserID,
		nextOtpID:  st.nextOtpID,
	}
	return c
}

type memStore struct {
	state *memState
}

func newMemStore() *memStore {
	return &memStore{state: &memState{nextUserID: 1, nextOtpID: 1}}
}

func (s *memStore) Repos() repositories.Repos {
	return repositories.Repos{
		Users: &memUserRepo{st: s.state},
		Otps:  &memOtpRepo{st: s.state},
	}
}

func (s *memStore) InTx(fn func(r repositories.Repos) error) error {
	snapshot := s.state.clone()
	if err := fn(s.Repos()); err != nil {
		*s.state = *snapshot
		return err
	}
	return nil
}

type memUserRepo struct {
	st *memState
}

func (r *memUserRepo) Create(user *models.User) error {
	user.ID = r.st.nextUserID
	r.st.nextUserID++
	r.st.users = append(r.st.users, *user)
	return nil
}

func (r *memUserRepo) find(match func(models.User) bool) (*models.User, error) {
	for i := range r.st.users {
		if match(r.st.users[i]) {
			u := r.st.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByID(id int) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *memUserRepo) GetByUsername(username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *memUserRepo) GetByEmail(email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *memUserRepo) GetByUsernameOrEmail(username, email string) (*models.User, error) {
	if u, _ := r.GetByUsername(username); u != nil {
		return u, nil
	}
	return r.GetByEmail(email)
}

func (r *memUserRepo) UpdatePassword(email, passwordHash string) error {
	for i := range r.st.users {
		if r.st.users[i].Email == email {
			r.st.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *memUserRepo) MarkEmailVerified(email string) (bool, error) {
	for i := range r.st.users {
		if r.st.users[i].Email == email && !r.st.users[i].EmailVerified {
			r.st.users[i].EmailVerified = true
			return true, nil
		}
	}
	return false, nil
}

type memOtpRepo struct {
	st *memState
}

func (r *memOtpRepo) Create(otp *models.Otp) error {
	otp.ID = r.st.nextOtpID
	r.st.nextOtpID++
	r.st.otps = append(r.st.otps, *otp)
	return nil
}

func (r *memOtpRepo) LatestActive(email string, otpType models.OtpType) (*models.Otp, error) {
	var latest *models.Otp
	for i := range r.st.otps {
		o := &r.st.otps[i]
		if o.Email != email || o.Type != otpType || o.Verified {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) ||
			(o.CreatedAt.Equal(latest.CreatedAt) && o.ID > latest.ID) {
			latest = o
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *memOtpRepo) CountRecent(email string, otpType models.OtpType, since time.Time) (int, error) {
	n := 0
	for _, o := range r.st.otps {
		if o.Email == email && o.Type == otpType && o.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (r *memOtpRepo) InvalidateActive(email string, otpType models.OtpType) error {
	for i := range r.st.otps {
		if r.st.otps[i].Email == email && r.st.otps[i].Type == otpType && !r.st.otps[i].Verified {
			r.st.otps[i].Verified = true
		}
	}
	return nil
}

func (r *memOtpRepo) IncrementAttempts(id int64) (int, error) {
	for i := range r.st.otps {
		if r.st.otps[i].ID == id {
			r.st.otps[i].Attempts++
			return r.st.otps[i].Attempts, nil
		}
	}
	return 0, sql.ErrNoRows
}

func (r *memOtpRepo) DeleteExpired(now time.Time) (int64, error) {
	var kept []models.Otp
	var removed int64
	for _, o := range r.st.otps {
		if o.ExpiresAt.Before(now) {
			removed++
			continue
		}
		kept = append(kept, o)
	}
	r.st.otps = kept
	return removed, nil
}

// plainHasher keeps the tests fast and the hashed values inspectable.
type plainHasher struct{}

func (plainHasher) Hash(secret string) (string, error) { return "#" + secret, nil }
func (plainHasher) Verify(secret, digest string) bool  { return "#"+secret == digest }

// memMailer records sent codes instead of dialing SMTP.
type memMailer struct {
	sent []sentMail
}

type sentMail struct {
	email string
	code  string
	typ   models.OtpType
}

func (m *memMailer) SendOtpEmail(email, code string, otpType models.OtpType) error {
	m.sent = append(m.sent, sentMail{email: email, code: code, typ: otpType})
	return nil
}
