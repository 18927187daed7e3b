package user

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	c "resetme/internal/core/domain/common"
	"strings"
	"sync"
	"time"
)

type FakeCredentialRepository struct {
	Users       []User
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeCredentialRepository() *FakeCredentialRepository {
	return &FakeCredentialRepository{Users: make([]User, 0, 10)}
}

func (r *FakeCredentialRepository) Create(ctx context.Context, input CreateUserInput) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not create user %v", input)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	maxID := ID(0)
	for _, u := range r.Users {
		if u.Email == input.Email {
			return u, ErrEmailAlreadyExists
		}
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	// New records start at version 1, same as the schema default.
	u = User{
		ID:           maxID + 1,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Version:      1,
		CreatedAt:    input.CreatedAt,
	}
	r.Users = append(r.Users, u)
	return u, nil
}

func (r *FakeCredentialRepository) GetByID(ctx context.Context, id ID) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not get user by id")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, u := range r.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return u, ErrUserDoesNotExist
}

func (r *FakeCredentialRepository) GetByEmail(ctx context.Context, email c.Email) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not get user by email")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, u := range r.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return u, ErrUserDoesNotExist
}

func (r *FakeCredentialRepository) GetByResetToken(ctx context.Context, token ResetToken) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not get user by reset token")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, u := range r.Users {
		if u.ResetToken.IsPresent && u.ResetToken.Value == token {
			return u, nil
		}
	}
	return u, ErrUserDoesNotExist
}

func (r *FakeCredentialRepository) SetResetToken(ctx context.Context, input SetResetTokenInput) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not set reset token")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, u := range r.Users {
		if u.ID != input.UserID {
			continue
		}
		if u.Version != input.ExpectedVersion {
			return u, ErrStaleRecord
		}
		r.Users[ix].ResetToken = c.NewOptional(input.Token, true)
		r.Users[ix].ResetTokenExpiresAt = c.NewOptional(input.ExpiresAt, true)
		r.Users[ix].Version++
		return r.Users[ix], nil
	}
	return u, ErrUserDoesNotExist
}

func (r *FakeCredentialRepository) UpdatePassword(ctx context.Context, input UpdatePasswordInput) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not update password")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, u := range r.Users {
		if u.ID != input.UserID {
			continue
		}
		if input.ConsumeResetToken.IsPresent {
			if !u.ResetToken.IsPresent || u.ResetToken.Value != input.ConsumeResetToken.Value {
				return u, ErrResetTokenInvalid
			}
			r.Users[ix].ResetToken = c.NewOptional(ResetToken(""), false)
			r.Users[ix].ResetTokenExpiresAt = c.NewOptional(time.Time{}, false)
		}
		r.Users[ix].PasswordHash = input.PasswordHash
		r.Users[ix].Version++
		return r.Users[ix], nil
	}
	return u, ErrUserDoesNotExist
}

type FakeSessionRepository struct {
	UserIdByToken        map[SessionToken]ID
	CredentialRepository CredentialRepository
	ReturnError          bool
	lock                 sync.Mutex
}

func NewFakeSessionRepository(credentialRepository CredentialRepository) *FakeSessionRepository {
	return &FakeSessionRepository{
		UserIdByToken:        make(map[SessionToken]ID),
		CredentialRepository: credentialRepository,
	}
}

func (r *FakeSessionRepository) Create(ctx context.Context, input CreateSessionInput) error {
	if r.ReturnError {
		return fmt.Errorf("could not create session %v", input)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.UserIdByToken[input.Token] = input.UserID
	return nil
}

func (r *FakeSessionRepository) GetUserByToken(ctx context.Context, token SessionToken) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not get user by session token")
	}
	r.lock.Lock()
	userID, ok := r.UserIdByToken[token]
	r.lock.Unlock()
	if !ok {
		return u, ErrUserDoesNotExist
	}
	return r.CredentialRepository.GetByID(ctx, userID)
}

func (r *FakeSessionRepository) Delete(ctx context.Context, token SessionToken) (ID, error) {
	if r.ReturnError {
		return ID(0), fmt.Errorf("could not delete session")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	userID, ok := r.UserIdByToken[token]
	if !ok {
		return ID(0), ErrSessionDoesNotExist
	}
	delete(r.UserIdByToken, token)
	return userID, nil
}

func (r *FakeSessionRepository) DeleteAllForUser(
	ctx context.Context,
	userID ID,
	except c.Optional[SessionToken],
) (deleted int, err error) {
	if r.ReturnError {
		return 0, fmt.Errorf("could not delete sessions for user %d", userID)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for token, id := range r.UserIdByToken {
		if id != userID {
			continue
		}
		if except.IsPresent && token == except.Value {
			continue
		}
		delete(r.UserIdByToken, token)
		deleted++
	}
	return deleted, nil
}

func (r *FakeSessionRepository) SessionCount(userID ID) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	count := 0
	for _, id := range r.UserIdByToken {
		if id == userID {
			count++
		}
	}
	return count
}

type FakePasswordHasher struct{}

func NewFakePasswordHasher() *FakePasswordHasher {
	return &FakePasswordHasher{}
}

func (h *FakePasswordHasher) HashPassword(password RawPassword) (PasswordHash, error) {
	hash := md5.New()
	io.WriteString(hash, string(password))
	return PasswordHash(fmt.Sprintf("%x", hash.Sum(nil))), nil
}

func (h *FakePasswordHasher) ValidatePassword(password RawPassword, hash PasswordHash) bool {
	actualHash, err := h.HashPassword(password)
	if err != nil {
		return false
	}
	return actualHash == hash
}

type FakeResetTokenGenerator struct {
	Token       ResetToken
	Generated   int
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeResetTokenGenerator(token string) *FakeResetTokenGenerator {
	return &FakeResetTokenGenerator{Token: ResetToken(token)}
}

func (g *FakeResetTokenGenerator) GenerateResetToken() (ResetToken, error) {
	if g.ReturnError {
		return ResetToken(""), fmt.Errorf("entropy source exhausted")
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	g.Generated++
	return g.Token, nil
}

// FakeResetProofSigner wraps the raw token with a recognizable prefix so
// tests can assert on proof contents.
type FakeResetProofSigner struct {
	ReturnError bool
}

const fakeProofPrefix = "proof::"

func NewFakeResetProofSigner() *FakeResetProofSigner {
	return &FakeResetProofSigner{}
}

func (s *FakeResetProofSigner) Issue(u User, token ResetToken, now time.Time) (ResetProof, error) {
	if s.ReturnError {
		return ResetProof(""), fmt.Errorf("could not issue reset proof")
	}
	return ResetProof(fakeProofPrefix + string(token)), nil
}

func (s *FakeResetProofSigner) Resolve(proof ResetProof, now time.Time) (ResetToken, error) {
	if !strings.HasPrefix(string(proof), fakeProofPrefix) {
		return ResetToken(""), ErrResetProofInvalid
	}
	return ResetToken(strings.TrimPrefix(string(proof), fakeProofPrefix)), nil
}

type FakeResetTokenSender struct {
	Sent        []ResetToken
	SentTo      []User
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeResetTokenSender() *FakeResetTokenSender {
	return &FakeResetTokenSender{}
}

func (s *FakeResetTokenSender) SendResetToken(ctx context.Context, u User, token ResetToken) error {
	if s.ReturnError {
		return fmt.Errorf("could not send reset token")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Sent = append(s.Sent, token)
	s.SentTo = append(s.SentTo, u)
	return nil
}

func (s *FakeResetTokenSender) SentCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.Sent)
}

type FakeSessionTokenGenerator struct {
	Token string
}

func NewFakeSessionTokenGenerator(token string) *FakeSessionTokenGenerator {
	return &FakeSessionTokenGenerator{Token: token}
}

func (g *FakeSessionTokenGenerator) GenerateSessionToken() SessionToken {
	return SessionToken(g.Token)
}
