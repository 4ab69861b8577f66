package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/ports"
	"github.com/apoclyps/cr8s/internal/pkg/password"
)

var testHasher = password.NewHasher(password.Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
})

type stubUserRepo struct {
	byID       map[int64]*domain.User
	byUsername map[string]*domain.User
	roles      map[int64][]domain.Role
	findErr    error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:       make(map[int64]*domain.User),
		byUsername: make(map[string]*domain.User),
		roles:      make(map[int64][]domain.Role),
	}
}

func (r *stubUserRepo) add(id int64, username, passwordHash string, roles ...domain.RoleCode) {
	u := &domain.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.byID[id] = u
	r.byUsername[username] = u
	for i, code := range roles {
		r.roles[id] = append(r.roles[id], domain.Role{ID: int64(i + 1), Code: code, Name: string(code)})
	}
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) RolesFor(_ context.Context, userID int64) ([]domain.Role, error) {
	return r.roles[userID], nil
}

func (r *stubUserRepo) Create(context.Context, string, string, []domain.RoleCode) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byUsername, u.Username)
	delete(r.byID, id)
	delete(r.roles, id)
	return nil
}

func (r *stubUserRepo) ListWithRoles(context.Context) ([]ports.UserWithRoles, error) {
	return nil, errors.New("not implemented")
}

type stubSessionStore struct {
	entries map[string]int64
	ttls    map[string]time.Duration
	putErr  error
	getErr  error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{entries: make(map[string]int64), ttls: make(map[string]time.Duration)}
}

func (s *stubSessionStore) Put(_ context.Context, token string, userID int64, ttl time.Duration) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.entries[token] = userID
	s.ttls[token] = ttl
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, token string) (int64, error) {
	if s.getErr != nil {
		return 0, s.getErr
	}
	id, ok := s.entries[token]
	if !ok {
		return 0, domain.ErrSessionNotFound
	}
	return id, nil
}

func newTestAuthService(users *stubUserRepo, sessions *stubSessionStore) *AuthService {
	return NewAuthService(users, sessions, testHasher, 3*time.Hour, zerolog.Nop())
}

func mustHash(t *testing.T, plaintext string) string {
	t.Helper()
	h, err := testHasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return h
}

func TestAuthService_Login_Success(t *testing.T) {
	users := newStubUserRepo()
	users.add(1, "alice", mustHash(t, "s3cret"), domain.RoleEditor)
	sessions := newStubSessionStore()
	svc := newTestAuthService(users, sessions)

	token, err := svc.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if len(token) != 128 {
		t.Fatalf("expected 128-char token, got %d chars", len(token))
	}
	if sessions.entries[token] != 1 {
		t.Fatalf("session not stored for user 1")
	}
	if sessions.ttls[token] != 3*time.Hour {
		t.Fatalf("expected 3h TTL, got %s", sessions.ttls[token])
	}
}

func TestAuthService_Login_TokensAreUnique(t *testing.T) {
	users := newStubUserRepo()
	users.add(1, "alice", mustHash(t, "s3cret"))
	sessions := newStubSessionStore()
	svc := newTestAuthService(users, sessions)

	first, err := svc.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	second, err := svc.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if first == second {
		t.Fatalf("two logins produced the same token")
	}
	// Concurrent sessions per user: both tokens stay valid.
	if sessions.entries[first] != 1 || sessions.entries[second] != 1 {
		t.Fatalf("expected both sessions to be live")
	}
}

func TestAuthService_Login_WrongPasswordAndUnknownUserIndistinguishable(t *testing.T) {
	users := newStubUserRepo()
	users.add(1, "alice", mustHash(t, "s3cret"))
	svc := newTestAuthService(users, newStubSessionStore())

	_, wrongPass := svc.Login(context.Background(), "alice", "nope")
	_, unknownUser := svc.Login(context.Background(), "ghost", "nope")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(unknownUser, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", unknownUser)
	}
}

func TestAuthService_Login_StoreWriteFailure(t *testing.T) {
	users := newStubUserRepo()
	users.add(1, "alice", mustHash(t, "s3cret"))
	sessions := newStubSessionStore()
	sessions.putErr = errors.New("redis: connection refused")
	svc := newTestAuthService(users, sessions)

	token, err := svc.Login(context.Background(), "alice", "s3cret")
	if err == nil {
		t.Fatalf("expected error when session write fails")
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("infrastructure failure must not look like bad credentials")
	}
	if token != "" {
		t.Fatalf("token must not be returned when it was never stored")
	}
}

func TestAuthService_Login_DirectoryFailureIsNotUnauthorized(t *testing.T) {
	users := newStubUserRepo()
	users.findErr = errors.New("pg: connection reset")
	svc := newTestAuthService(users, newStubSessionStore())

	_, err := svc.Login(context.Background(), "alice", "s3cret")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}

func TestAuthService_Resolve_Success(t *testing.T) {
	users := newStubUserRepo()
	users.add(7, "bob", mustHash(t, "pw"))
	sessions := newStubSessionStore()
	svc := newTestAuthService(users, sessions)

	token, err := svc.Login(context.Background(), "bob", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	user, err := svc.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if user.ID != 7 || user.Username != "bob" {
		t.Fatalf("resolved wrong user: %+v", user)
	}
}

func TestAuthService_Resolve_UnknownToken(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), newStubSessionStore())

	_, err := svc.Resolve(context.Background(), "wrong")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_Resolve_DanglingSession(t *testing.T) {
	users := newStubUserRepo()
	users.add(7, "bob", mustHash(t, "pw"))
	sessions := newStubSessionStore()
	svc := newTestAuthService(users, sessions)

	token, err := svc.Login(context.Background(), "bob", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Delete the user after the token was issued: the resolver must
	// re-check the directory rather than trust the session entry.
	if err := users.Delete(context.Background(), 7); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	_, err = svc.Resolve(context.Background(), token)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for dangling session, got %v", err)
	}
}

func TestAuthService_Resolve_StoreOutageIsNotUnauthenticated(t *testing.T) {
	sessions := newStubSessionStore()
	sessions.getErr = errors.New("redis: connection refused")
	svc := newTestAuthService(newStubUserRepo(), sessions)

	_, err := svc.Resolve(context.Background(), "sometoken")
	if err == nil || errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("store outage must surface as a server-side failure, got %v", err)
	}
}

func TestGenerateSessionToken_Alphanumeric(t *testing.T) {
	token, err := generateSessionToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if len(token) != sessionTokenLength {
		t.Fatalf("expected %d chars, got %d", sessionTokenLength, len(token))
	}
	for _, c := range token {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			t.Fatalf("token contains non-alphanumeric byte %q", c)
		}
	}
}
