package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/linguahub/client/internal/domain/entities"
	"github.com/linguahub/client/internal/storage"
)

type fakeServerError struct {
	msg string
}

func (e *fakeServerError) Error() string      { return "api: " + e.msg }
func (e *fakeServerError) APIMessage() string { return e.msg }

type fakeAuthAPI struct {
	loginRes    *entities.AuthResult
	loginErr    error
	registerRes *entities.AuthResult
	registerErr error

	refreshToken string
	refreshErr   error
	refreshCalls int
}

func (f *fakeAuthAPI) Login(context.Context, string, string) (*entities.AuthResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAuthAPI) Register(context.Context, string, string, string) (*entities.AuthResult, error) {
	return f.registerRes, f.registerErr
}

func (f *fakeAuthAPI) RefreshToken(context.Context, string) (string, error) {
	f.refreshCalls++
	return f.refreshToken, f.refreshErr
}

type fakeUserAPI struct {
	profile    *entities.User
	profileErr error
}

func (f *fakeUserAPI) Profile(context.Context) (*entities.User, error) {
	return f.profile, f.profileErr
}

func (f *fakeUserAPI) UpdateProfile(_ context.Context, patch entities.UserPatch) (*entities.User, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	updated := patch.Apply(*f.profile)
	return &updated, nil
}

func authResult() *entities.AuthResult {
	return &entities.AuthResult{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User: entities.User{
			ID:     "u1",
			Name:   "Alice",
			Email:  "alice@example.com",
			Level:  entities.LevelA1,
			Points: 40,
		},
	}
}

// checkAtomic verifies the session invariant: a user exists if and only if
// an access token does.
func checkAtomic(t *testing.T, s *SessionService) {
	t.Helper()
	hasUser := s.CurrentUser() != nil
	hasToken := s.AccessToken() != ""
	if hasUser != hasToken {
		t.Fatalf("session atomicity violated: user=%v token=%v", hasUser, hasToken)
	}
}

func TestSessionLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores tokens and user together", func(t *testing.T) {
		store := storage.NewSessionStorage()
		s := NewSessionService(&fakeAuthAPI{loginRes: authResult()}, &fakeUserAPI{}, store, zap.NewNop())

		user, err := s.Login(ctx, "alice@example.com", "secret")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if user.Name != "Alice" {
			t.Errorf("expected Alice, got %s", user.Name)
		}
		checkAtomic(t, s)

		rec, ok, _ := store.Load(ctx)
		if !ok {
			t.Fatal("expected persisted session")
		}
		if rec.AccessToken != "access-1" || rec.RefreshToken != "refresh-1" || rec.UserJSON == "" {
			t.Errorf("persisted record incomplete: %+v", rec)
		}
	})

	t.Run("failure carries server message and writes nothing", func(t *testing.T) {
		store := storage.NewSessionStorage()
		api := &fakeAuthAPI{loginErr: &fakeServerError{msg: "invalid credentials"}}
		s := NewSessionService(api, &fakeUserAPI{}, store, zap.NewNop())

		_, err := s.Login(ctx, "alice@example.com", "wrong")
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %v", err)
		}
		if authErr.Message != "invalid credentials" {
			t.Errorf("expected server message, got %q", authErr.Message)
		}
		if _, ok, _ := store.Load(ctx); ok {
			t.Error("no state should be persisted on failed login")
		}
		checkAtomic(t, s)
	})

	t.Run("failure without server message falls back to generic", func(t *testing.T) {
		s := NewSessionService(&fakeAuthAPI{loginErr: errors.New("connection refused")}, &fakeUserAPI{}, storage.NewSessionStorage(), zap.NewNop())

		_, err := s.Login(ctx, "a@b.c", "pw")
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %v", err)
		}
		if authErr.Message != "login failed" {
			t.Errorf("expected generic message, got %q", authErr.Message)
		}
	})
}

func TestSessionRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate email surfaces as AuthError", func(t *testing.T) {
		api := &fakeAuthAPI{registerErr: &fakeServerError{msg: "user already exists"}}
		s := NewSessionService(api, &fakeUserAPI{}, storage.NewSessionStorage(), zap.NewNop())

		_, err := s.Register(ctx, "Alice", "alice@example.com", "secret")
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %v", err)
		}
		if authErr.Message != "user already exists" {
			t.Errorf("unexpected message %q", authErr.Message)
		}
	})
}

func TestSessionRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("restores a valid persisted session", func(t *testing.T) {
		store := storage.NewSessionStorage()
		first := NewSessionService(&fakeAuthAPI{loginRes: authResult()}, &fakeUserAPI{}, store, zap.NewNop())
		if _, err := first.Login(ctx, "alice@example.com", "secret"); err != nil {
			t.Fatalf("login: %v", err)
		}

		second := NewSessionService(&fakeAuthAPI{}, &fakeUserAPI{}, store, zap.NewNop())
		user := second.Restore(ctx)
		if user == nil || user.ID != "u1" {
			t.Fatalf("expected restored user u1, got %+v", user)
		}
		checkAtomic(t, second)
	})

	t.Run("wipes malformed persisted user", func(t *testing.T) {
		store := storage.NewSessionStorage()
		_ = store.Save(ctx, entities.SessionRecord{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			UserJSON:     "{not json",
		})

		s := NewSessionService(&fakeAuthAPI{}, &fakeUserAPI{}, store, zap.NewNop())
		if user := s.Restore(ctx); user != nil {
			t.Fatalf("expected nil user, got %+v", user)
		}
		if _, ok, _ := store.Load(ctx); ok {
			t.Error("malformed session should be wiped")
		}
		checkAtomic(t, s)
	})

	t.Run("empty store leaves session anonymous", func(t *testing.T) {
		s := NewSessionService(&fakeAuthAPI{}, &fakeUserAPI{}, storage.NewSessionStorage(), zap.NewNop())
		if user := s.Restore(ctx); user != nil {
			t.Fatalf("expected nil user, got %+v", user)
		}
		checkAtomic(t, s)
	})
}

func TestSessionLogout(t *testing.T) {
	ctx := context.Background()
	store := storage.NewSessionStorage()
	s := NewSessionService(&fakeAuthAPI{loginRes: authResult()}, &fakeUserAPI{}, store, zap.NewNop())

	var observed []*entities.User
	s.OnChange(func(u *entities.User) { observed = append(observed, u) })

	if _, err := s.Login(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	s.Logout(ctx)

	if s.CurrentUser() != nil || s.AccessToken() != "" {
		t.Error("logout must clear the in-memory session")
	}
	if _, ok, _ := store.Load(ctx); ok {
		t.Error("logout must clear the persisted session")
	}
	if len(observed) != 2 || observed[0] == nil || observed[1] != nil {
		t.Errorf("expected login+logout notifications, got %d", len(observed))
	}
	checkAtomic(t, s)
}

func TestSessionUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("merges and re-persists", func(t *testing.T) {
		store := storage.NewSessionStorage()
		s := NewSessionService(&fakeAuthAPI{loginRes: authResult()}, &fakeUserAPI{}, store, zap.NewNop())
		if _, err := s.Login(ctx, "alice@example.com", "secret"); err != nil {
			t.Fatalf("login: %v", err)
		}

		name := "Alice B"
		points := 55
		updated := s.UpdateUser(ctx, entities.UserPatch{Name: &name, Points: &points})
		if updated == nil || updated.Name != "Alice B" || updated.Points != 55 {
			t.Fatalf("unexpected merged user %+v", updated)
		}
		if updated.Email != "alice@example.com" {
			t.Error("untouched fields must survive the merge")
		}

		fresh := NewSessionService(&fakeAuthAPI{}, &fakeUserAPI{}, store, zap.NewNop())
		if user := fresh.Restore(ctx); user == nil || user.Name != "Alice B" {
			t.Error("merged user must be persisted")
		}
	})

	t.Run("no-op without a session", func(t *testing.T) {
		s := NewSessionService(&fakeAuthAPI{}, &fakeUserAPI{}, storage.NewSessionStorage(), zap.NewNop())
		name := "ghost"
		if got := s.UpdateUser(ctx, entities.UserPatch{Name: &name}); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestSessionRenew(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces access token and persists it", func(t *testing.T) {
		store := storage.NewSessionStorage()
		api := &fakeAuthAPI{loginRes: authResult(), refreshToken: "access-2"}
		s := NewSessionService(api, &fakeUserAPI{}, store, zap.NewNop())
		if _, err := s.Login(ctx, "alice@example.com", "secret"); err != nil {
			t.Fatalf("login: %v", err)
		}

		token, err := s.Renew(ctx)
		if err != nil {
			t.Fatalf("renew: %v", err)
		}
		if token != "access-2" || s.AccessToken() != "access-2" {
			t.Errorf("expected renewed token, got %q", token)
		}

		rec, ok, _ := store.Load(ctx)
		if !ok || rec.AccessToken != "access-2" {
			t.Error("renewed token must be persisted")
		}
		if rec.RefreshToken != "refresh-1" {
			t.Error("refresh token must be untouched by renewal")
		}
	})

	t.Run("failure tears the session down", func(t *testing.T) {
		store := storage.NewSessionStorage()
		api := &fakeAuthAPI{loginRes: authResult(), refreshErr: &fakeServerError{msg: "refresh token revoked"}}
		s := NewSessionService(api, &fakeUserAPI{}, store, zap.NewNop())
		if _, err := s.Login(ctx, "alice@example.com", "secret"); err != nil {
			t.Fatalf("login: %v", err)
		}

		_, err := s.Renew(ctx)
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
		if s.CurrentUser() != nil {
			t.Error("session must be gone after failed renewal")
		}
		if _, ok, _ := store.Load(ctx); ok {
			t.Error("persisted session must be gone after failed renewal")
		}
		checkAtomic(t, s)
	})

	t.Run("anonymous renewal is terminal", func(t *testing.T) {
		s := NewSessionService(&fakeAuthAPI{}, &fakeUserAPI{}, storage.NewSessionStorage(), zap.NewNop())
		if _, err := s.Renew(ctx); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})
}

func TestSessionProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("refetch replaces the cached user wholesale", func(t *testing.T) {
		users := &fakeUserAPI{profile: &entities.User{ID: "u1", Name: "Alice", Email: "alice@example.com", Level: entities.LevelA2, Points: 90}}
		s := NewSessionService(&fakeAuthAPI{loginRes: authResult()}, users, storage.NewSessionStorage(), zap.NewNop())
		if _, err := s.Login(ctx, "alice@example.com", "secret"); err != nil {
			t.Fatalf("login: %v", err)
		}

		user, err := s.Profile(ctx)
		if err != nil {
			t.Fatalf("profile: %v", err)
		}
		if user.Level != entities.LevelA2 || user.Points != 90 {
			t.Errorf("expected server copy, got %+v", user)
		}
		if got := s.CurrentUser(); got.Points != 90 {
			t.Error("cached user must be replaced")
		}
	})

	t.Run("requires a session", func(t *testing.T) {
		s := NewSessionService(&fakeAuthAPI{}, &fakeUserAPI{}, storage.NewSessionStorage(), zap.NewNop())
		if _, err := s.Profile(ctx); !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
