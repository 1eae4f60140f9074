package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/lojabox/lojabox/internal/common"
	"github.com/lojabox/lojabox/internal/server/auth"
	"github.com/lojabox/lojabox/internal/server/config"
	"github.com/lojabox/lojabox/internal/server/models"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newUserService(db *sql.DB, rm *fakeRepoManager) *UserService {
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewUserService(db, rm, cfg)
}

type fakeUsersRepo struct {
	createOut   *models.User
	createErr   error
	createdWith *models.User

	byEmailOut *models.User
	byEmailErr error

	byIDOut *models.User
	byIDErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.createdWith = u
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	out := *u
	out.ID = "u1"
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

type fakeRefreshRepo struct {
	createErr     error
	createCalls   int
	createdUserID string
	createdToken  string

	findOut *models.RefreshToken
	findErr error

	delErr   error
	delCalls int
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.createCalls++
	f.createdUserID = userID
	f.createdToken = token
	return f.createErr
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.delCalls++
	return f.delErr
}

// --- Register ---

func TestRegister_HashesPassword(t *testing.T) {
	users := &fakeUsersRepo{}
	svc := newUserService(nil, &fakeRepoManager{users: users})

	u, err := svc.Register(context.Background(), "ana@example.com", "Ana", "s3cret")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.ID != "u1" || u.Email != "ana@example.com" || u.Name != "Ana" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := bcrypt.CompareHashAndPassword(users.createdWith.PasswordHash, []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not match the password: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &fakeUsersRepo{createErr: common.ErrorAlreadyExists}
	svc := newUserService(nil, &fakeRepoManager{users: users})

	_, err := svc.Register(context.Background(), "ana@example.com", "Ana", "x")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestRegister_RepoError(t *testing.T) {
	users := &fakeUsersRepo{createErr: errors.New("boom")}
	svc := newUserService(nil, &fakeRepoManager{users: users})

	_, err := svc.Register(context.Background(), "ana@example.com", "Ana", "x")
	if err == nil || !strings.Contains(err.Error(), "error creating user") {
		t.Fatalf("want wrapped create error, got %v", err)
	}
}

// --- Login ---

func hashFor(t *testing.T, password string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	return h
}

func TestLogin_Success(t *testing.T) {
	users := &fakeUsersRepo{byEmailOut: &models.User{
		ID: "u1", Email: "ana@example.com", PasswordHash: hashFor(t, "s3cret"),
	}}
	tokens := &fakeRefreshRepo{}
	svc := newUserService(nil, &fakeRepoManager{users: users, tokens: tokens})

	pair, err := svc.Login(context.Background(), "ana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("incomplete token pair: %+v", pair)
	}
	if tokens.createCalls != 1 || tokens.createdUserID != "u1" || tokens.createdToken != pair.RefreshToken {
		t.Fatalf("refresh token not stored: %+v", tokens)
	}

	session, err := auth.SessionFromToken(pair.AccessToken, []byte("k"))
	if err != nil {
		t.Fatalf("access token does not verify: %v", err)
	}
	if session.UserID != "u1" || session.Email != "ana@example.com" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := &fakeUsersRepo{byEmailErr: common.ErrorNotFound}
	svc := newUserService(nil, &fakeRepoManager{users: users})

	_, err := svc.Login(context.Background(), "ghost@example.com", "x")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	users := &fakeUsersRepo{byEmailOut: &models.User{
		ID: "u1", Email: "ana@example.com", PasswordHash: hashFor(t, "right"),
	}}
	svc := newUserService(nil, &fakeRepoManager{users: users})

	_, err := svc.Login(context.Background(), "ana@example.com", "wrong")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestLogin_RepoError(t *testing.T) {
	users := &fakeUsersRepo{byEmailErr: errors.New("boom")}
	svc := newUserService(nil, &fakeRepoManager{users: users})

	_, err := svc.Login(context.Background(), "ana@example.com", "x")
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}

// --- RefreshToken ---

func TestRefreshToken_RotatesToken(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	users := &fakeUsersRepo{byIDOut: &models.User{ID: "u1", Email: "ana@example.com"}}
	tokens := &fakeRefreshRepo{findOut: &models.RefreshToken{
		UserID: "u1", Token: "old", Expires: time.Now().Add(time.Hour),
	}}
	svc := newUserService(db, &fakeRepoManager{users: users, tokens: tokens})

	pair, err := svc.RefreshToken(context.Background(), "old")
	if err != nil {
		t.Fatalf("RefreshToken error: %v", err)
	}
	if tokens.delCalls != 1 {
		t.Fatalf("old token must be deleted exactly once, got %d", tokens.delCalls)
	}
	if tokens.createCalls != 1 || tokens.createdToken != pair.RefreshToken {
		t.Fatalf("new token not stored: %+v", tokens)
	}
	if pair.RefreshToken == "old" {
		t.Fatalf("refresh token must rotate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestRefreshToken_Expired(t *testing.T) {
	tokens := &fakeRefreshRepo{findOut: &models.RefreshToken{
		UserID: "u1", Token: "old", Expires: time.Now().Add(-time.Minute),
	}}
	svc := newUserService(nil, &fakeRepoManager{tokens: tokens})

	_, err := svc.RefreshToken(context.Background(), "old")
	if !errors.Is(err, common.ErrRefreshTokenExpired) {
		t.Fatalf("want ErrRefreshTokenExpired, got %v", err)
	}
	if tokens.delCalls != 0 {
		t.Fatalf("expired token must not be rotated")
	}
}

func TestRefreshToken_NotFound(t *testing.T) {
	tokens := &fakeRefreshRepo{findErr: common.ErrorNotFound}
	svc := newUserService(nil, &fakeRepoManager{tokens: tokens})

	_, err := svc.RefreshToken(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized for an unknown token, got %v", err)
	}
}

func TestRefreshToken_DeleteErrorRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	users := &fakeUsersRepo{byIDOut: &models.User{ID: "u1", Email: "ana@example.com"}}
	tokens := &fakeRefreshRepo{
		findOut: &models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(time.Hour)},
		delErr:  errors.New("boom"),
	}
	svc := newUserService(db, &fakeRepoManager{users: users, tokens: tokens})

	_, err := svc.RefreshToken(context.Background(), "old")
	if err == nil || !strings.Contains(err.Error(), "error deleting refresh token") {
		t.Fatalf("want wrapped delete error, got %v", err)
	}
	if tokens.createCalls != 0 {
		t.Fatalf("no new token after a failed delete")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

// --- Logout ---

func TestLogout_DeletesToken(t *testing.T) {
	tokens := &fakeRefreshRepo{}
	svc := newUserService(nil, &fakeRepoManager{tokens: tokens})

	if err := svc.Logout(context.Background(), "old"); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if tokens.delCalls != 1 {
		t.Fatalf("expected one delete, got %d", tokens.delCalls)
	}
}

func TestLogout_DeleteError(t *testing.T) {
	tokens := &fakeRefreshRepo{delErr: errors.New("boom")}
	svc := newUserService(nil, &fakeRepoManager{tokens: tokens})

	err := svc.Logout(context.Background(), "old")
	if err == nil || !strings.Contains(err.Error(), "error deleting refresh token") {
		t.Fatalf("want wrapped delete error, got %v", err)
	}
}
