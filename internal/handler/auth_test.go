package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/ratemate/ratemate/internal/config"
	"github.com/ratemate/ratemate/internal/model"
	"github.com/ratemate/ratemate/internal/repository"
	"github.com/ratemate/ratemate/internal/utils"
)

// fakeUserStore is an in-memory UserStore with the same observable
// semantics as the MySQL-backed repo: unique email on Create, and
// ConsumeResetToken only succeeds when the stored hash still matches
// and has not expired.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[string]*model.User // keyed by email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[string]*model.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return repository.ErrEmailExists
	}
	u.ID = s.nextID
	s.nextID++
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeUserStore) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (s *fakeUserStore) SetResetToken(ctx context.Context, id uint64, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.ResetTokenHash = &tokenHash
			u.ResetTokenExpiry = &exp
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (s *fakeUserStore) ConsumeResetToken(ctx context.Context, email, tokenHash, newPasswordHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok || u.ResetTokenHash == nil || u.ResetTokenExpiry == nil {
		return false, nil
	}
	if *u.ResetTokenHash != tokenHash || !u.ResetTokenExpiry.After(time.Now().UTC()) {
		return false, nil
	}
	u.PasswordHash = newPasswordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	return true, nil
}

// expireResetToken backdates the stored expiry so tests can exercise
// the expired path without sleeping.
func (s *fakeUserStore) expireResetToken(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok && u.ResetTokenExpiry != nil {
		past := time.Now().UTC().Add(-time.Minute)
		u.ResetTokenExpiry = &past
	}
}

// fakeNotifier records every dispatched reset link.
type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string // reset URLs, in dispatch order
	addrs []string
}

func (n *fakeNotifier) SendResetLink(ctx context.Context, email, name, resetURL string, expiresAt time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, resetURL)
	n.addrs = append(n.addrs, email)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *fakeNotifier) lastURL(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		t.Fatal("no reset link was dispatched")
	}
	return n.sent[len(n.sent)-1]
}

func testConfig() config.Config {
	return config.Config{
		Env:          "test",
		JWTSecret:    "handler-test-secret",
		AccessTTLMin: 1440,
		ResetTTLMin:  10,
		BcryptCost:   bcrypt.MinCost,
		ClientURL:    "http://localhost:5173",
	}
}

func newAuth() (*AuthHandler, *fakeUserStore, *fakeNotifier) {
	store := newFakeUserStore()
	notify := &fakeNotifier{}
	return NewAuthHandler(testConfig(), store, notify), store, notify
}

// postJSON drives a handler the way Echo would for a JSON POST.
func postJSON(t *testing.T, h echo.HandlerFunc, body any, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(string(raw)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

const (
	validName = "Johnathan Maxwell Petersson"
	validPass = "Sunshine@9"
)

func signup(t *testing.T, h *AuthHandler, email string) {
	t.Helper()
	rec := postJSON(t, h.Signup, map[string]string{
		"name":     validName,
		"email":    email,
		"address":  "42 Commerce Street",
		"password": validPass,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestSignupThenLogin(t *testing.T) {
	h, _, _ := newAuth()
	signup(t, h, "alice@example.com")

	rec := postJSON(t, h.Login, map[string]string{
		"email":    "alice@example.com",
		"password": validPass,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	tok, _ := body["token"].(string)
	if tok == "" {
		t.Fatal("login response has no token")
	}

	claims, err := utils.ParseAccessToken(testConfig().JWTSecret, tok)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Email != "alice@example.com" || claims.Role != model.RoleNormal {
		t.Errorf("claims = %+v, want alice@example.com / NORMAL", claims)
	}

	user, _ := body["user"].(map[string]any)
	if user == nil || user["email"] != "alice@example.com" {
		t.Errorf("user part = %v", body["user"])
	}
}

func TestSignupNormalizesEmail(t *testing.T) {
	h, store, _ := newAuth()
	signup(t, h, "  Alice@Example.COM ")
	if _, err := store.GetByEmail(context.Background(), "alice@example.com"); err != nil {
		t.Errorf("lowercased email not found: %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	h, _, _ := newAuth()
	signup(t, h, "alice@example.com")

	rec := postJSON(t, h.Signup, map[string]string{
		"name":     validName,
		"email":    "alice@example.com",
		"address":  "other address",
		"password": validPass,
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup status = %d, want 400", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Email already registered." {
		t.Errorf("error = %q", got)
	}
}

func TestSignupValidation(t *testing.T) {
	h, _, _ := newAuth()
	cases := []struct {
		name string
		body map[string]string
	}{
		{"short name", map[string]string{"name": "Al", "email": "a@b.co", "address": "x", "password": validPass}},
		{"bad email", map[string]string{"name": validName, "email": "not-an-email", "address": "x", "password": validPass}},
		{"weak password", map[string]string{"name": validName, "email": "a@b.co", "address": "x", "password": "password"}},
		{"long address", map[string]string{"name": validName, "email": "a@b.co", "address": strings.Repeat("a", 401), "password": validPass}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h.Signup, tc.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestLoginFailures(t *testing.T) {
	h, _, _ := newAuth()
	signup(t, h, "alice@example.com")

	rec := postJSON(t, h.Login, map[string]string{
		"email": "nobody@example.com", "password": validPass,
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown email status = %d, want 404", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "User not found" {
		t.Errorf("error = %q", got)
	}

	rec = postJSON(t, h.Login, map[string]string{
		"email": "alice@example.com", "password": "Wrongpass@1",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Invalid credentials" {
		t.Errorf("error = %q", got)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	h, _, notify := newAuth()
	rec := postJSON(t, h.ForgotPassword, map[string]string{"email": "ghost@example.com"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "User with this email does not exist" {
		t.Errorf("error = %q", got)
	}
	if notify.count() != 0 {
		t.Errorf("%d mails dispatched for unknown email, want 0", notify.count())
	}
}

func TestForgotPasswordMissingEmail(t *testing.T) {
	h, _, _ := newAuth()
	rec := postJSON(t, h.ForgotPassword, map[string]string{}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Email is required" {
		t.Errorf("error = %q", got)
	}
}

// tokenFromResetURL extracts the raw secret from a dispatched link.
func tokenFromResetURL(t *testing.T, resetURL string) string {
	t.Helper()
	u, err := url.Parse(resetURL)
	if err != nil {
		t.Fatalf("parse reset URL %q: %v", resetURL, err)
	}
	tok := u.Query().Get("token")
	if tok == "" {
		t.Fatalf("reset URL %q carries no token", resetURL)
	}
	return tok
}

func requestReset(t *testing.T, h *AuthHandler, notify *fakeNotifier, email string) string {
	t.Helper()
	rec := postJSON(t, h.ForgotPassword, map[string]string{"email": email}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("forgot-password status = %d, body %s", rec.Code, rec.Body.String())
	}
	return tokenFromResetURL(t, notify.lastURL(t))
}

func TestResetPasswordFlow(t *testing.T) {
	h, _, notify := newAuth()
	signup(t, h, "alice@example.com")
	token := requestReset(t, h, notify, "alice@example.com")

	const newPass = "Moonrise@7"
	rec := postJSON(t, h.ResetPassword, map[string]string{
		"token": token, "email": "alice@example.com", "newPassword": newPass,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Old password is dead, new one works.
	rec = postJSON(t, h.Login, map[string]string{"email": "alice@example.com", "password": validPass}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("old password login status = %d, want 401", rec.Code)
	}
	rec = postJSON(t, h.Login, map[string]string{"email": "alice@example.com", "password": newPass}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("new password login status = %d, want 200", rec.Code)
	}

	// The secret is single-use.
	rec = postJSON(t, h.ResetPassword, map[string]string{
		"token": token, "email": "alice@example.com", "newPassword": "Another@99",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("token reuse status = %d, want 400", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Invalid or expired reset token" {
		t.Errorf("error = %q", got)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	h, store, notify := newAuth()
	signup(t, h, "alice@example.com")
	token := requestReset(t, h, notify, "alice@example.com")
	store.expireResetToken("alice@example.com")

	rec := postJSON(t, h.ResetPassword, map[string]string{
		"token": token, "email": "alice@example.com", "newPassword": "Moonrise@7",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Invalid or expired reset token" {
		t.Errorf("error = %q", got)
	}
}

func TestResetPasswordLatestRequestWins(t *testing.T) {
	h, _, notify := newAuth()
	signup(t, h, "alice@example.com")
	first := requestReset(t, h, notify, "alice@example.com")
	second := requestReset(t, h, notify, "alice@example.com")
	if first == second {
		t.Fatal("two reset requests produced the same secret")
	}

	rec := postJSON(t, h.ResetPassword, map[string]string{
		"token": first, "email": "alice@example.com", "newPassword": "Moonrise@7",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("superseded token status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, h.ResetPassword, map[string]string{
		"token": second, "email": "alice@example.com", "newPassword": "Moonrise@7",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("latest token status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestResetPasswordBogusToken(t *testing.T) {
	h, _, notify := newAuth()
	signup(t, h, "alice@example.com")
	requestReset(t, h, notify, "alice@example.com")

	rec := postJSON(t, h.ResetPassword, map[string]string{
		"token": strings.Repeat("ab", 32), "email": "alice@example.com", "newPassword": "Moonrise@7",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Invalid or expired reset token" {
		t.Errorf("error = %q", got)
	}
}

func TestResetPasswordWeakNewPassword(t *testing.T) {
	h, _, notify := newAuth()
	signup(t, h, "alice@example.com")
	token := requestReset(t, h, notify, "alice@example.com")

	rec := postJSON(t, h.ResetPassword, map[string]string{
		"token": token, "email": "alice@example.com", "newPassword": "weak",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	// A rejected password must not burn the secret.
	rec = postJSON(t, h.ResetPassword, map[string]string{
		"token": token, "email": "alice@example.com", "newPassword": "Moonrise@7",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("retry with valid password status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestUpdatePassword(t *testing.T) {
	h, store, _ := newAuth()
	signup(t, h, "alice@example.com")
	u, err := store.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	asUser := func(c echo.Context) { c.Set("user_id", u.ID) }

	rec := postJSON(t, h.UpdatePassword, map[string]string{
		"oldPassword": "Wrongpass@1", "newPassword": "Moonrise@7",
	}, asUser)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong old password status = %d, want 401", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Old password incorrect" {
		t.Errorf("error = %q", got)
	}

	rec = postJSON(t, h.UpdatePassword, map[string]string{
		"oldPassword": validPass, "newPassword": "weak",
	}, asUser)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("weak new password status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, h.UpdatePassword, map[string]string{
		"oldPassword": validPass, "newPassword": "Moonrise@7",
	}, asUser)
	if rec.Code != http.StatusOK {
		t.Fatalf("change status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, h.Login, map[string]string{"email": "alice@example.com", "password": "Moonrise@7"}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("login with changed password status = %d", rec.Code)
	}
}

func TestUpdatePasswordNoIdentity(t *testing.T) {
	h, _, _ := newAuth()
	rec := postJSON(t, h.UpdatePassword, map[string]string{
		"oldPassword": validPass, "newPassword": "Moonrise@7",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
