package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"uniauth/internal/models"
	"uniauth/internal/services"
)

type fakeAuthService struct {
	registerErr error
	validateErr error
	verifyErr   error
	forgotErr   error
	resetErr    error
	refreshErr  error
	user        *models.User
	pair        *models.TokenPair
}

func (f *fakeAuthService) Register(username, password, email string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.user, nil
}

func (f *fakeAuthService) VerifyEmail(email, code string) error { return f.verifyErr }
func (f *fakeAuthService) ForgotPassword(email string) error    { return f.forgotErr }
func (f *fakeAuthService) ResetPassword(e, c, p string) error   { return f.resetErr }

func (f *fakeAuthService) Login(u *models.User) (*models.TokenPair, error) {
	return f.pair, nil
}

func (f *fakeAuthService) ValidateCredentials(username, password string) (*models.User, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return f.user, nil
}

func (f *fakeAuthService) RefreshTokens(userID int) (*models.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.pair, nil
}

type fakeOtpService struct {
	sendErr error
}

func (f *fakeOtpService) Issue(email string, t models.OtpType) (string, error) { return "123456", nil }
func (f *fakeOtpService) Send(email string, t models.OtpType) error            { return f.sendErr }
func (f *fakeOtpService) Verify(e, c string, t models.OtpType) error           { return nil }
func (f *fakeOtpService) CleanupExpired() (int64, error)                       { return 0, nil }

func post(t *testing.T, handler gin.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST(path, handler)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterHandlerCreated(t *testing.T) {
	auth := &fakeAuthService{user: &models.User{ID: 1, Username: "alice", Email: "alice@unimar.edu.ve"}}
	h := NewAuthHandler(auth, nil)

	w := post(t, h.Register, "/auth/register",
		`{"username":"alice","password":"Secret1!","email":"alice@unimar.edu.ve"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("password leaked: %s", w.Body.String())
	}
}

func TestRegisterHandlerBadBody(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, nil)

	// missing email, short password
	w := post(t, h.Register, "/auth/register", `{"username":"alice","password":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRegisterHandlerConflict(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{registerErr: services.ErrUsernameTaken}, nil)

	w := post(t, h.Register, "/auth/register",
		`{"username":"alice","password":"Secret1!","email":"alice@unimar.edu.ve"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLoginHandlerUnverified(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{validateErr: services.ErrNotVerified}, nil)

	w := post(t, h.Login, "/auth/login", `{"username":"alice","password":"Secret1!"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{validateErr: services.ErrInvalidCredentials}, nil)

	w := post(t, h.Login, "/auth/login", `{"username":"alice","password":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestVerifyHandlerExpiredCode(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{verifyErr: services.ErrCodeExpired}, nil)

	w := post(t, h.VerifyEmail, "/auth/verify",
		`{"email":"alice@unimar.edu.ve","code":"123456"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestOtpHandlerRateLimited(t *testing.T) {
	h := NewOtpHandler(&fakeOtpService{sendErr: services.ErrRateLimited})

	w := post(t, h.Generate, "/otp",
		`{"email":"alice@unimar.edu.ve","type":"VERIFICATION"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestOtpHandlerUnknownType(t *testing.T) {
	h := NewOtpHandler(&fakeOtpService{})

	w := post(t, h.Generate, "/otp",
		`{"email":"alice@unimar.edu.ve","type":"BOGUS"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
