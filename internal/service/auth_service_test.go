package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail      *models.User
	findByEmailErr   error
	created          []*models.User
	superAdmins      int
	auditLogs        []*models.AuditLog
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.userByEmail == nil || m.userByEmail.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if m.userByEmail != nil && m.userByEmail.ID == id {
		return m.userByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(context.Context, string, time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) Create(_ context.Context, user *models.User) error {
	user.ID = "new-user"
	m.created = append(m.created, user)
	return nil
}

func (m *mockAuthRepo) CountByRole(context.Context, models.UserRole) (int, error) {
	return m.superAdmins, nil
}

func (m *mockAuthRepo) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func newAuthFixture(t *testing.T, active bool) (*AuthService, *mockAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{userByEmail: &models.User{
		ID:           "user-1",
		Email:        "admin@school.test",
		PasswordHash: string(hash),
		FullName:     "Admin",
		Role:         models.RoleAdmin,
		Active:       active,
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "school-dashboard-api",
	})
	return svc, repo
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t, true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "Admin@School.test", Password: "secret123", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.True(t, repo.lastLoginUpdated)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "school-dashboard-api", claims.Issuer)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc, repo := newAuthFixture(t, true)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.test", Password: "wrong"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInvalidCredentials.Code))
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLoginFailed, repo.auditLogs[0].Action)
	assert.False(t, repo.lastLoginUpdated)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@school.test", Password: "secret123"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInvalidCredentials.Code))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	inactive, _ := newAuthFixture(t, false)
	_, err = inactive.Login(context.Background(), models.LoginRequest{Email: "admin@school.test", Password: "secret123"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInactiveAccount.Code))
}

func TestAuthServiceValidateTokenRejectsForeignSignature(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	claims := &models.JWTClaims{UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrUnauthorized.Code))
}

func TestAuthServiceValidateTokenRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	claims := &models.JWTClaims{UserID: "user-1", Role: "JANITOR", RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "school-dashboard-api",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "invalid token claims", appErrors.FromError(err).Message)
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.test", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrUnauthorized.Code))
}

func TestAuthServiceCurrentUser(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	info, err := svc.CurrentUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "admin@school.test", info.Email)

	_, err = svc.CurrentUser(context.Background(), "ghost")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestAuthServiceEnsureSuperAdmin(t *testing.T) {
	svc, repo := newAuthFixture(t, true)

	created, err := svc.EnsureSuperAdmin(context.Background(), "Root@School.test", "changeme", "")
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "root@school.test", repo.created[0].Email)
	assert.Equal(t, models.RoleSuperAdmin, repo.created[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created[0].PasswordHash), []byte("changeme")))

	repo.superAdmins = 1
	created, err = svc.EnsureSuperAdmin(context.Background(), "root@school.test", "changeme", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureSuperAdmin(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.False(t, created)
}
