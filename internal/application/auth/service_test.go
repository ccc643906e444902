package auth

import (
	"context"
	"testing"
	"time"

	"churchflow-backend/internal/domain"
	"churchflow-backend/internal/infrastructure/database"
	"churchflow-backend/internal/pkg/apperr"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) (*Service, *miniredis.Miniredis) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return &Service{
		DB:      db,
		Token:   TokenConfig{Secret: "test-secret", Issuer: "churchflow", TTL: 7 * 24 * time.Hour},
		Revoker: &Revoker{Rdb: rdb},
	}, mr
}

func TestRegister_CreatesChurchAndPastor(t *testing.T) {
	svc, _ := setupAuthTest(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Email: " Pastor@Grace.org ", Password: "secret-pass", ChurchName: "Grace Chapel"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "pastor@grace.org", session.User.Email)
	assert.Equal(t, domain.RolePastor, session.User.Role)
	require.NotNil(t, session.User.Church)
	assert.Equal(t, "Grace Chapel", session.User.Church.Name)

	var church domain.Church
	require.NoError(t, svc.DB.Where("church_id = ?", session.User.Church.ID).First(&church).Error)
	require.NotNil(t, church.PastorID)
	assert.Equal(t, session.User.ID, *church.PastorID)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := setupAuthTest(t)
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.co", Password: "x"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestRegister_DuplicateEmailLeavesNoOrphanChurch(t *testing.T) {
	svc, _ := setupAuthTest(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "p@grace.org", Password: "pw", ChurchName: "Grace"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: "P@grace.org", Password: "pw", ChurchName: "Other"})
	require.Error(t, err)
	assert.Equal(t, "User already exists", err.Error())

	var count int64
	require.NoError(t, svc.DB.Model(&domain.Church{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLogin(t *testing.T) {
	svc, _ := setupAuthTest(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "p@grace.org", Password: "pw-123", ChurchName: "Grace"})
	require.NoError(t, err)

	session, err := svc.Login(ctx, LoginInput{Email: "  P@GRACE.org", Password: "pw-123"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Login(ctx, LoginInput{Email: "p@grace.org", Password: "wrong"})
	assert.Equal(t, ErrInvalidCredentials, err)
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@grace.org", Password: "pw-123"})
	assert.Equal(t, ErrInvalidCredentials, err)
	_, err = svc.Login(ctx, LoginInput{})
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestAuthenticate_AndLogoutRevokes(t *testing.T) {
	svc, mr := setupAuthTest(t)
	ctx := context.Background()
	session, err := svc.Register(ctx, RegisterInput{Email: "p@grace.org", Password: "pw", ChurchName: "Grace"})
	require.NoError(t, err)

	id, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, id.PastorID)
	assert.Equal(t, session.User.Church.ID, id.ChurchID)
	assert.NotEmpty(t, id.TokenID)

	require.NoError(t, svc.Logout(ctx, *id))
	assert.True(t, mr.Exists("auth:revoked:"+id.TokenID))

	_, err = svc.Authenticate(ctx, session.Token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestAuthenticate_RejectsGarbageAndForeignSecret(t *testing.T) {
	svc, _ := setupAuthTest(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "")
	assert.Equal(t, ErrUnauthorized, err)
	_, err = svc.Authenticate(ctx, "not-a-jwt")
	assert.Equal(t, ErrInvalidToken, err)

	other := TokenConfig{Secret: "other", Issuer: "churchflow", TTL: time.Hour}
	tok, _, err := MintToken(other, time.Now(), uuid.New(), uuid.New(), domain.RolePastor)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, tok)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestAuthenticate_RejectsUnknownRole(t *testing.T) {
	svc, _ := setupAuthTest(t)
	ctx := context.Background()
	session, err := svc.Register(ctx, RegisterInput{Email: "p@grace.org", Password: "pw", ChurchName: "Grace"})
	require.NoError(t, err)
	require.NoError(t, svc.DB.Model(&domain.User{}).Where("user_id = ?", session.User.ID).Update("role", "viewer").Error)

	_, err = svc.Authenticate(ctx, session.Token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestMe(t *testing.T) {
	svc, _ := setupAuthTest(t)
	ctx := context.Background()
	session, err := svc.Register(ctx, RegisterInput{Email: "p@grace.org", Password: "pw", ChurchName: "Grace"})
	require.NoError(t, err)

	id, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	me, err := svc.Me(ctx, *id)
	require.NoError(t, err)
	assert.Equal(t, "p@grace.org", me.Email)
	require.NotNil(t, me.Church)
	assert.Equal(t, "Grace", me.Church.Name)
}
