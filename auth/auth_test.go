package auth

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopstack/ecommerce-api/apperr"
	"github.com/shopstack/ecommerce-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func testRegistration(username string) RegisterRequest {
	return RegisterRequest{
		Username: username,
		Password: "hunter22",
		FullName: "Test User",
		Email:    username + "@example.com",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupDB(t)

	user, err := Register(db, testRegistration("alice"))
	require.NoError(t, err)
	require.Equal(t, models.RoleCustomer, user.Role)
	require.NotEqual(t, "hunter22", user.Password) // stored hashed

	logged, err := Login(db, LoginRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)
}

func TestRegisterDuplicateUsernameAndEmail(t *testing.T) {
	db := setupDB(t)

	_, err := Register(db, testRegistration("alice"))
	require.NoError(t, err)

	_, err = Register(db, testRegistration("alice"))
	require.Equal(t, apperr.AlreadyExists, apperr.KindOf(err))

	dup := testRegistration("bob")
	dup.Email = "alice@example.com"
	_, err = Register(db, dup)
	require.Equal(t, apperr.AlreadyExists, apperr.KindOf(err))
}

func TestRegisterRoles(t *testing.T) {
	db := setupDB(t)

	req := testRegistration("seller")
	req.Role = "SELLER"
	user, err := Register(db, req)
	require.NoError(t, err)
	require.Equal(t, models.RoleSeller, user.Role)

	req = testRegistration("weird")
	req.Role = "SUPERUSER"
	_, err = Register(db, req)
	require.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestLoginFailures(t *testing.T) {
	db := setupDB(t)

	_, err := Register(db, testRegistration("alice"))
	require.NoError(t, err)

	_, err = Login(db, LoginRequest{Username: "alice", Password: "wrong"})
	require.Equal(t, apperr.AuthFailed, apperr.KindOf(err))

	_, err = Login(db, LoginRequest{Username: "nobody", Password: "hunter22"})
	require.Equal(t, apperr.AuthFailed, apperr.KindOf(err))
}

func TestIssueTokenClaims(t *testing.T) {
	user := &models.User{Username: "alice", Role: models.RoleAdmin}
	user.ID = 7

	signed, err := IssueToken("secret", user, time.Hour)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	require.EqualValues(t, 7, claims["user_id"])
	require.Equal(t, "alice", claims["username"])
	require.Equal(t, "ADMIN", claims["role"])
}
