package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/apperr"
	"github.com/shopstack/ecommerce-api/config"
	"github.com/shopstack/ecommerce-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Password    string `json:"password" binding:"required,min=6"`
	Role        string `json:"role"`
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token    string `json:"token"`
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Register creates the account. Username and email uniqueness is checked
// here and only here; profile updates never re-validate them.
func Register(db *gorm.DB, req RegisterRequest) (*models.User, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.New(apperr.AlreadyExists, "Username is already taken")
	}
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.New(apperr.AlreadyExists, "Email is already in use")
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, apperr.Newf(apperr.InvalidInput, "Invalid role: %s", req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:    req.Username,
		Password:    string(hash),
		Role:        role,
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies the credentials and returns the matching user. The same
// AuthFailed error covers unknown username and wrong password.
func Login(db *gorm.DB, req LoginRequest) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.AuthFailed, "Invalid username or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.New(apperr.AuthFailed, "Invalid username or password")
	}
	return &user, nil
}

func RegisterHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		user, err := Register(db, req)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		token, err := IssueToken(cfg.JWTSecret, user, time.Duration(cfg.JWTExpiryHours)*time.Hour)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusCreated, AuthResponse{
			Token:    token,
			ID:       user.ID,
			Username: user.Username,
			Role:     string(user.Role),
		})
	}
}

func LoginHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		user, err := Login(db, req)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		token, err := IssueToken(cfg.JWTSecret, user, time.Duration(cfg.JWTExpiryHours)*time.Hour)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{
			Token:    token,
			ID:       user.ID,
			Username: user.Username,
			Role:     string(user.Role),
		})
	}
}
