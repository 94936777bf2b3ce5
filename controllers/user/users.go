package userControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/apperr"
	"github.com/shopstack/ecommerce-api/middleware"
	"github.com/shopstack/ecommerce-api/models"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
}

type UserProfileResponse struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
}

// -------- Core Logic --------

func GetProfile(db *gorm.DB, userID uint) (*UserProfileResponse, error) {
	user, err := findUser(db, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(user), nil
}

// UpdateProfile rewrites the contact fields. Email uniqueness is only
// enforced at registration; updates go through unchecked, matching the
// original behavior.
func UpdateProfile(db *gorm.DB, userID uint, req UpdateProfileRequest) (*UserProfileResponse, error) {
	user, err := findUser(db, userID)
	if err != nil {
		return nil, err
	}
	user.FullName = req.FullName
	user.Email = req.Email
	user.PhoneNumber = req.PhoneNumber
	if err := db.Save(user).Error; err != nil {
		return nil, err
	}
	return toProfileResponse(user), nil
}

func findUser(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "User not found with id: %d", userID)
		}
		return nil, err
	}
	return &user, nil
}

func toProfileResponse(user *models.User) *UserProfileResponse {
	return &UserProfileResponse{
		ID:          user.ID,
		Username:    user.Username,
		FullName:    user.FullName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Role:        string(user.Role),
	}
}

// -------- Handlers --------

// GET /api/users/profile
func GetProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := GetProfile(db, middleware.UserID(c))
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// PUT /api/users/profile
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		resp, err := UpdateProfile(db, middleware.UserID(c), req)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GET /api/users/:id (admin)
func GetUserByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		resp, err := GetProfile(db, uint(userID))
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
