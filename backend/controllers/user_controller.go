package controllers

import (
	"errors"

	"philosofium/backend/models"
	"philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

type UpdateUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=255"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile data
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user, err := uc.load(c)
	if err != nil {
		return err
	}
	return utils.OK(c, user)
}

// UpdateProfile godoc
// @Summary Update user profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateUserRequest true "Profile fields"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	user, err := uc.load(c)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		user.Name = *req.Name
		updates["name"] = user.Name
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
		updates["avatar"] = user.Avatar
	}
	if len(updates) > 0 {
		if err := uc.DB.WithContext(c.UserContext()).Model(user).Updates(updates).Error; err != nil {
			return err
		}
	}
	return utils.OK(c, user)
}

func (uc *UserController) load(c *fiber.Ctx) (*models.User, error) {
	var user models.User
	err := uc.DB.WithContext(c.UserContext()).Take(&user, currentUserID(c)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
