package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/auth"
	"inkwell/httperr"
	"inkwell/middleware"
	"inkwell/models"
	"inkwell/store"
	"inkwell/uploads"
)

type RegisterRequest struct {
	Name      string `json:"name" form:"name"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	Password2 string `json:"password2" form:"password2"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type EditUserRequest struct {
	Name               string `json:"name" form:"name"`
	Email              string `json:"email" form:"email"`
	CurrentPassword    string `json:"currentPassword" form:"currentPassword"`
	NewPassword        string `json:"newPassword" form:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword" form:"confirmNewPassword"`
}

// Register creates a new account. POST /api/users/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		abort(c, httperr.Unprocessable("Fill in all fields"))
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		abort(c, httperr.Unprocessable("Fill in all fields"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := strings.ToLower(req.Email)
	if _, err := users.FindByEmail(ctx, email); err == nil {
		abort(c, httperr.Unprocessable("Email already exists"))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		abort(c, err)
		return
	}

	if len(strings.TrimSpace(req.Password)) < 6 {
		abort(c, httperr.Unprocessable("Password should be at least 6 characters"))
		return
	}
	if req.Password != req.Password2 {
		abort(c, httperr.Unprocessable("Passwords do not match"))
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		abort(c, httperr.Unprocessable("User registration failed"))
		return
	}

	user := models.User{Name: req.Name, Email: email, Password: hashed}
	if err := users.Create(ctx, &user); err != nil {
		log.Printf("Register: create user failed: %v", err)
		abort(c, httperr.Unprocessable("User registration failed"))
		return
	}

	c.JSON(http.StatusCreated, fmt.Sprintf("New user %s registered", user.Email))
}

// Login verifies credentials and issues a session token valid for one day.
// POST /api/users/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		abort(c, httperr.Unprocessable("Fill in all the fields"))
		return
	}
	if req.Email == "" || req.Password == "" {
		abort(c, httperr.Unprocessable("Fill in all the fields"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Same message for unknown email and wrong password.
	user, err := users.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		abort(c, httperr.Unprocessable("Invalid credentials"))
		return
	}
	if !auth.CheckPassword(req.Password, user.Password) {
		abort(c, httperr.Unprocessable("Invalid credentials"))
		return
	}

	token, err := auth.GenerateToken(auth.Identity{ID: user.ID.Hex(), Name: user.Name})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"id":    user.ID.Hex(),
		"name":  user.Name,
	})
}

// GetUser returns a single profile without the password field.
// GET /api/users/:id
func GetUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abort(c, httperr.Unprocessable("User not found"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		abort(c, httperr.Unprocessable("User not found"))
		return
	}
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetAuthors lists all users without passwords. GET /api/users
func GetAuthors(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	authors, err := users.FindAll(ctx)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, authors)
}

// ChangeAvatar replaces the caller's avatar image. The old blob is deleted
// best-effort; blob write and document update are not transactional.
// POST /api/users/change-avatar
func ChangeAvatar(c *gin.Context) {
	ident, ok := middleware.CurrentUser(c)
	if !ok {
		abort(c, httperr.New(http.StatusUnauthorized, "Not authenticated"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(ident.ID)
	if err != nil {
		abort(c, httperr.New(http.StatusUnauthorized, "Invalid user ID"))
		return
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		abort(c, httperr.Unprocessable("Please choose an image"))
		return
	}
	if header.Size > uploads.MaxAvatarSize {
		abort(c, httperr.Unprocessable("Profile picture is too big. Should be less than 600kb"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		abort(c, httperr.New(http.StatusForbidden, "User not found"))
		return
	}
	if err != nil {
		abort(c, err)
		return
	}

	if user.Avatar != "" {
		if err := blobs.Remove(user.Avatar); err != nil {
			log.Printf("ChangeAvatar: removing old avatar %s: %v", user.Avatar, err)
		}
	}

	data, err := readFile(header)
	if err != nil {
		abort(c, err)
		return
	}
	stored, err := blobs.Save(data, header.Filename, uploads.MaxAvatarSize)
	if errors.Is(err, uploads.ErrTooLarge) {
		abort(c, httperr.Unprocessable("Profile picture is too big. Should be less than 600kb"))
		return
	}
	if errors.Is(err, uploads.ErrUnsupportedType) {
		abort(c, httperr.Unprocessable("File must be an image"))
		return
	}
	if err != nil {
		abort(c, err)
		return
	}

	avatar := stored
	updated, err := users.UpdateByID(ctx, userID, store.UserUpdate{Avatar: &avatar})
	if err != nil {
		abort(c, httperr.Unprocessable("Avatar couldn't be changed"))
		return
	}

	c.JSON(http.StatusOK, updated)
}

// EditUser updates the caller's name, email and optionally password, after
// verifying the current password. PATCH /api/users/edit-user
func EditUser(c *gin.Context) {
	ident, ok := middleware.CurrentUser(c)
	if !ok {
		abort(c, httperr.New(http.StatusUnauthorized, "Not authenticated"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(ident.ID)
	if err != nil {
		abort(c, httperr.New(http.StatusUnauthorized, "Invalid user ID"))
		return
	}

	var req EditUserRequest
	if err := c.ShouldBind(&req); err != nil {
		abort(c, httperr.Unprocessable("Fill in all fields"))
		return
	}
	if req.Name == "" || req.Email == "" || req.CurrentPassword == "" {
		abort(c, httperr.Unprocessable("Fill in all fields"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		abort(c, httperr.New(http.StatusForbidden, "User not found"))
		return
	}
	if err != nil {
		abort(c, err)
		return
	}

	email := strings.ToLower(req.Email)
	if existing, err := users.FindByEmail(ctx, email); err == nil && existing.ID != userID {
		abort(c, httperr.Unprocessable("Email already exists"))
		return
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		abort(c, err)
		return
	}

	if !auth.CheckPassword(req.CurrentPassword, user.Password) {
		abort(c, httperr.Unprocessable("Invalid current password"))
		return
	}

	upd := store.UserUpdate{Name: &req.Name, Email: &email}
	if req.NewPassword != "" {
		if req.NewPassword != req.ConfirmNewPassword {
			abort(c, httperr.Unprocessable("New passwords do not match"))
			return
		}
		hashed, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			abort(c, err)
			return
		}
		upd.Password = &hashed
	}

	updated, err := users.UpdateByID(ctx, userID, upd)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
