package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/httperr"
	"inkwell/middleware"
	"inkwell/models"
	"inkwell/store"
	"inkwell/uploads"
)

// CreatePost stores the thumbnail, creates the post and bumps the creator's
// post counter. The three steps are sequential and not transactional: a
// failure part way leaves the earlier side effects in place.
// POST /api/posts
func CreatePost(c *gin.Context) {
	ident, ok := middleware.CurrentUser(c)
	if !ok {
		abort(c, httperr.New(http.StatusUnauthorized, "Not authenticated"))
		return
	}
	creator, err := primitive.ObjectIDFromHex(ident.ID)
	if err != nil {
		abort(c, httperr.New(http.StatusUnauthorized, "Invalid user ID"))
		return
	}

	title := c.PostForm("title")
	category := c.PostForm("category")
	description := c.PostForm("description")
	header, fileErr := c.FormFile("thumbnail")
	if title == "" || category == "" || description == "" || fileErr != nil {
		abort(c, httperr.Unprocessable("Fill in all the fields and choose image"))
		return
	}
	if header.Size > uploads.MaxThumbnailSize {
		abort(c, httperr.Unprocessable("Thumbnail is too big. File should be less than 2mb"))
		return
	}

	data, err := readFile(header)
	if err != nil {
		abort(c, err)
		return
	}
	stored, err := blobs.Save(data, header.Filename, uploads.MaxThumbnailSize)
	if errors.Is(err, uploads.ErrTooLarge) {
		abort(c, httperr.Unprocessable("Thumbnail is too big. File should be less than 2mb"))
		return
	}
	if errors.Is(err, uploads.ErrUnsupportedType) {
		abort(c, httperr.Unprocessable("Thumbnail must be an image"))
		return
	}
	if err != nil {
		abort(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post := models.Post{
		Title:       title,
		Category:    category,
		Description: description,
		Thumbnail:   stored,
		Creator:     creator,
	}
	if err := posts.Create(ctx, &post); err != nil {
		if errors.Is(err, store.ErrInvalidCategory) {
			abort(c, httperr.Unprocessable("Category is not supported"))
			return
		}
		log.Printf("CreatePost: create failed: %v", err)
		abort(c, httperr.Unprocessable("Post couldn't be created"))
		return
	}

	if err := users.IncrementPosts(ctx, creator, 1); err != nil {
		// The post already exists; nothing is rolled back.
		log.Printf("CreatePost: post count increment failed: %v", err)
		abort(c, httperr.Unprocessable("Post couldn't be created"))
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPosts returns all posts, most recently updated first. GET /api/posts
func GetPosts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	all, err := posts.FindAll(ctx)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, all)
}

// GetPost returns a single post. GET /api/posts/:id
func GetPost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abort(c, httperr.New(http.StatusNotFound, "Post not found"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := posts.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		abort(c, httperr.New(http.StatusNotFound, "Post not found"))
		return
	}
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// GetUserPosts returns one creator's posts, newest created first.
// GET /api/posts/users/:id (the :value param carries the creator id, see routes)
func GetUserPosts(c *gin.Context) {
	creator, err := primitive.ObjectIDFromHex(c.Param("value"))
	if err != nil {
		abort(c, httperr.Unprocessable("Invalid user ID"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	byCreator, err := posts.FindByCreator(ctx, creator)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, byCreator)
}

// GetCatPosts returns posts in a category, newest created first. An unknown
// category simply yields an empty array.
// GET /api/posts/categories/:category (the :value param carries the category)
func GetCatPosts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	byCategory, err := posts.FindByCategory(ctx, c.Param("value"))
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, byCategory)
}

type editPostRequest struct {
	Title       string `json:"title" form:"title"`
	Category    string `json:"category" form:"category"`
	Description string `json:"description" form:"description"`
}

// EditPost updates a post's fields. A replacement thumbnail may only be
// supplied by the post's creator; the old blob is removed best-effort and the
// new one stored under the same 2MB limit and naming rule as creation.
// PATCH /api/posts/:id
func EditPost(c *gin.Context) {
	ident, ok := middleware.CurrentUser(c)
	if !ok {
		abort(c, httperr.New(http.StatusUnauthorized, "Not authenticated"))
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abort(c, httperr.New(http.StatusNotFound, "Post not found"))
		return
	}

	var req editPostRequest
	if c.ContentType() == "application/json" {
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, httperr.Unprocessable("Fill in all fields"))
			return
		}
	} else {
		if err := c.ShouldBind(&req); err != nil {
			abort(c, httperr.Unprocessable("Fill in all fields"))
			return
		}
	}
	if req.Title == "" || req.Category == "" || len(req.Description) < 12 {
		abort(c, httperr.Unprocessable("Fill in all fields"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	oldPost, err := posts.FindByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		abort(c, httperr.New(http.StatusNotFound, "Post not found"))
		return
	}
	if err != nil {
		abort(c, err)
		return
	}

	upd := store.PostUpdate{
		Title:       &req.Title,
		Category:    &req.Category,
		Description: &req.Description,
	}

	if header, fileErr := c.FormFile("thumbnail"); fileErr == nil {
		if ident.ID != oldPost.Creator.Hex() {
			abort(c, httperr.New(http.StatusForbidden, "Only the creator can change the thumbnail"))
			return
		}
		if header.Size > uploads.MaxThumbnailSize {
			abort(c, httperr.Unprocessable("Thumbnail is too big. Should be less than 2mb"))
			return
		}

		if err := blobs.Remove(oldPost.Thumbnail); err != nil {
			log.Printf("EditPost: removing old thumbnail %s: %v", oldPost.Thumbnail, err)
		}

		data, err := readFile(header)
		if err != nil {
			abort(c, err)
			return
		}
		stored, err := blobs.Save(data, header.Filename, uploads.MaxThumbnailSize)
		if errors.Is(err, uploads.ErrTooLarge) {
			abort(c, httperr.Unprocessable("Thumbnail is too big. Should be less than 2mb"))
			return
		}
		if errors.Is(err, uploads.ErrUnsupportedType) {
			abort(c, httperr.Unprocessable("Thumbnail must be an image"))
			return
		}
		if err != nil {
			abort(c, err)
			return
		}
		upd.Thumbnail = &stored
	}

	updated, err := posts.UpdateByID(ctx, postID, upd)
	if errors.Is(err, store.ErrInvalidCategory) {
		abort(c, httperr.Unprocessable("Category is not supported"))
		return
	}
	if err != nil {
		abort(c, httperr.New(http.StatusBadRequest, "Couldn't update post"))
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeletePost removes a post, its thumbnail blob (best-effort) and decrements
// the creator's post counter. Only the creator may delete.
// DELETE /api/posts/:id
func DeletePost(c *gin.Context) {
	ident, ok := middleware.CurrentUser(c)
	if !ok {
		abort(c, httperr.New(http.StatusUnauthorized, "Not authenticated"))
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abort(c, httperr.New(http.StatusBadRequest, "Post unavailable"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := posts.FindByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		abort(c, httperr.New(http.StatusNotFound, "Post not found"))
		return
	}
	if err != nil {
		abort(c, err)
		return
	}

	if ident.ID != post.Creator.Hex() {
		abort(c, httperr.New(http.StatusForbidden, "Post couldn't be deleted"))
		return
	}

	if err := blobs.Remove(post.Thumbnail); err != nil {
		log.Printf("DeletePost: removing thumbnail %s: %v", post.Thumbnail, err)
	}

	deleted, err := posts.DeleteByID(ctx, postID)
	if err != nil {
		abort(c, err)
		return
	}
	if !deleted {
		abort(c, httperr.New(http.StatusNotFound, "Post not found"))
		return
	}

	if err := users.IncrementPosts(ctx, post.Creator, -1); err != nil {
		// The post is already gone; the counter drifts until corrected.
		log.Printf("DeletePost: post count decrement failed: %v", err)
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, fmt.Sprintf("Post %s deleted successfully", postID.Hex()))
}
