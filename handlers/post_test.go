package handlers_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"inkwell/models"
)

func TestCreatePostRequiresThumbnail(t *testing.T) {
	e := setup(t)
	_, token := e.seedUser(t, "Ada", "ada@example.com", "secret1")

	resp := e.doMultipart(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title":       "Why Analytical Engines Matter",
		"category":    "Technology",
		"description": "Notes on computation.",
	}, "", "", nil)
	mustStatus(t, resp, http.StatusUnprocessableEntity)
	if msg := message(t, resp); msg != "Fill in all the fields and choose image" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCreatePostRejectsOversizeThumbnail(t *testing.T) {
	e := setup(t)
	_, token := e.seedUser(t, "Ada", "ada@example.com", "secret1")

	big := append(append([]byte{}, pngBytes...), make([]byte, 2_000_001)...)
	resp := e.doMultipart(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title":       "Big",
		"category":    "Technology",
		"description": "An oversized thumbnail.",
	}, "thumbnail", "big.png", big)
	mustStatus(t, resp, http.StatusUnprocessableEntity)
}

func TestCreatePostRejectsUnknownCategory(t *testing.T) {
	e := setup(t)
	_, token := e.seedUser(t, "Ada", "ada@example.com", "secret1")

	resp := e.doMultipart(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title":       "Misc",
		"category":    "Sports",
		"description": "Not an allowed category.",
	}, "thumbnail", "thumb.png", pngBytes)
	mustStatus(t, resp, http.StatusUnprocessableEntity)
	if msg := message(t, resp); msg != "Category is not supported" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCreatePostIncrementsCounterAndStoresBlob(t *testing.T) {
	e := setup(t)
	user, token := e.seedUser(t, "Ada", "ada@example.com", "secret1")

	resp := e.doMultipart(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title":       "Engines",
		"category":    "Technology",
		"description": "On analytical engines.",
	}, "thumbnail", "engine.png", pngBytes)
	mustStatus(t, resp, http.StatusCreated)

	var post models.Post
	decodeJSON(t, resp, &post)
	if post.Creator != user.ID {
		t.Fatalf("creator should be the caller, got %s", post.Creator.Hex())
	}
	if post.Thumbnail == "" {
		t.Fatal("expected a stored thumbnail name")
	}
	if _, err := os.Stat(filepath.Join(e.blobs.Dir(), post.Thumbnail)); err != nil {
		t.Fatalf("thumbnail blob missing: %v", err)
	}
	if got := e.counter(t, user.ID); got != 1 {
		t.Fatalf("post counter should be 1, got %d", got)
	}
}

func TestCreatePostUnauthenticated(t *testing.T) {
	e := setup(t)

	resp := e.doMultipart(t, http.MethodPost, "/api/posts", "", map[string]string{
		"title":       "Engines",
		"category":    "Technology",
		"description": "On analytical engines.",
	}, "thumbnail", "engine.png", pngBytes)
	mustStatus(t, resp, http.StatusUnauthorized)
}

func TestGetPostsSortedByMostRecentUpdate(t *testing.T) {
	e := setup(t)
	_, token := e.seedUser(t, "Ada", "ada@example.com", "secret1")

	first := e.createPost(t, token, "First", "Technology", "The first description.")
	second := e.createPost(t, token, "Second", "Art", "The second description.")

	// Editing the older post moves it back to the front.
	edit := e.doJSON(t, http.MethodPatch, "/api/posts/"+first, token, map[string]string{
		"title":       "First, revised",
		"category":    "Technology",
		"description": "The first description, revised.",
	})
	mustStatus(t, edit, http.StatusOK)

	resp := e.doJSON(t, http.MethodGet, "/api/posts", "", nil)
	mustStatus(t, resp, http.StatusOK)

	var all []models.Post
	decodeJSON(t, resp, &all)
	if len(all) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(all))
	}
	if all[0].ID.Hex() != first || all[1].ID.Hex() != second {
		t.Fatalf("expected most recently updated first, got %s then %s", all[0].Title, all[1].Title)
	}
}

func TestGetUserPostsNewestCreatedFirst(t *testing.T) {
	e := setup(t)
	ada, adaToken := e.seedUser(t, "Ada", "ada@example.com", "secret1")
	_, graceToken := e.seedUser(t, "Grace", "grace@example.com", "secret1")

	first := e.createPost(t, adaToken, "Ada one", "Education", "Ada's first description.")
	second := e.createPost(t, adaToken, "Ada two", "Education", "Ada's second description.")
	e.createPost(t, graceToken, "Grace one", "Education", "Grace's only description.")

	resp := e.doJSON(t, http.MethodGet, "/api/posts/users/"+ada.ID.Hex(), "", nil)
	mustStatus(t, resp, http.StatusOK)

	var posts []models.Post
	decodeJSON(t, resp, &posts)
	if len(posts) != 2 {
		t.Fatalf("expected only Ada's 2 posts, got %d", len(posts))
	}
	if posts[0].ID.Hex() != second || posts[1].ID.Hex() != first {
		t.Fatal("expected newest created first")
	}
}

func TestGetCatPosts(t *testing.T) {
	e := setup(t)
	_, token := e.seedUser(t, "Ada", "ada@example.com", "secret1")

	e.createPost(t, token, "Tractors", "Agriculture", "All about tractors.")
	e.createPost(t, token, "Sonnets", "Art", "All about sonnets.")

	resp := e.doJSON(t, http.MethodGet, "/api/posts/categories/Agriculture", "", nil)
	mustStatus(t, resp, http.StatusOK)

	var posts []models.Post
	decodeJSON(t, resp, &posts)
	if len(posts) != 1 || posts[0].Title != "Tractors" {
		t.Fatalf("unexpected category result: %+v", posts)
	}

	// Unknown category yields an empty array, not an error.
	resp = e.doJSON(t, http.MethodGet, "/api/posts/categories/Sports", "", nil)
	mustStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &posts)
	if len(posts) != 0 {
		t.Fatalf("expected no posts, got %d", len(posts))
	}
}

func TestEditPostShortDescriptionRejected(t *testing.T) {
	e := setup(t)
	_, token := e.seedUser(t, "Ada", "ada@example.com", "secret1")
	id := e.createPost(t, token, "Engines", "Technology", "On analytical engines.")

	resp := e.doJSON(t, http.MethodPatch, "/api/posts/"+id, token, map[string]string{
		"title":       "Engines",
		"category":    "Technology",
		"description": "too short",
	})
	mustStatus(t, resp, http.StatusUnprocessableEntity)
	if msg := message(t, resp); msg != "Fill in all fields" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestEditPostThumbnailReplacementCreatorOnly(t *testing.T) {
	e := setup(t)
	_, adaToken := e.seedUser(t, "Ada", "ada@example.com", "secret1")
	_, graceToken := e.seedUser(t, "Grace", "grace@example.com", "secret1")
	id := e.createPost(t, adaToken, "Engines", "Technology", "On analytical engines.")

	resp := e.doMultipart(t, http.MethodPatch, "/api/posts/"+id, graceToken, map[string]string{
		"title":       "Engines",
		"category":    "Technology",
		"description": "On analytical engines.",
	}, "thumbnail", "new.png", pngBytes)
	mustStatus(t, resp, http.StatusForbidden)
}

func TestEditPostReplacesThumbnail(t *testing.T) {
	e := setup(t)
	_, token := e.seedUser(t, "Ada", "ada@example.com", "secret1")
	id := e.createPost(t, token, "Engines", "Technology", "On analytical engines.")

	get := e.doJSON(t, http.MethodGet, "/api/posts/"+id, "", nil)
	mustStatus(t, get, http.StatusOK)
	var before models.Post
	decodeJSON(t, get, &before)

	resp := e.doMultipart(t, http.MethodPatch, "/api/posts/"+id, token, map[string]string{
		"title":       "Engines",
		"category":    "Technology",
		"description": "On analytical engines.",
	}, "thumbnail", "new.png", pngBytes)
	mustStatus(t, resp, http.StatusOK)

	var after models.Post
	decodeJSON(t, resp, &after)
	if after.Thumbnail == before.Thumbnail {
		t.Fatal("expected a new thumbnail name")
	}
	if _, err := os.Stat(filepath.Join(e.blobs.Dir(), before.Thumbnail)); !os.IsNotExist(err) {
		t.Fatal("old thumbnail blob should have been removed")
	}
	if _, err := os.Stat(filepath.Join(e.blobs.Dir(), after.Thumbnail)); err != nil {
		t.Fatalf("new thumbnail blob missing: %v", err)
	}
}

func TestEditPostUnknownID(t *testing.T) {
	e := setup(t)
	_, token := e.seedUser(t, "Ada", "ada@example.com", "secret1")

	resp := e.doJSON(t, http.MethodPatch, "/api/posts/64f000000000000000000099", token, map[string]string{
		"title":       "Ghost",
		"category":    "Technology",
		"description": "Editing a missing post.",
	})
	mustStatus(t, resp, http.StatusNotFound)
}

func TestDeletePostNonCreatorForbidden(t *testing.T) {
	e := setup(t)
	ada, adaToken := e.seedUser(t, "Ada", "ada@example.com", "secret1")
	_, graceToken := e.seedUser(t, "Grace", "grace@example.com", "secret1")
	id := e.createPost(t, adaToken, "Engines", "Technology", "On analytical engines.")

	resp := e.doJSON(t, http.MethodDelete, "/api/posts/"+id, graceToken, nil)
	mustStatus(t, resp, http.StatusForbidden)

	// Post and counter are untouched.
	get := e.doJSON(t, http.MethodGet, "/api/posts/"+id, "", nil)
	mustStatus(t, get, http.StatusOK)
	if got := e.counter(t, ada.ID); got != 1 {
		t.Fatalf("counter should still be 1, got %d", got)
	}
}

func TestDeletePostDecrementsCounterAndRemovesBlob(t *testing.T) {
	e := setup(t)
	user, token := e.seedUser(t, "Ada", "ada@example.com", "secret1")
	id := e.createPost(t, token, "Engines", "Technology", "On analytical engines.")

	get := e.doJSON(t, http.MethodGet, "/api/posts/"+id, "", nil)
	mustStatus(t, get, http.StatusOK)
	var post models.Post
	decodeJSON(t, get, &post)

	resp := e.doJSON(t, http.MethodDelete, "/api/posts/"+id, token, nil)
	mustStatus(t, resp, http.StatusOK)

	var confirmation string
	decodeJSON(t, resp, &confirmation)
	if confirmation != "Post "+id+" deleted successfully" {
		t.Fatalf("unexpected confirmation %q", confirmation)
	}

	if got := e.counter(t, user.ID); got != 0 {
		t.Fatalf("counter should be back to 0, got %d", got)
	}
	if _, err := os.Stat(filepath.Join(e.blobs.Dir(), post.Thumbnail)); !os.IsNotExist(err) {
		t.Fatal("thumbnail blob should have been removed")
	}

	gone := e.doJSON(t, http.MethodGet, "/api/posts/"+id, "", nil)
	mustStatus(t, gone, http.StatusNotFound)
}

func TestEmptyListEndpointsReturnArrays(t *testing.T) {
	e := setup(t)

	paths := []string{
		"/api/posts",
		"/api/users",
		"/api/posts/categories/Weather",
		"/api/posts/users/64f000000000000000000099",
	}
	for _, path := range paths {
		resp := e.doJSON(t, http.MethodGet, path, "", nil)
		mustStatus(t, resp, http.StatusOK)
		if body := resp.Body.String(); body != "[]" {
			t.Fatalf("%s: expected [] body, got %s", path, body)
		}
	}
}

func TestUnmatchedAPIRoute(t *testing.T) {
	e := setup(t)

	resp := e.doJSON(t, http.MethodGet, "/api/nope", "", nil)
	mustStatus(t, resp, http.StatusNotFound)
	if msg := message(t, resp); msg != "Endpoint not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

// Full lifecycle through the public surface: register, login, create, fetch,
// delete, fetch again.
func TestPostLifecycle(t *testing.T) {
	e := setup(t)

	register := e.doJSON(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name":      "Ada",
		"email":     "ada@example.com",
		"password":  "secret1",
		"password2": "secret1",
	})
	mustStatus(t, register, http.StatusCreated)

	login := e.doJSON(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "secret1",
	})
	mustStatus(t, login, http.StatusOK)
	var session map[string]any
	decodeJSON(t, login, &session)
	token, _ := session["token"].(string)
	if token == "" {
		t.Fatal("expected a session token")
	}

	id := e.createPost(t, token, "Engines", "Technology", "On analytical engines.")

	get := e.doJSON(t, http.MethodGet, "/api/posts/"+id, "", nil)
	mustStatus(t, get, http.StatusOK)
	var post models.Post
	decodeJSON(t, get, &post)
	if post.Title != "Engines" || post.Category != "Technology" || post.Description != "On analytical engines." {
		t.Fatalf("fetched post differs from created one: %+v", post)
	}

	del := e.doJSON(t, http.MethodDelete, "/api/posts/"+id, token, nil)
	mustStatus(t, del, http.StatusOK)

	gone := e.doJSON(t, http.MethodGet, "/api/posts/"+id, "", nil)
	mustStatus(t, gone, http.StatusNotFound)
}
