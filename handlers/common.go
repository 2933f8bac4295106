package handlers

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"inkwell/store"
	"inkwell/uploads"
)

// Package-level wiring set once at startup; tests swap in memory stores and a
// tmpdir blob store.
var (
	users store.UserStore
	posts store.PostStore
	blobs *uploads.Store
)

// Configure wires the handler package to its stores and blob storage.
func Configure(u store.UserStore, p store.PostStore, b *uploads.Store) {
	users = u
	posts = p
	blobs = b
}

// abort records an error for the formatting middleware and stops the chain.
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
