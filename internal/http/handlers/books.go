package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkowalczyk/libreserve/internal/cache"
	"github.com/mkowalczyk/libreserve/internal/config"
	"github.com/mkowalczyk/libreserve/internal/domain/book"
	"github.com/mkowalczyk/libreserve/internal/utils"
)

type BooksStore interface {
	Create(ctx context.Context, req book.CreateBookRequest) (book.Book, error)
	GetByID(ctx context.Context, id string) (book.Book, error)
	List(ctx context.Context) ([]book.Book, error)
	Update(ctx context.Context, id string, req book.UpdateBookRequest) (book.Book, error)
}

type BooksHandler struct {
	repo  BooksStore
	books *cache.Books // nil disables caching
}

func NewBooksHandler(repo BooksStore, books *cache.Books) *BooksHandler {
	return &BooksHandler{repo: repo, books: books}
}

// ListBooks is public and the hottest read in the system, hence the
// cache and the ETag.
func (h *BooksHandler) ListBooks(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if cached, ok := h.books.GetList(cctx); ok {
		RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": cached, "count": len(cached)})
		return
	}

	books, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list books")
		return
	}

	h.books.SetList(cctx, books)

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": books, "count": len(books)})
}

func (h *BooksHandler) GetBook(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "book id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if cached, ok := h.books.GetBook(cctx, id); ok {
		ctx.JSON(http.StatusOK, cached)
		return
	}

	b, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			RespondNotFound(ctx, "Book not found")
			return
		}
		RespondInternal(ctx, "Could not fetch book")
		return
	}

	h.books.SetBook(cctx, b)

	ctx.JSON(http.StatusOK, b)
}

func (h *BooksHandler) AddBook(ctx *gin.Context) {
	var req book.CreateBookRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	b, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create book")
		return
	}

	h.books.Invalidate(cctx, "")

	ctx.JSON(http.StatusCreated, b)
}

func (h *BooksHandler) UpdateBook(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "book id must be a valid UUID", nil)
		return
	}

	var req book.UpdateBookRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	b, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			RespondNotFound(ctx, "Book not found")
			return
		}
		RespondInternal(ctx, "Could not update book")
		return
	}

	h.books.Invalidate(cctx, id)

	ctx.JSON(http.StatusOK, b)
}
