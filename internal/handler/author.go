package handler

import (
	"errors"
	"net/http"
	"path"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/snnyvrz/courselibrary/internal/apperror"
	"github.com/snnyvrz/courselibrary/internal/mapping"
	"github.com/snnyvrz/courselibrary/internal/repository"
	"github.com/snnyvrz/courselibrary/internal/validation"
)

// ErrNilRepository is returned by NewAuthorHandler when it is given no
// repository, including a nil pointer wrapped in the interface.
var ErrNilRepository = errors.New("handler: author repository is required")

type AuthorHandler struct {
	repo   repository.AuthorRepository
	mapper mapping.Mapper

	// set by RegisterRoutes; used to build Location headers
	basePath string
}

// NewAuthorHandler fails when repo is nil. A nil mapper means the profile
// representation.
func NewAuthorHandler(repo repository.AuthorRepository, mapper mapping.Mapper) (*AuthorHandler, error) {
	if isNil(repo) {
		return nil, ErrNilRepository
	}
	if isNil(mapper) {
		mapper = mapping.NewProfileMapper(nil)
	}

	return &AuthorHandler{
		repo:     repo,
		mapper:   mapper,
		basePath: "/authors",
	}, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

type AuthorsResourceParameters struct {
	MainCategory string `form:"mainCategory" binding:"omitempty,max=200"`
	SearchQuery  string `form:"searchQuery" binding:"omitempty,max=200"`
}

func (h *AuthorHandler) RegisterRoutes(r *gin.RouterGroup) {
	authors := r.Group("/authors")
	{
		authors.GET("", h.ListAuthors)
		authors.HEAD("", h.ListAuthors)
		authors.GET("/:authorId", h.GetAuthor)
		authors.HEAD("/:authorId", h.AuthorExists)
		authors.POST("", h.CreateAuthor)
	}

	h.basePath = authors.BasePath()
}

func (h *AuthorHandler) authorLocation(id uuid.UUID) string {
	return path.Join(h.basePath, id.String())
}

func fail(c *gin.Context, err *apperror.Error) {
	_ = c.Error(err)
	c.Abort()
}

func parseAuthorID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("authorId"))
	if err != nil {
		fail(c, apperror.BadRequest("AUTHOR_INVALID_ID", "invalid author id"))
		return uuid.Nil, false
	}
	return id, true
}

// ListAuthors godoc
// @Summary      List authors
// @Description  Get all authors, optionally filtered by main category and a free-text search
// @Tags         authors
// @Produce      json
// @Param        mainCategory  query     string  false  "Exact main category"
// @Param        searchQuery   query     string  false  "Substring of first name, last name or main category"
// @Success      200  {array}   mapping.Author
// @Failure      400  {object}  validation.ErrorResponse  "Invalid query parameters"
// @Failure      500  {object}  validation.ErrorResponse  "Internal server error"
// @Router       /authors [get]
// @Router       /authors [head]
func (h *AuthorHandler) ListAuthors(c *gin.Context) {
	var params AuthorsResourceParameters
	if !validation.BindAndValidateQuery(c, &params) {
		return
	}

	authors, err := h.repo.List(c.Request.Context(), repository.AuthorListParams{
		MainCategory: params.MainCategory,
		SearchQuery:  params.SearchQuery,
	})
	if err != nil {
		fail(c, apperror.Internal("AUTHOR_LIST_FAILED", "failed to list authors", err))
		return
	}

	if c.Request.Method == http.MethodHead {
		c.Header("Content-Type", "application/json; charset=utf-8")
		c.Status(http.StatusOK)
		return
	}

	res := make([]any, 0, len(authors))
	for _, a := range authors {
		res = append(res, h.mapper.ToTransport(a))
	}

	c.JSON(http.StatusOK, res)
}

// GetAuthor godoc
// @Summary      Get author by ID
// @Description  Get a single author by its ID
// @Tags         authors
// @Produce      json
// @Param        authorId  path      string  true  "Author ID (UUID)"
// @Success      200  {object}  mapping.Author
// @Failure      400  {object}  validation.ErrorResponse  "Invalid ID"
// @Failure      404  "Author not found"
// @Failure      500  {object}  validation.ErrorResponse  "Internal server error"
// @Router       /authors/{authorId} [get]
func (h *AuthorHandler) GetAuthor(c *gin.Context) {
	id, ok := parseAuthorID(c)
	if !ok {
		return
	}

	author, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrAuthorNotFound) {
			fail(c, apperror.NotFound("AUTHOR_NOT_FOUND", "author not found"))
			return
		}

		fail(c, apperror.Internal("AUTHOR_FETCH_FAILED", "failed to fetch author", err))
		return
	}

	c.JSON(http.StatusOK, h.mapper.ToTransport(*author))
}

// AuthorExists godoc
// @Summary      Check an author exists
// @Tags         authors
// @Param        authorId  path  string  true  "Author ID (UUID)"
// @Success      200  "Author exists"
// @Failure      400  "Invalid ID"
// @Failure      404  "Author not found"
// @Router       /authors/{authorId} [head]
func (h *AuthorHandler) AuthorExists(c *gin.Context) {
	id, ok := parseAuthorID(c)
	if !ok {
		return
	}

	exists, err := h.repo.Exists(c.Request.Context(), id)
	if err != nil {
		fail(c, apperror.Internal("AUTHOR_FETCH_FAILED", "failed to fetch author", err))
		return
	}
	if !exists {
		fail(c, apperror.NotFound("AUTHOR_NOT_FOUND", "author not found"))
		return
	}

	c.Status(http.StatusOK)
}

// CreateAuthor godoc
// @Summary      Create an author
// @Description  Create a new author. The Location header points at the new resource.
// @Tags         authors
// @Accept       json
// @Produce      json
// @Param        payload  body      mapping.AuthorForCreation  true  "Author to create"
// @Success      201      {object}  mapping.Author
// @Header       201      {string}  Location  "URL of the created author"
// @Failure      400      {object}  validation.ErrorResponse   "Validation error"
// @Failure      500      {object}  validation.ErrorResponse   "Internal server error"
// @Router       /authors [post]
func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	var req mapping.AuthorForCreation
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	author := h.mapper.ToEntity(req)

	uow := h.repo.Begin(c.Request.Context())
	uow.Add(&author)
	if err := uow.Save(); err != nil {
		fail(c, apperror.Internal("AUTHOR_CREATE_FAILED", "failed to create author", err))
		return
	}

	c.Header("Location", h.authorLocation(author.ID))
	c.JSON(http.StatusCreated, h.mapper.ToTransport(author))
}
