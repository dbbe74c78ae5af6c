package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/snnyvrz/courselibrary/internal/mapping"
	"github.com/snnyvrz/courselibrary/internal/middleware"
	"github.com/snnyvrz/courselibrary/internal/model"
	"github.com/snnyvrz/courselibrary/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func setupRouterWithRepo(t *testing.T, repo repository.AuthorRepository, mapper mapping.Mapper) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())

	h, err := NewAuthorHandler(repo, mapper)
	require.NoError(t, err)
	h.RegisterRoutes(r.Group("/api"))

	return r
}

func setupTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()

	return setupRouterWithRepo(t, repository.NewAuthorRepository(db), mapping.NewProfileMapper(fixedNow))
}

func doRequest(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body=%s", w.Body.String())
	return out
}

type fakeAuthorRepo struct {
	ListFn     func(ctx context.Context, params repository.AuthorListParams) ([]model.Author, error)
	FindByIDFn func(ctx context.Context, id uuid.UUID) (*model.Author, error)
	ExistsFn   func(ctx context.Context, id uuid.UUID) (bool, error)
	SaveFn     func(staged []*model.Author) error
}

func (f *fakeAuthorRepo) List(ctx context.Context, params repository.AuthorListParams) ([]model.Author, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, params)
	}
	return []model.Author{}, nil
}

func (f *fakeAuthorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	if f.FindByIDFn != nil {
		return f.FindByIDFn(ctx, id)
	}
	return nil, repository.ErrAuthorNotFound
}

func (f *fakeAuthorRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.ExistsFn != nil {
		return f.ExistsFn(ctx, id)
	}
	return false, nil
}

func (f *fakeAuthorRepo) Begin(ctx context.Context) repository.AuthorUnitOfWork {
	return &fakeUnitOfWork{repo: f}
}

type fakeUnitOfWork struct {
	repo   *fakeAuthorRepo
	staged []*model.Author
}

func (u *fakeUnitOfWork) Add(a *model.Author) {
	u.staged = append(u.staged, a)
}

func (u *fakeUnitOfWork) Save() error {
	if u.repo.SaveFn != nil {
		return u.repo.SaveFn(u.staged)
	}
	for _, a := range u.staged {
		a.ID = uuid.New()
	}
	return nil
}
