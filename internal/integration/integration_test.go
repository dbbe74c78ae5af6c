//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/snnyvrz/courselibrary/internal/handler"
	"github.com/snnyvrz/courselibrary/internal/mapping"
	"github.com/snnyvrz/courselibrary/internal/middleware"
	"github.com/snnyvrz/courselibrary/internal/model"
	"github.com/snnyvrz/courselibrary/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	testDB     *gorm.DB
	testRouter *gin.Engine
)

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_DB"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("TZ"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	testDB = db

	if err := db.AutoMigrate(&model.Author{}); err != nil {
		panic("failed to migrate: " + err.Error())
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())

	authorHandler, err := handler.NewAuthorHandler(repository.NewAuthorRepository(db), mapping.NewProfileMapper(nil))
	if err != nil {
		panic(err)
	}
	authorHandler.RegisterRoutes(r.Group("/api"))

	testRouter = r

	os.Exit(m.Run())
}

func resetDB(t *testing.T) {
	t.Helper()

	require.NoError(t, testDB.Exec("TRUNCATE TABLE authors").Error)
}

func createAuthor(t *testing.T, client *http.Client, baseURL string, payload map[string]any) (*http.Response, mapping.Author) {
	t.Helper()

	b, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := client.Post(baseURL+"/api/authors", "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()

	var created mapping.Author
	if resp.StatusCode == http.StatusCreated {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	}
	return resp, created
}

func fiction(first string) map[string]any {
	return map[string]any{
		"firstName":    first,
		"lastName":     "Doe",
		"mainCategory": "Fiction",
		"dateOfBirth":  "1980-01-01",
	}
}

func TestAuthors_CreateThenFetch(t *testing.T) {
	resetDB(t)
	srv := httptest.NewServer(testRouter)
	defer srv.Close()

	resp, created := createAuthor(t, srv.Client(), srv.URL, fiction("Jane"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Fiction", created.MainCategory)

	get, err := srv.Client().Get(srv.URL + resp.Header.Get("Location"))
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)

	var fetched mapping.Author
	require.NoError(t, json.NewDecoder(get.Body).Decode(&fetched))
	assert.Equal(t, created, fetched)
}

func TestAuthors_UnknownIDIsNotFound(t *testing.T) {
	resetDB(t)
	srv := httptest.NewServer(testRouter)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/api/authors/00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Zero(t, resp.ContentLength)
}

func TestAuthors_FilterByCategory(t *testing.T) {
	resetDB(t)
	srv := httptest.NewServer(testRouter)
	defer srv.Close()

	_, jane := createAuthor(t, srv.Client(), srv.URL, fiction("Jane"))

	rum := fiction("Nancy")
	rum["mainCategory"] = "Rum"
	createAuthor(t, srv.Client(), srv.URL, rum)

	resp, err := srv.Client().Get(srv.URL + "/api/authors?mainCategory=Fiction")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var authors []mapping.Author
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&authors))
	require.Len(t, authors, 1)
	assert.Equal(t, jane.ID, authors[0].ID)
}

func TestAuthors_SearchIsCaseInsensitive(t *testing.T) {
	resetDB(t)
	srv := httptest.NewServer(testRouter)
	defer srv.Close()

	createAuthor(t, srv.Client(), srv.URL, fiction("Jane"))

	resp, err := srv.Client().Get(srv.URL + "/api/authors?searchQuery=FICT")
	require.NoError(t, err)
	defer resp.Body.Close()

	var authors []mapping.Author
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&authors))
	assert.Len(t, authors, 1)
}
