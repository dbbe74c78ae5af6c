package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/snnyvrz/courselibrary/internal/model"
	"gorm.io/gorm"
)

var ErrAuthorNotFound = errors.New("author not found")

// likeEscaper makes LIKE wildcards in user input match literally. Paired
// with ESCAPE '\' in the query.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// AuthorListParams narrows List. Blank fields are ignored.
type AuthorListParams struct {
	MainCategory string
	SearchQuery  string
}

type AuthorRepository interface {
	List(ctx context.Context, params AuthorListParams) ([]model.Author, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Begin(ctx context.Context) AuthorUnitOfWork
}

// AuthorUnitOfWork stages new authors until Save commits them. Nothing
// staged reaches the database unless Save succeeds.
type AuthorUnitOfWork interface {
	Add(author *model.Author)
	Save() error
}

type GormAuthorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) *GormAuthorRepository {
	return &GormAuthorRepository{db: db}
}

func (r *GormAuthorRepository) List(ctx context.Context, params AuthorListParams) ([]model.Author, error) {
	q := r.db.WithContext(ctx).Model(&model.Author{})

	if category := strings.TrimSpace(params.MainCategory); category != "" {
		q = q.Where("main_category = ?", category)
	}

	if search := strings.TrimSpace(params.SearchQuery); search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		q = q.Where(
			`(LOWER(main_category) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\')`,
			like, like, like,
		)
	}

	authors := make([]model.Author, 0)
	if err := q.Order("last_name ASC").
		Order("first_name ASC").
		Order("id ASC").
		Find(&authors).Error; err != nil {

		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

func (r *GormAuthorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	var author model.Author
	if err := r.db.WithContext(ctx).First(&author, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("find author %s: %w", id, err)
	}
	return &author, nil
}

func (r *GormAuthorRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Author{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {

		return false, fmt.Errorf("check author %s: %w", id, err)
	}
	return count > 0, nil
}

func (r *GormAuthorRepository) Begin(ctx context.Context) AuthorUnitOfWork {
	return &gormAuthorUnitOfWork{ctx: ctx, db: r.db}
}

type gormAuthorUnitOfWork struct {
	ctx    context.Context
	db     *gorm.DB
	staged []*model.Author
}

func (u *gormAuthorUnitOfWork) Add(author *model.Author) {
	u.staged = append(u.staged, author)
}

func (u *gormAuthorUnitOfWork) Save() error {
	if len(u.staged) == 0 {
		return nil
	}

	err := u.db.WithContext(u.ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range u.staged {
			if err := tx.Create(a).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save authors: %w", err)
	}

	u.staged = nil
	return nil
}
