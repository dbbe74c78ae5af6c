// Package mapping converts between the persisted author entity and the
// shapes exchanged over HTTP.
package mapping

import (
	"time"

	"github.com/google/uuid"
	"github.com/snnyvrz/courselibrary/internal/model"
)

type Mapper interface {
	ToTransport(a model.Author) any
	ToEntity(in AuthorForCreation) model.Author
}

type AuthorForCreation struct {
	FirstName    string      `json:"firstName" binding:"required,max=50"`
	LastName     string      `json:"lastName" binding:"required,max=50"`
	MainCategory string      `json:"mainCategory" binding:"required,max=50"`
	DateOfBirth  *model.Date `json:"dateOfBirth" binding:"required" swaggertype:"string" example:"1980-01-01"`
}

// Author is the profile representation: a display name and a derived age.
type Author struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	MainCategory string    `json:"mainCategory"`
}

// RawAuthor mirrors the stored fields.
type RawAuthor struct {
	ID           uuid.UUID  `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	MainCategory string     `json:"mainCategory"`
	DateOfBirth  model.Date `json:"dateOfBirth" swaggertype:"string" example:"1980-01-01"`
}

func toEntity(in AuthorForCreation) model.Author {
	a := model.Author{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		MainCategory: in.MainCategory,
	}
	if in.DateOfBirth != nil {
		a.DateOfBirth = in.DateOfBirth.Time
	}
	return a
}

type ProfileMapper struct {
	now func() time.Time
}

func NewProfileMapper(now func() time.Time) *ProfileMapper {
	if now == nil {
		now = time.Now
	}
	return &ProfileMapper{now: now}
}

func (m *ProfileMapper) ToTransport(a model.Author) any {
	return Author{
		ID:           a.ID,
		Name:         a.FullName(),
		Age:          a.Age(m.now()),
		MainCategory: a.MainCategory,
	}
}

func (m *ProfileMapper) ToEntity(in AuthorForCreation) model.Author {
	return toEntity(in)
}

type RawMapper struct{}

func NewRawMapper() *RawMapper {
	return &RawMapper{}
}

func (RawMapper) ToTransport(a model.Author) any {
	return RawAuthor{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		MainCategory: a.MainCategory,
		DateOfBirth:  model.Date{Time: a.DateOfBirth},
	}
}

func (RawMapper) ToEntity(in AuthorForCreation) model.Author {
	return toEntity(in)
}

// ForRepresentation picks a mapper by its configured name. Unknown names
// fall back to the profile mapper.
func ForRepresentation(name string) Mapper {
	if name == "raw" {
		return NewRawMapper()
	}
	return NewProfileMapper(nil)
}
