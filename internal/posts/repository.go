package posts

import (
	"errors"

	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

type Repository interface {
	ListPosts() ([]Post, error)
	GetPost(id uint) (*Post, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListPosts() ([]Post, error) {
	var posts []Post
	if err := r.db.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repository) GetPost(id uint) (*Post, error) {
	var post Post
	if err := r.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}
