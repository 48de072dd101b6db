package service

import (
	"errors"

	"miniblog/database"
	"miniblog/database/model"

	"gorm.io/gorm"
)

var (
	ErrArticleNotFound = errors.New("article does not exist")
	ErrNotAuthor       = errors.New("no permission for this article")
)

type ArticleService struct {
	db *gorm.DB
}

func NewArticleService(db *gorm.DB) *ArticleService {
	return &ArticleService{db: db}
}

// ArticleView is an article joined with its author's username for display.
type ArticleView struct {
	model.Article
	AuthorName string `json:"authorName"`
}

// Create inserts an article owned by authorID. Callers enforce the
// non-empty text rule; storage accepts whatever it is given.
func (s *ArticleService) Create(text string, authorID int) (*model.Article, error) {
	article := &model.Article{
		Text:   text,
		Author: authorID,
	}
	if err := s.db.Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ArticleService) GetByID(id int) (*model.Article, error) {
	article := &model.Article{}
	err := s.db.Where("id = ?", id).First(article).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return article, nil
}

// Edit replaces the article body. There is deliberately no ownership check
// here: any authenticated user may edit any article. That mirrors the
// shipped behavior; see DESIGN.md before "fixing" it.
func (s *ArticleService) Edit(id int, text string) error {
	result := s.db.Model(&model.Article{}).Where("id = ?", id).Update("text", text)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// Delete removes the article when requesterID is its author. Missing
// article and foreign article are distinct failures so the UI can report
// them differently.
func (s *ArticleService) Delete(id, requesterID int) error {
	article, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if article.Author != requesterID {
		return ErrNotAuthor
	}
	return s.db.Delete(article).Error
}

// ListAll returns every article in storage default order, each joined with
// its author's username for attribution.
func (s *ArticleService) ListAll() ([]ArticleView, error) {
	var views []ArticleView
	err := s.db.Model(&model.Article{}).
		Select("articles.*, users.username AS author_name").
		Joins("LEFT JOIN users ON users.id = articles.author").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *ArticleService) ListByAuthor(authorID int) ([]ArticleView, error) {
	var views []ArticleView
	err := s.db.Model(&model.Article{}).
		Select("articles.*, users.username AS author_name").
		Joins("LEFT JOIN users ON users.id = articles.author").
		Where("articles.author = ?", authorID).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *ArticleService) CountArticles() (int64, error) {
	var count int64
	err := s.db.Model(&model.Article{}).Count(&count).Error
	return count, err
}
