// Package service implements the persistence operations behind the web
// controllers. Each service holds the shared gorm handle; every method is a
// single transaction unless stated otherwise.
package service

import (
	"errors"

	"miniblog/database"
	"miniblog/database/model"
	"miniblog/logger"
	"miniblog/util/crypto"

	"gorm.io/gorm"
)

var (
	ErrUsernameTaken     = errors.New("username already exists")
	ErrEmailTaken        = errors.New("email already registered")
	ErrEmailNotFound     = errors.New("email does not exist")
	ErrPasswordIncorrect = errors.New("password is incorrect")
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a new account with a bcrypt-hashed password. Duplicate
// username or email is reported before the insert is attempted; the unique
// indexes remain the backstop under concurrent sign-ups.
func (s *UserService) Register(firstName, lastName, username, email, password string) (*model.User, error) {
	var count int64
	if err := s.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	if err := s.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName: firstName,
		LastName:  lastName,
		Username:  username,
		Email:     email,
		Password:  hash,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CheckCredentials verifies email/password and returns the matching user.
// The two failure modes are distinct so the login page can tell the user
// which one happened, exactly as the UI always has.
func (s *UserService) CheckCredentials(email, password string) (*model.User, error) {
	user, err := s.GetByEmail(email)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}

	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil, ErrPasswordIncorrect
	}
	return user, nil
}

func (s *UserService) GetByID(id int) (*model.User, error) {
	user := &model.User{}
	err := s.db.Where("id = ?", id).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByEmail(email string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Where("email = ?", email).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByUsername(username string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Where("username = ?", username).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account and its articles in one explicit
// transaction. The schema also carries ON DELETE CASCADE; deleting the
// articles here keeps the cascade visible instead of implicit. No web route
// reaches this, only the admin CLI.
func (s *UserService) DeleteUser(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user := &model.User{}
		if err := tx.Where("id = ?", id).First(user).Error; err != nil {
			return err
		}
		if err := tx.Where("author = ?", id).Delete(&model.Article{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(user).Error; err != nil {
			return err
		}
		logger.Infof("deleted user %q and their articles", user.Username)
		return nil
	})
}

func (s *UserService) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(&model.User{}).Count(&count).Error
	return count, err
}
