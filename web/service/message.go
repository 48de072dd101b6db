package service

import (
	"miniblog/database/model"

	"gorm.io/gorm"
)

type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// Create persists a contact-form submission as-is. No field is validated;
// the table is a write-only sink read by operators directly.
func (s *MessageService) Create(email, subject, body string) (*model.Message, error) {
	msg := &model.Message{
		Email:   email,
		Subject: subject,
		Message: body,
	}
	if err := s.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) CountMessages() (int64, error) {
	var count int64
	err := s.db.Model(&model.Message{}).Count(&count).Error
	return count, err
}
