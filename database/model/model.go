// Package model defines the persisted entities of the blog.
package model

import (
	"time"
)

// User is an account holder. The Password column always stores a bcrypt
// hash, never plaintext.
type User struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	FirstName   string    `json:"firstName" form:"first_name" gorm:"not null"`
	LastName    string    `json:"lastName" form:"last_name" gorm:"not null"`
	Username    string    `json:"username" form:"username" gorm:"uniqueIndex;not null"`
	Email       string    `json:"email" form:"email" gorm:"uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"not null"`
	DateCreated time.Time `json:"dateCreated" gorm:"autoCreateTime"`

	Articles []Article `json:"-" gorm:"foreignKey:Author;constraint:OnDelete:CASCADE"`
}

// Article is a post. Text emptiness is a handler rule, not a column
// constraint. Author must reference an existing user; deleting the user
// deletes the article (ON DELETE CASCADE).
type Article struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Text        string    `json:"text" form:"text" gorm:"type:text;not null"`
	DateCreated time.Time `json:"dateCreated" gorm:"autoCreateTime"`
	Author      int       `json:"author" gorm:"not null;index"`
}

// Message is a contact-form submission. Nothing reads these back through
// the web UI; they are a write-only sink.
type Message struct {
	Id      int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email   string `json:"email" form:"email" gorm:"size:80;not null"`
	Subject string `json:"subject" form:"subject" gorm:"size:80;not null"`
	Message string `json:"message" form:"message" gorm:"type:text"`
}
