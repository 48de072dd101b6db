package service

import (
	"errors"
	"os"
	"testing"

	"miniblog/database"
	"miniblog/logger"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setup(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("BLOG_LOG_FOLDER", t.TempDir())
	logger.InitLogger(logging.ERROR)

	dbPath := t.TempDir() + "/test.db"
	os.Remove(dbPath)
	db, err := database.InitDB(dbPath)
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() {
		database.CloseDB(db)
	})
	return db
}

func TestRegisterAndLogin(t *testing.T) {
	db := setup(t)
	svc := NewUserService(db)

	user, err := svc.Register("Alice", "Smith", "alice", "alice@x.com", "pw1")
	assert.NoError(t, err)
	assert.NotZero(t, user.Id)

	// The stored password must be a salted hash, never the plaintext.
	assert.NotEqual(t, "pw1", user.Password)
	assert.NotEmpty(t, user.Password)

	logged, err := svc.CheckCredentials("alice@x.com", "pw1")
	assert.NoError(t, err)
	assert.Equal(t, user.Id, logged.Id)

	_, err = svc.CheckCredentials("alice@x.com", "wrong")
	assert.True(t, errors.Is(err, ErrPasswordIncorrect))

	_, err = svc.CheckCredentials("nobody@x.com", "pw1")
	assert.True(t, errors.Is(err, ErrEmailNotFound))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := setup(t)
	svc := NewUserService(db)

	_, err := svc.Register("Alice", "Smith", "alice", "alice@x.com", "pw1")
	assert.NoError(t, err)

	_, err = svc.Register("Other", "Person", "alice", "other@x.com", "pw2")
	assert.True(t, errors.Is(err, ErrUsernameTaken))

	_, err = svc.Register("Other", "Person", "other", "alice@x.com", "pw2")
	assert.True(t, errors.Is(err, ErrEmailTaken))

	count, err := svc.CountUsers()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteUserCascadesArticles(t *testing.T) {
	db := setup(t)
	users := NewUserService(db)
	articles := NewArticleService(db)

	alice, err := users.Register("Alice", "Smith", "alice", "alice@x.com", "pw1")
	assert.NoError(t, err)
	bob, err := users.Register("Bob", "Jones", "bob", "bob@x.com", "pw2")
	assert.NoError(t, err)

	_, err = articles.Create("hello", alice.Id)
	assert.NoError(t, err)
	_, err = articles.Create("world", alice.Id)
	assert.NoError(t, err)
	kept, err := articles.Create("untouched", bob.Id)
	assert.NoError(t, err)

	err = users.DeleteUser(alice.Id)
	assert.NoError(t, err)

	_, err = users.GetByUsername("alice")
	assert.True(t, database.IsNotFound(err))

	all, err := articles.ListAll()
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, kept.Id, all[0].Id)
}

func TestDeleteUserMissing(t *testing.T) {
	db := setup(t)
	svc := NewUserService(db)

	err := svc.DeleteUser(12345)
	assert.True(t, database.IsNotFound(err))
}
