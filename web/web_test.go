package web

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"miniblog/database"
	"miniblog/database/model"
	"miniblog/logger"
	"miniblog/web/locale"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type testApp struct {
	srv    *httptest.Server
	client *http.Client
	db     *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	t.Setenv("BLOG_LOG_FOLDER", t.TempDir())
	t.Setenv("BLOG_SECRET", "test-secret")
	logger.InitLogger(logging.ERROR)

	if err := locale.InitLocalizer(i18nFS); err != nil {
		t.Fatalf("init localizer: %v", err)
	}

	db, err := database.InitDB(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	s := NewServer(db)
	engine, err := s.initRouter()
	if err != nil {
		t.Fatalf("init router: %v", err)
	}

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}

	return &testApp{
		srv: srv,
		db:  db,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := a.client.Get(a.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := a.client.PostForm(a.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func (a *testApp) signUp(t *testing.T, username, email, password string) {
	t.Helper()
	resp := a.postForm(t, "/sign-up", url.Values{
		"username":   {username},
		"first_name": {"Test"},
		"last_name":  {"User"},
		"email":      {email},
		"password1":  {password},
		"password2":  {password},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func (a *testApp) logout(t *testing.T) {
	t.Helper()
	resp := a.get(t, "/logout")
	resp.Body.Close()
}

func TestAnonymousCreateRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/create-posts")
	resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestSignUpAndLoginFlow(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "alice", "alice@x.com", "pw1")
	app.logout(t)

	// Wrong password re-renders the login form with the incorrect-password
	// message and no redirect.
	resp := app.postForm(t, "/login", url.Values{
		"email":     {"alice@x.com"},
		"password1": {"wrong"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Password is incorrect.")

	// Unknown email is reported distinctly.
	resp = app.postForm(t, "/login", url.Values{
		"email":     {"nobody@x.com"},
		"password1": {"pw1"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Email does not exist.")

	// Correct credentials log in and land on home.
	resp = app.postForm(t, "/login", url.Values{
		"email":     {"alice@x.com"},
		"password1": {"pw1"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = app.get(t, "/")
	assert.Contains(t, body(t, resp), "Logged in!")
}

func TestDuplicateSignUpRedirectsBack(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "alice", "alice@x.com", "pw1")
	app.logout(t)

	resp := app.postForm(t, "/sign-up", url.Values{
		"username":   {"alice"},
		"first_name": {"Other"},
		"last_name":  {"Person"},
		"email":      {"other@x.com"},
		"password1":  {"pw2"},
		"password2":  {"pw2"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/sign-up", resp.Header.Get("Location"))

	var count int64
	assert.NoError(t, app.db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateAndDeletePermissions(t *testing.T) {
	app := newTestApp(t)

	// alice creates an article.
	app.signUp(t, "alice", "alice@x.com", "pw1")
	resp := app.postForm(t, "/create-posts", url.Values{"text": {"hello"}})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var article model.Article
	assert.NoError(t, app.db.First(&article).Error)
	assert.Equal(t, "hello", article.Text)
	app.logout(t)

	// bob tries to delete it: permission flash, article intact.
	app.signUp(t, "bob", "bob@x.com", "pw2")
	resp = app.get(t, "/delete-post/"+strconv.Itoa(article.Id))
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = app.get(t, "/")
	page := body(t, resp)
	assert.Contains(t, page, "You do not have permission to delete this post.")
	assert.Contains(t, page, "hello")

	// Deleting a nonexistent id is a flash too, not an error page.
	resp = app.get(t, "/delete-post/99999")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp = app.get(t, "/")
	assert.Contains(t, body(t, resp), "Post does not exist.")
	app.logout(t)

	// alice deletes her own article.
	resp = app.postForm(t, "/login", url.Values{
		"email":     {"alice@x.com"},
		"password1": {"pw1"},
	})
	resp.Body.Close()
	resp = app.get(t, "/delete-post/"+strconv.Itoa(article.Id))
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var count int64
	assert.NoError(t, app.db.Model(&model.Article{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestEmptyArticleRejected(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "alice", "alice@x.com", "pw1")

	resp := app.postForm(t, "/create-posts", url.Values{"text": {""}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "field can not be empty")

	var count int64
	assert.NoError(t, app.db.Model(&model.Article{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestEditByAnyAuthenticatedUser(t *testing.T) {
	app := newTestApp(t)

	app.signUp(t, "alice", "alice@x.com", "pw1")
	resp := app.postForm(t, "/create-posts", url.Values{"text": {"original"}})
	resp.Body.Close()

	var article model.Article
	assert.NoError(t, app.db.First(&article).Error)
	app.logout(t)

	// bob is not the author but can still edit.
	app.signUp(t, "bob", "bob@x.com", "pw2")
	resp = app.postForm(t, "/edit/"+strconv.Itoa(article.Id), url.Values{"text": {"rewritten"}})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	assert.NoError(t, app.db.First(&article, article.Id).Error)
	assert.Equal(t, "rewritten", article.Text)

	// A missing id on edit is the one hard 404 in the app.
	resp = app.get(t, "/edit/99999")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserPostsPage(t *testing.T) {
	app := newTestApp(t)

	app.signUp(t, "alice", "alice@x.com", "pw1")
	resp := app.postForm(t, "/create-posts", url.Values{"text": {"alice writes"}})
	resp.Body.Close()

	resp = app.get(t, "/posts/alice")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "alice writes")

	// Unknown username flashes and goes home.
	resp = app.get(t, "/posts/nobody")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	resp = app.get(t, "/")
	assert.Contains(t, body(t, resp), "No user with that username exists.")
}

func TestContactIsPublicAndUnvalidated(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/contact", url.Values{
		"email":   {"whatever"},
		"subject": {"hi"},
		"message": {"hello there"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var count int64
	assert.NoError(t, app.db.Model(&model.Message{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	resp = app.get(t, "/")
	assert.Contains(t, body(t, resp), "Message sent.")
}

func TestHomeListsArticlesAnonymously(t *testing.T) {
	app := newTestApp(t)

	app.signUp(t, "alice", "alice@x.com", "pw1")
	resp := app.postForm(t, "/create-posts", url.Values{"text": {"public post"}})
	resp.Body.Close()
	app.logout(t)

	resp = app.get(t, "/articles")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "public post")
	assert.Contains(t, page, "alice")
	// No edit affordance for anonymous readers.
	assert.False(t, strings.Contains(page, "/edit/"))
}
