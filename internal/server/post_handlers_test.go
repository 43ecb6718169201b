package server

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"yatube/internal/media"
	"yatube/internal/models"
	"yatube/internal/notifications"
	"yatube/internal/service"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartPost builds a form with the given fields and an optional image.
func multipartPost(t *testing.T, fields map[string]string, upload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if upload != nil {
		part, err := w.CreateFormFile("image", "upload.png")
		require.NoError(t, err)
		_, err = part.Write(upload)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func storedImages(t *testing.T, root string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, media.PostsDir))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

func TestCreatePost(t *testing.T) {
	e := newTestEnv(t, nil)
	alice := testutil.CreateUser(t, e.db, "alice")
	testutil.CreateGroup(t, e.db, "cats")

	t.Run("anonymous", func(t *testing.T) {
		resp := e.sendJSON(http.MethodPost, "/api/posts", map[string]string{"text": "hi"}, 0)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("blank text", func(t *testing.T) {
		resp := e.sendJSON(http.MethodPost, "/api/posts", map[string]string{"text": "   "}, alice.ID)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[models.ErrorResponse](t, resp)
		assert.Equal(t, models.CodeValidation, body.Code)
		assert.Contains(t, body.Fields, "text")
	})

	t.Run("unknown group", func(t *testing.T) {
		resp := e.sendJSON(http.MethodPost, "/api/posts", map[string]string{"text": "hi", "group": "dogs"}, alice.ID)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decode[models.ErrorResponse](t, resp).Fields, "group")
	})

	t.Run("created in group", func(t *testing.T) {
		resp := e.sendJSON(http.MethodPost, "/api/posts", map[string]string{"text": "Hello", "group": "cats"}, alice.ID)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		post := decode[models.Post](t, resp)
		assert.Equal(t, alice.ID, post.AuthorID)
		assert.Equal(t, "alice", post.Author.Username)
		require.NotNil(t, post.Group)
		assert.Equal(t, "cats", post.Group.Slug)
		assert.WithinDuration(t, time.Now(), post.PubDate, time.Minute)

		listing := decode[service.GroupListing](t, e.get("/api/groups/cats/posts", 0))
		require.Len(t, listing.Page.Items, 1)
		assert.Equal(t, post.ID, listing.Page.Items[0].ID)
	})
}

func TestCreatePost_WithImage(t *testing.T) {
	e := newTestEnv(t, nil)
	alice := testutil.CreateUser(t, e.db, "alice")

	body, contentType := multipartPost(t, map[string]string{"text": "with picture"}, pngBytes(t))
	resp := e.request(http.MethodPost, "/api/posts", body, contentType, alice.ID)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decode[models.Post](t, resp)

	assert.Equal(t, "with picture", post.Text)
	assert.True(t, strings.HasPrefix(post.Image, media.PostsDir+"/"), post.Image)
	assert.True(t, strings.HasSuffix(post.Image, ".png"), post.Image)
	assert.Len(t, storedImages(t, e.mediaRoot), 1)
	assert.Equal(t, "/media/"+post.Image, post.ImageURL)

	served := e.get(post.ImageURL, 0)
	assert.Equal(t, http.StatusOK, served.StatusCode)

	index := decode[service.PostPage](t, e.get("/api/posts", 0))
	require.Len(t, index.Items, 1)
	assert.Equal(t, post.ImageURL, index.Items[0].ImageURL)

	detail := decode[service.PostDetail](t, e.get("/api/posts/"+itoa(post.ID), 0))
	assert.Equal(t, post.ImageURL, detail.Post.ImageURL)
}

func TestCreatePost_RejectedUploadsLeaveNoFiles(t *testing.T) {
	e := newTestEnv(t, nil)
	alice := testutil.CreateUser(t, e.db, "alice")

	t.Run("not an image", func(t *testing.T) {
		body, contentType := multipartPost(t, map[string]string{"text": "hi"}, []byte("definitely not a png"))
		resp := e.request(http.MethodPost, "/api/posts", body, contentType, alice.ID)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, msgInvalidImage, decode[models.ErrorResponse](t, resp).Fields["image"])
	})

	t.Run("valid image but blank text", func(t *testing.T) {
		body, contentType := multipartPost(t, map[string]string{"text": ""}, pngBytes(t))
		resp := e.request(http.MethodPost, "/api/posts", body, contentType, alice.ID)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decode[models.ErrorResponse](t, resp).Fields, "text")
	})

	assert.Empty(t, storedImages(t, e.mediaRoot))
	var n int64
	require.NoError(t, e.db.Model(&models.Post{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestEditPost(t *testing.T) {
	e := newTestEnv(t, nil)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	cats := testutil.CreateGroup(t, e.db, "cats")
	pub := time.Date(2023, 5, 5, 12, 0, 0, 0, time.UTC)
	post := testutil.CreatePost(t, e.db, alice, cats, "original", pub)
	target := "/api/posts/" + itoa(post.ID)

	stored := func() models.Post {
		var p models.Post
		require.NoError(t, e.db.First(&p, post.ID).Error)
		return p
	}

	t.Run("anonymous", func(t *testing.T) {
		resp := e.sendJSON(http.MethodPut, target, map[string]string{"text": "x"}, 0)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non-author", func(t *testing.T) {
		resp := e.sendJSON(http.MethodPut, target, map[string]string{"text": "hijacked"}, bob.ID)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, models.CodeForbidden, decode[models.ErrorResponse](t, resp).Code)
		assert.Equal(t, "original", stored().Text)
	})

	t.Run("unknown post", func(t *testing.T) {
		resp := e.sendJSON(http.MethodPut, "/api/posts/9999", map[string]string{"text": "x"}, alice.ID)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad id", func(t *testing.T) {
		resp := e.sendJSON(http.MethodPut, "/api/posts/abc", map[string]string{"text": "x"}, alice.ID)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("author", func(t *testing.T) {
		resp := e.sendJSON(http.MethodPut, target, map[string]string{"text": "edited"}, alice.ID)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		edited := decode[models.Post](t, resp)
		assert.Equal(t, "edited", edited.Text)
		assert.Nil(t, edited.Group)

		p := stored()
		assert.Equal(t, "edited", p.Text)
		assert.Equal(t, alice.ID, p.AuthorID)
		assert.True(t, pub.Equal(p.PubDate))
	})
}

func TestGetPost(t *testing.T) {
	e := newTestEnv(t, nil)
	alice := testutil.CreateUser(t, e.db, "alice")
	post := testutil.CreatePost(t, e.db, alice, nil, "detail", time.Now().UTC())
	testutil.CreatePost(t, e.db, alice, nil, "other", time.Now().UTC())

	resp := e.get("/api/posts/"+itoa(post.ID), 0)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[service.PostDetail](t, resp)
	assert.Equal(t, "detail", detail.Post.Text)
	assert.Equal(t, int64(2), detail.AuthorPostCount)
	assert.Empty(t, detail.Comments)

	assert.Equal(t, http.StatusNotFound, e.get("/api/posts/4242", 0).StatusCode)
}

func TestAddComment(t *testing.T) {
	_, rdb := newRedis(t)
	e := newTestEnv(t, rdb)
	events := subscribe(t, rdb)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	post := testutil.CreatePost(t, e.db, alice, nil, "commented", time.Now().UTC())
	target := "/api/posts/" + itoa(post.ID) + "/comments"

	resp := e.sendJSON(http.MethodPost, target, map[string]string{"text": "nice post"}, bob.ID)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	comment := decode[models.Comment](t, resp)
	assert.Equal(t, "nice post", comment.Text)
	assert.Equal(t, bob.ID, comment.AuthorID)
	assert.Nil(t, comment.Post)

	assert.Eventually(t, func() bool {
		_, evs := events.snapshot()
		return len(evs) == 1
	}, 2*time.Second, 10*time.Millisecond)
	channels, evs := events.snapshot()
	require.Len(t, evs, 1)
	assert.Equal(t, notifications.UserChannel(alice.ID), channels[0])
	assert.Equal(t, notifications.EventCommentAdded, evs[0].Type)
	assert.Equal(t, comment.ID, evs[0].CommentID)

	assert.Equal(t, http.StatusUnauthorized,
		e.sendJSON(http.MethodPost, target, map[string]string{"text": "x"}, 0).StatusCode)
	assert.Equal(t, http.StatusNotFound,
		e.sendJSON(http.MethodPost, "/api/posts/777/comments", map[string]string{"text": "x"}, bob.ID).StatusCode)
	assert.Equal(t, http.StatusBadRequest,
		e.sendJSON(http.MethodPost, target, map[string]string{"text": " "}, bob.ID).StatusCode)

	detail := decode[service.PostDetail](t, e.get("/api/posts/"+itoa(post.ID), 0))
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "bob", detail.Comments[0].Author.Username)
}

func TestCreatePost_BroadcastsEvent(t *testing.T) {
	_, rdb := newRedis(t)
	e := newTestEnv(t, rdb)
	events := subscribe(t, rdb)
	alice := testutil.CreateUser(t, e.db, "alice")

	resp := e.sendJSON(http.MethodPost, "/api/posts", map[string]string{"text": "news"}, alice.ID)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decode[models.Post](t, resp)

	assert.Eventually(t, func() bool {
		_, evs := events.snapshot()
		return len(evs) == 1
	}, 2*time.Second, 10*time.Millisecond)
	channels, evs := events.snapshot()
	require.Len(t, evs, 1)
	assert.Equal(t, notifications.BroadcastChannel, channels[0])
	assert.Equal(t, notifications.EventPostCreated, evs[0].Type)
	assert.Equal(t, post.ID, evs[0].PostID)
}
