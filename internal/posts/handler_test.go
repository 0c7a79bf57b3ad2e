package posts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(repo Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	handler := NewHandler(repo, zap.NewNop())
	engine.GET("/posts", handler.Index)
	engine.GET("/posts/:id", handler.Show)
	return engine
}

func doRequest(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestHandler_Index(t *testing.T) {
	repo := newMockRepository()
	repo.add(&Post{ID: 1, Title: "First Post", Body: "Hello there."})
	repo.add(&Post{ID: 2, Title: "Second Post", Body: "Still here."})
	engine := newTestRouter(repo)

	w := doRequest(engine, "/posts")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Posts []Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Posts, 2)
}

func TestHandler_Index_Empty(t *testing.T) {
	engine := newTestRouter(newMockRepository())

	w := doRequest(engine, "/posts")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Posts []Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response.Posts)
}

func TestHandler_Show(t *testing.T) {
	repo := newMockRepository()
	repo.add(&Post{ID: 7, Title: "Detail Post", Body: "Full body text."})
	engine := newTestRouter(repo)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{
			name:     "existing post",
			path:     "/posts/7",
			wantCode: http.StatusOK,
			wantBody: "Detail Post",
		},
		{
			name:     "missing post",
			path:     "/posts/99",
			wantCode: http.StatusNotFound,
			wantBody: "post not found",
		},
		{
			name:     "non-numeric id",
			path:     "/posts/abc",
			wantCode: http.StatusNotFound,
			wantBody: "post not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(engine, tt.path)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
