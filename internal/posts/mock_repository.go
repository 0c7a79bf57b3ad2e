package posts

import "sync"

type mockRepository struct {
	posts map[uint]*Post
	mu    sync.RWMutex
}

func newMockRepository() *mockRepository {
	return &mockRepository{posts: make(map[uint]*Post)}
}

func (r *mockRepository) add(post *Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = post
}

func (r *mockRepository) ListPosts() ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (r *mockRepository) GetPost(id uint) (*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	if !exists {
		return nil, ErrPostNotFound
	}
	clone := *post
	return &clone, nil
}
