package mkmtrees

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	cleanup := func() {
		s.Close()
	}

	return s, cleanup
}

func firstPage(limit int) paging.Params {
	return paging.Params{Page: 1, Limit: limit}
}

func mustCreatePost(t *testing.T, s *Store, title string, published bool, tags ...string) int64 {
	t.Helper()
	ts := timestamp(now())
	p := Post{Title: title, Slug: Slugify(title), Content: "<p>" + title + "</p>", Published: published,
		CreatedAt: ts, UpdatedAt: ts}
	if published {
		p.PublishedAt = &ts
	}
	id, err := s.CreatePost(context.Background(), p, tags)
	if err != nil {
		t.Fatalf("CreatePost(%q) failed: %v", title, err)
	}
	return id
}

func TestNewStoreSeedsDefaultAuthor(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	id, err := s.DefaultAuthorID(context.Background())
	if err != nil {
		t.Fatalf("DefaultAuthorID failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a seeded default author")
	}
}

func TestNewStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()

	s, err = NewStore(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s.Close()

	res, err := s.ListAuthors(context.Background(), "", firstPage(10))
	if err != nil {
		t.Fatalf("ListAuthors failed: %v", err)
	}
	if res.Pagination.Total != 1 {
		t.Errorf("expected exactly 1 seeded author after reopen, got %d", res.Pagination.Total)
	}
}

func TestCreatePostWithTags(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	id := mustCreatePost(t, s, "Crown Reduction Basics", true, "Oak", "Pruning", "oak")

	post, err := s.GetPost(ctx, id)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if post.Slug != "crown-reduction-basics" {
		t.Errorf("expected slug crown-reduction-basics, got %q", post.Slug)
	}
	if len(post.Tags) != 2 {
		t.Fatalf("expected 2 tags (duplicate names collapse), got %d: %+v", len(post.Tags), post.Tags)
	}
	if post.Tags[0].Slug != "oak" || post.Tags[1].Slug != "pruning" {
		t.Errorf("unexpected tags: %+v", post.Tags)
	}
}

func TestUpdatePostTags(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	id := mustCreatePost(t, s, "Hedge Season", true, "hedges", "summer")
	post, _ := s.GetPost(ctx, id)

	// nil keeps the existing links
	post.Title = "Hedge Season Guide"
	if err := s.UpdatePost(ctx, post, nil); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	got, _ := s.GetPost(ctx, id)
	if len(got.Tags) != 2 {
		t.Errorf("expected tags kept, got %+v", got.Tags)
	}

	if err := s.UpdatePost(ctx, got, []string{}); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	got, _ = s.GetPost(ctx, id)
	if len(got.Tags) != 0 {
		t.Errorf("expected tags cleared, got %+v", got.Tags)
	}
}

func TestUpdatePostNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := s.UpdatePost(context.Background(), Post{ID: 999, Title: "x", Slug: "x"}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPostsPublishedOnly(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	mustCreatePost(t, s, "Published One", true)
	mustCreatePost(t, s, "Draft One", false)

	res, err := s.ListPosts(ctx, PostFilter{PublishedOnly: true}, firstPage(10))
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Title != "Published One" {
		t.Errorf("expected only the published post, got %+v", res.Items)
	}

	res, _ = s.ListPosts(ctx, PostFilter{Status: "draft"}, firstPage(10))
	if len(res.Items) != 1 || res.Items[0].Title != "Draft One" {
		t.Errorf("expected only the draft, got %+v", res.Items)
	}

	if _, err := s.GetPublishedPost(ctx, "draft-one"); !errors.Is(err, ErrNotFound) {
		t.Errorf("draft should not be visible by slug, got %v", err)
	}
}

func TestListPostsByTagPaginates(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		mustCreatePost(t, s, "Gorse Clearing Part "+string(rune('A'+i)), true, "gorse")
	}
	mustCreatePost(t, s, "Unrelated", true, "oak")

	res, err := s.ListPosts(ctx, PostFilter{Tag: "Gorse", PublishedOnly: true}, paging.Params{Page: 2, Limit: 5})
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(res.Items) != 2 {
		t.Errorf("expected 2 items on page 2, got %d", len(res.Items))
	}
	pg := res.Pagination
	if pg.Total != 7 || pg.TotalPages != 2 || !pg.HasPrev || pg.HasNext {
		t.Errorf("unexpected pagination: %+v", pg)
	}
}

func TestListTagsPublishedCounts(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	mustCreatePost(t, s, "One", true, "oak")
	mustCreatePost(t, s, "Two", false, "oak", "ash")

	res, err := s.ListTags(ctx, "", true, firstPage(10))
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected only tags with published posts, got %+v", res.Items)
	}
	if res.Items[0].Slug != "oak" || res.Items[0].PostCount != 1 {
		t.Errorf("unexpected tag: %+v", res.Items[0])
	}

	all, _ := s.ListTags(ctx, "", false, firstPage(10))
	if len(all.Items) != 2 {
		t.Errorf("expected 2 tags in admin listing, got %d", len(all.Items))
	}
}

func TestDeleteAuthorRules(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	defaultID, _ := s.DefaultAuthorID(ctx)
	if err := s.DeleteAuthor(ctx, defaultID); !errors.Is(err, ErrLastAuthor) {
		t.Fatalf("expected ErrLastAuthor, got %v", err)
	}

	ts := timestamp(now())
	otherID, err := s.CreateAuthor(ctx, Author{Name: "Sam Arborist", Slug: "sam-arborist", CreatedAt: ts, UpdatedAt: ts})
	if err != nil {
		t.Fatalf("CreateAuthor failed: %v", err)
	}

	p := Post{Title: "Bylined", Slug: "bylined", AuthorID: &otherID, CreatedAt: ts, UpdatedAt: ts}
	postID, err := s.CreatePost(ctx, p, nil)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if err := s.DeleteAuthor(ctx, otherID); !errors.Is(err, ErrAuthorInUse) {
		t.Fatalf("expected ErrAuthorInUse, got %v", err)
	}

	if err := s.DeletePost(ctx, postID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if err := s.DeleteAuthor(ctx, defaultID); err != nil {
		t.Fatalf("deleting the default author with another present failed: %v", err)
	}
	newDefault, err := s.DefaultAuthorID(ctx)
	if err != nil || newDefault != otherID {
		t.Errorf("expected %d promoted to default, got %d (%v)", otherID, newDefault, err)
	}
}

func TestMediaUsage(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	ts := timestamp(now())
	mediaID, err := s.CreateMedia(ctx, Media{Filename: "a.jpg", OriginalFilename: "a.jpg", MimeType: "image/jpeg",
		URL: "/media/a.jpg", R2Key: "media/a.jpg", CreatedAt: ts, UpdatedAt: ts})
	if err != nil {
		t.Fatalf("CreateMedia failed: %v", err)
	}

	u, err := s.GetMediaUsage(ctx, mediaID)
	if err != nil {
		t.Fatalf("GetMediaUsage failed: %v", err)
	}
	if u.InUse() {
		t.Errorf("fresh media should be unused: %+v", u)
	}

	if _, err := s.CreatePost(ctx, Post{Title: "Featured", Slug: "featured", FeaturedImageID: &mediaID,
		CreatedAt: ts, UpdatedAt: ts}, nil); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	u, _ = s.GetMediaUsage(ctx, mediaID)
	if u.Posts != 1 || !u.InUse() {
		t.Errorf("expected one post reference, got %+v", u)
	}
}

func TestSubscriberReactivate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	ts := timestamp(now())
	id, err := s.CreateSubscriber(ctx, "jo@example.com", "website", ts)
	if err != nil {
		t.Fatalf("CreateSubscriber failed: %v", err)
	}
	if err := s.SetSubscriberStatus(ctx, id, SubscriberUnsubscribed, ts); err != nil {
		t.Fatalf("SetSubscriberStatus failed: %v", err)
	}
	sub, _ := s.GetSubscriber(ctx, id)
	if sub.Status != SubscriberUnsubscribed || sub.UnsubscribedAt == nil {
		t.Fatalf("expected unsubscribed with timestamp, got %+v", sub)
	}

	if err := s.ReactivateSubscriber(ctx, id, ts); err != nil {
		t.Fatalf("ReactivateSubscriber failed: %v", err)
	}
	sub, _ = s.GetSubscriberByEmail(ctx, "jo@example.com")
	if sub.ID != id || sub.Status != SubscriberActive || sub.UnsubscribedAt != nil {
		t.Errorf("expected same row reactivated, got %+v", sub)
	}

	if _, err := s.CreateSubscriber(ctx, "jo@example.com", "website", ts); err == nil {
		t.Error("expected unique constraint on email")
	}
}

func TestListReviewsSortFallback(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for i, name := range []string{"Alice", "Bob", "Cara"} {
		ts := timestamp(now())
		_, err := s.CreateReview(ctx, Review{ReviewerName: name, Rating: i + 3, Content: "Great job",
			Approved: name != "Bob", CreatedAt: ts, UpdatedAt: ts})
		if err != nil {
			t.Fatalf("CreateReview failed: %v", err)
		}
	}

	res, err := s.ListReviews(ctx, ReviewFilter{SortBy: "rating; DROP TABLE reviews", SortOrder: "sideways"}, firstPage(10))
	if err != nil {
		t.Fatalf("ListReviews with bad sort failed: %v", err)
	}
	if len(res.Items) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(res.Items))
	}
	if res.Items[0].ReviewerName != "Cara" {
		t.Errorf("expected default newest-first order, got %s first", res.Items[0].ReviewerName)
	}

	res, _ = s.ListReviews(ctx, ReviewFilter{SortBy: "rating", SortOrder: "asc"}, firstPage(10))
	if res.Items[0].Rating != 3 {
		t.Errorf("expected lowest rating first, got %d", res.Items[0].Rating)
	}

	res, _ = s.ListReviews(ctx, ReviewFilter{ApprovedOnly: true}, firstPage(10))
	if len(res.Items) != 2 {
		t.Errorf("expected 2 approved reviews, got %d", len(res.Items))
	}
}

func TestStatsCounts(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	mustCreatePost(t, s, "Live", true)
	mustCreatePost(t, s, "Draft", false)
	ts := timestamp(now())
	if _, err := s.CreateSubmission(ctx, Submission{Name: "Pat", Email: "pat@example.com", Message: "Quote please",
		CreatedAt: ts}); err != nil {
		t.Fatalf("CreateSubmission failed: %v", err)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Posts != 2 || st.PublishedPosts != 1 || st.DraftPosts != 1 {
		t.Errorf("unexpected post counts: %+v", st)
	}
	if st.Submissions != 1 || st.UnprocessedSubs != 1 || len(st.RecentSubmissions) != 1 {
		t.Errorf("unexpected submission counts: %+v", st)
	}
}

func TestUserAuthenticate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "Admin@Example.com", "Admin", "correct horse"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	u, err := s.Authenticate(ctx, "admin@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.Email != "admin@example.com" {
		t.Errorf("expected lowercased email, got %q", u.Email)
	}
	if _, err := s.Authenticate(ctx, "admin@example.com", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a wrong password, got %v", err)
	}
}
