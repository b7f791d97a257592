package mkmtrees

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ejrshadbolt/mkmtrees-sub001/blob"
	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
	"github.com/ejrshadbolt/mkmtrees-sub001/turnstile"
)

const testSecret = "test-session-secret-0123456789abcdef"

func newTestApp(t *testing.T, opts ...Option) (*App, *Store, *blob.Memory) {
	t.Helper()
	s, cleanup := setupTestStore(t)
	t.Cleanup(cleanup)
	mem := blob.NewMemory()
	a := New(SiteConfig{SessionSecret: testSecret, URL: "http://example.com"},
		append([]Option{WithStore(s), WithBlobStore(mem)}, opts...)...)
	a.Echo.Logger.SetOutput(io.Discard)
	a.Setup()
	return a, s, mem
}

func request(a *App, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, a *App, s *Store) []*http.Cookie {
	t.Helper()
	if _, err := s.CreateUser(context.Background(), "admin@example.com", "Admin", "password123"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	rec := request(a, http.MethodPost, "/api/auth/login", `{"email":"admin@example.com","password":"password123"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	return rec.Result().Cookies()
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestAdminRequiresSession(t *testing.T) {
	a, _, _ := newTestApp(t)

	for _, path := range []string{"/api/admin/posts", "/api/admin/media", "/api/admin/stats", "/api/auth/me"} {
		rec := request(a, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
		if body := decode[apiError](t, rec); body.Error != "Unauthorized" {
			t.Errorf("%s: unexpected body %+v", path, body)
		}
	}
}

func TestLoginAndMe(t *testing.T) {
	a, s, _ := newTestApp(t)
	cookies := login(t, a, s)

	rec := request(a, http.MethodGet, "/api/auth/me", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("user JSON must not include the password hash")
	}
	if u := decode[User](t, rec); u.Email != "admin@example.com" {
		t.Errorf("unexpected user %+v", u)
	}
}

func TestLoginRateLimit(t *testing.T) {
	a, s, _ := newTestApp(t)
	s.CreateUser(context.Background(), "admin@example.com", "Admin", "password123")

	bad := `{"email":"admin@example.com","password":"nope"}`
	for i := 0; i < 5; i++ {
		if rec := request(a, http.MethodPost, "/api/auth/login", bad, nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}
	good := `{"email":"admin@example.com","password":"password123"}`
	if rec := request(a, http.MethodPost, "/api/auth/login", good, nil); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after 5 failures, got %d", rec.Code)
	}
}

func TestNewsletterSubscribeFlow(t *testing.T) {
	a, s, _ := newTestApp(t)
	ctx := context.Background()

	rec := request(a, http.MethodPost, "/api/newsletter", `{"email":" Jo@Example.com "}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first subscribe: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = request(a, http.MethodPost, "/api/newsletter", `{"email":"jo@example.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second subscribe: expected 200, got %d", rec.Code)
	}
	if msg := decode[apiMessage](t, rec).Message; !strings.Contains(msg, "already subscribed") {
		t.Errorf("unexpected message %q", msg)
	}

	rec = request(a, http.MethodPost, "/api/newsletter/unsubscribe", `{"email":"jo@example.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unsubscribe: expected 200, got %d", rec.Code)
	}
	sub, _ := s.GetSubscriberByEmail(ctx, "jo@example.com")
	if sub.Status != SubscriberUnsubscribed {
		t.Fatalf("expected unsubscribed, got %q", sub.Status)
	}

	rec = request(a, http.MethodPost, "/api/newsletter", `{"email":"jo@example.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("resubscribe: expected 200, got %d", rec.Code)
	}
	if msg := decode[apiMessage](t, rec).Message; !strings.Contains(msg, "Welcome back") {
		t.Errorf("unexpected message %q", msg)
	}

	all, _ := s.AllSubscribers(ctx, "", "")
	if len(all) != 1 || all[0].ID != sub.ID || all[0].Status != SubscriberActive || all[0].UnsubscribedAt != nil {
		t.Errorf("expected the same row reactivated, got %+v", all)
	}
}

func TestNewsletterValidation(t *testing.T) {
	a, _, _ := newTestApp(t)

	for _, body := range []string{`{}`, `{"email":"not-an-email"}`, `{"email":"Jo <jo@example.com>"}`} {
		rec := request(a, http.MethodPost, "/api/newsletter", body, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestUnsubscribeUnknownEmail(t *testing.T) {
	a, _, _ := newTestApp(t)

	rec := request(a, http.MethodPost, "/api/newsletter/unsubscribe", `{"email":"nobody@example.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for unknown email, got %d", rec.Code)
	}
}

func TestPublicBlogTagPagination(t *testing.T) {
	a, s, _ := newTestApp(t)
	for i := 0; i < 7; i++ {
		mustCreatePost(t, s, "Gorse "+string(rune('A'+i)), true, "gorse")
	}
	mustCreatePost(t, s, "Gorse Draft", false, "gorse")

	rec := request(a, http.MethodGet, "/api/blog/posts?page=2&limit=5&tag=gorse", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	res := decode[paging.Result[Post]](t, rec)
	if len(res.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(res.Items))
	}
	want := paging.Meta{Page: 2, Limit: 5, Total: 7, TotalPages: 2, HasNext: false, HasPrev: true}
	if res.Pagination != want {
		t.Errorf("pagination = %+v, want %+v", res.Pagination, want)
	}
}

func TestPublicPostBySlug(t *testing.T) {
	a, s, _ := newTestApp(t)
	mustCreatePost(t, s, "Live Post", true)
	mustCreatePost(t, s, "Hidden Post", false)

	if rec := request(a, http.MethodGet, "/api/blog/posts/live-post", "", nil); rec.Code != http.StatusOK {
		t.Errorf("published post: expected 200, got %d", rec.Code)
	}
	rec := request(a, http.MethodGet, "/api/blog/posts/hidden-post", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("draft post: expected 404, got %d", rec.Code)
	}
	if body := decode[apiError](t, rec); body.Error == "" {
		t.Error("expected an error envelope")
	}
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	a, s, _ := newTestApp(t)
	cookies := login(t, a, s)

	body := `{"title":"Stump Grinding","content":"<p>Done.</p>","tags":["stumps"]}`
	rec := request(a, http.MethodPost, "/api/admin/posts", body, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[Post](t, rec)
	if created.Slug != "stump-grinding" || created.AuthorID == nil || len(created.Tags) != 1 {
		t.Errorf("unexpected created post %+v", created)
	}

	rec = request(a, http.MethodPost, "/api/admin/posts", body, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: expected 400, got %d", rec.Code)
	}
	if e := decode[apiError](t, rec); e.Error != "Slug already exists" {
		t.Errorf("unexpected error %+v", e)
	}

	res, _ := s.ListPosts(context.Background(), PostFilter{}, firstPage(10))
	if res.Pagination.Total != 1 {
		t.Errorf("expected no second insert, got %d posts", res.Pagination.Total)
	}
}

func TestCreatePostMissingFields(t *testing.T) {
	a, s, _ := newTestApp(t)
	cookies := login(t, a, s)

	rec := request(a, http.MethodPost, "/api/admin/posts", `{"title":"Only a title"}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if e := decode[apiError](t, rec); !strings.Contains(e.Error, "content") {
		t.Errorf("expected the missing field named, got %+v", e)
	}
}

func TestPublishToggle(t *testing.T) {
	a, s, _ := newTestApp(t)
	cookies := login(t, a, s)
	id := mustCreatePost(t, s, "Draft First", false)
	path := "/api/admin/posts/" + itoa(id)

	rec := request(a, http.MethodPut, path, `{"published":true}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	first := decode[Post](t, rec)
	if !first.Published || first.PublishedAt == nil {
		t.Fatalf("expected published with timestamp, got %+v", first)
	}

	saved := now
	t.Cleanup(func() { now = saved })
	later := time.Now().UTC().Add(2 * time.Hour)
	now = func() time.Time { return later }

	rec = request(a, http.MethodPut, path, `{"published":true}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("republish: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if p := decode[Post](t, rec); p.PublishedAt == nil || *p.PublishedAt != *first.PublishedAt {
		t.Errorf("expected published_at kept at %s, got %v", *first.PublishedAt, p.PublishedAt)
	}

	rec = request(a, http.MethodPut, path, `{"published":false}`, cookies)
	if p := decode[Post](t, rec); p.Published || p.PublishedAt != nil {
		t.Errorf("expected unpublished with no timestamp, got %+v", p)
	}
}

func TestDeleteLastAuthorRejected(t *testing.T) {
	a, s, _ := newTestApp(t)
	cookies := login(t, a, s)
	id, _ := s.DefaultAuthorID(context.Background())

	rec := request(a, http.MethodDelete, "/api/admin/authors/"+itoa(id), "", cookies)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	w.WriteField("alt_text", "An oak")
	w.Close()
	return &buf, w.FormDataContentType()
}

func upload(a *App, body *bytes.Buffer, contentType string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 128, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestUploadRejectsBeforeWrite(t *testing.T) {
	a, s, mem := newTestApp(t)
	cookies := login(t, a, s)

	body, ct := multipartUpload(t, "notes.png", []byte("just some text, not an image"))
	rec := upload(a, body, ct, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong type: expected 400, got %d", rec.Code)
	}

	body, ct = multipartUpload(t, "huge.png", make([]byte, maxUploadSize+1))
	rec = upload(a, body, ct, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversize: expected 400, got %d", rec.Code)
	}

	if mem.Len() != 0 {
		t.Errorf("expected no blob writes, got %d", mem.Len())
	}
	res, _ := s.ListMedia(context.Background(), "", "", firstPage(10))
	if res.Pagination.Total != 0 {
		t.Errorf("expected no media rows, got %d", res.Pagination.Total)
	}
}

func TestUploadAndServeMedia(t *testing.T) {
	a, s, mem := newTestApp(t)
	cookies := login(t, a, s)

	body, ct := multipartUpload(t, "Oak Tree.PNG", pngBytes(t, 4, 3))
	rec := upload(a, body, ct, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	m := decode[Media](t, rec)
	if m.MimeType != "image/png" || m.Width != 4 || m.Height != 3 || m.AltText != "An oak" {
		t.Errorf("unexpected media %+v", m)
	}
	if !strings.HasPrefix(m.R2Key, mediaKeyPrefix) || !strings.HasSuffix(m.Filename, ".png") {
		t.Errorf("unexpected key/filename %q %q", m.R2Key, m.Filename)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected one blob, got %d", mem.Len())
	}

	rec = request(a, http.MethodGet, m.URL, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("serve: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != mediaCacheControl {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
}

func TestMediaDeleteGuard(t *testing.T) {
	a, s, mem := newTestApp(t)
	cookies := login(t, a, s)
	ctx := context.Background()

	ts := timestamp(now())
	mem.Put(ctx, "media/x.jpg", []byte("x"), blob.Metadata{ContentType: "image/jpeg"})
	mediaID, _ := s.CreateMedia(ctx, Media{Filename: "x.jpg", MimeType: "image/jpeg", URL: "/media/x.jpg",
		R2Key: "media/x.jpg", CreatedAt: ts, UpdatedAt: ts})
	postID, _ := s.CreatePost(ctx, Post{Title: "Uses It", Slug: "uses-it", FeaturedImageID: &mediaID,
		CreatedAt: ts, UpdatedAt: ts}, nil)

	path := "/api/admin/media/" + itoa(mediaID)
	rec := request(a, http.MethodDelete, path, "", cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("in use: expected 400, got %d", rec.Code)
	}
	e := decode[apiError](t, rec)
	if e.Error != "Media is in use" || !strings.Contains(e.Message, "1 post(s)") {
		t.Errorf("unexpected error %+v", e)
	}
	if mem.Len() != 1 {
		t.Fatal("blob must survive a refused delete")
	}

	s.DeletePost(ctx, postID)
	rec = request(a, http.MethodDelete, path, "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("unused: expected 200, got %d", rec.Code)
	}
	if mem.Len() != 0 {
		t.Errorf("expected blob removed, %d left", mem.Len())
	}
	if _, err := s.GetMedia(ctx, mediaID); err == nil {
		t.Error("expected media row removed")
	}
}

func TestReconcileMedia(t *testing.T) {
	a, s, mem := newTestApp(t)
	cookies := login(t, a, s)
	ctx := context.Background()
	ts := timestamp(now())

	mem.Put(ctx, "media/kept.jpg", []byte("k"), blob.Metadata{})
	keptID, _ := s.CreateMedia(ctx, Media{Filename: "kept.jpg", R2Key: "media/kept.jpg", CreatedAt: ts, UpdatedAt: ts})
	goneID, _ := s.CreateMedia(ctx, Media{Filename: "gone.jpg", R2Key: "media/gone.jpg", CreatedAt: ts, UpdatedAt: ts})

	rec := request(a, http.MethodPost, "/api/admin/media/reconcile", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rep := decode[ReconcileReport](t, rec)
	if rep.Checked != 2 || rep.Removed != 1 || len(rep.RemovedIDs) != 1 || rep.RemovedIDs[0] != goneID {
		t.Errorf("unexpected report %+v", rep)
	}
	if _, err := s.GetMedia(ctx, keptID); err != nil {
		t.Errorf("kept media should remain: %v", err)
	}
}

func TestNewsletterCSVExport(t *testing.T) {
	a, s, _ := newTestApp(t)
	cookies := login(t, a, s)
	ctx := context.Background()
	ts := timestamp(now())
	s.CreateSubscriber(ctx, "a@example.com", "website", ts)
	id, _ := s.CreateSubscriber(ctx, "b@example.com", "footer", ts)
	s.SetSubscriberStatus(ctx, id, SubscriberUnsubscribed, ts)
	s.CreateSubscriber(ctx, "c@example.com", `=HYPERLINK("http://evil.example","x")`, ts)

	rec := request(a, http.MethodGet, "/api/admin/newsletter?export=csv", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}
	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "email,status,subscribed_at,unsubscribed_at,source" {
		t.Errorf("unexpected header %v", records[0])
	}
	for _, r := range records[1:] {
		if r[0] == "c@example.com" && r[4] != `'=HYPERLINK("http://evil.example","x")` {
			t.Errorf("expected formula source quoted, got %q", r[4])
		}
	}
}

func TestCSVCell(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"website", "website"},
		{"", ""},
		{"=1+1", "'=1+1"},
		{"+44 113", "'+44 113"},
		{"-2", "'-2"},
		{"@SUM(A1)", "'@SUM(A1)"},
		{"\tcmd", "'\tcmd"},
		{"a=b", "a=b"},
	}
	for _, tt := range tests {
		if got := csvCell(tt.input); got != tt.expected {
			t.Errorf("csvCell(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestStatsWithoutDatabase(t *testing.T) {
	// A session cookie minted by an app with a database is valid for any app
	// sharing the secret.
	withDB, s, _ := newTestApp(t)
	cookies := login(t, withDB, s)

	a := New(SiteConfig{SessionSecret: testSecret})
	a.Echo.Logger.SetOutput(io.Discard)
	a.Setup()

	rec := request(a, http.MethodGet, "/api/admin/stats", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	st := decode[Stats](t, rec)
	if st.Posts != 0 || st.RecentSubmissions == nil {
		t.Errorf("expected zero stats, got %+v", st)
	}

	rec = request(a, http.MethodGet, "/api/admin/posts", "", cookies)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 without a database, got %d", rec.Code)
	}
	if e := decode[apiError](t, rec); e.Error != "Database not available" {
		t.Errorf("unexpected error %+v", e)
	}
}

func TestPublicListingsWithoutDatabase(t *testing.T) {
	a := New(SiteConfig{SessionSecret: testSecret})
	a.Echo.Logger.SetOutput(io.Discard)
	a.Setup()

	for _, path := range []string{"/api/blog/posts", "/api/portfolio/projects", "/api/reviews", "/api/products"} {
		rec := request(a, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
			continue
		}
		res := decode[paging.Result[json.RawMessage]](t, rec)
		if res.Items == nil || len(res.Items) != 0 || res.Pagination.Total != 0 {
			t.Errorf("%s: expected empty result, got %+v", path, res)
		}
	}
}

func TestContactVerification(t *testing.T) {
	pass := false
	a, s, _ := newTestApp(t, WithVerifier(turnstile.Func(func(_ context.Context, token, _ string) (bool, error) {
		return pass && token == "tok", nil
	})))
	body := `{"name":"Pat","email":"pat@example.com","message":"Two oaks need a trim","turnstile_token":"tok"}`

	rec := request(a, http.MethodPost, "/api/contact", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("rejected token: expected 400, got %d", rec.Code)
	}

	pass = true
	rec = request(a, http.MethodPost, "/api/contact", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("accepted token: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	res, _ := s.ListSubmissions(context.Background(), "", "", firstPage(10))
	if res.Pagination.Total != 1 || res.Items[0].Processed {
		t.Errorf("expected one unprocessed submission, got %+v", res)
	}
}

func TestPages(t *testing.T) {
	a, s, _ := newTestApp(t)
	mustCreatePost(t, s, "Winter Felling", true, "felling")

	tests := []struct {
		path string
		code int
		want string
	}{
		{"/", http.StatusOK, "Winter Felling"},
		{"/blog/", http.StatusOK, "Winter Felling"},
		{"/blog/?tag=felling", http.StatusOK, "Winter Felling"},
		{"/blog/winter-felling/", http.StatusOK, "<p>Winter Felling</p>"},
		{"/blog/missing/", http.StatusNotFound, "Page not found"},
		{"/portfolio/", http.StatusOK, "Our work"},
		{"/contact/", http.StatusOK, `name="_csrf"`},
		{"/feed.xml", http.StatusOK, "<title>Winter Felling</title>"},
	}
	for _, tt := range tests {
		rec := request(a, http.MethodGet, tt.path, "", nil)
		if rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.code, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s: body missing %q", tt.path, tt.want)
		}
	}
}

func TestUnknownAPIRouteIsJSON(t *testing.T) {
	a, _, _ := newTestApp(t)

	rec := request(a, http.MethodGet, "/api/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		t.Errorf("expected JSON, got %q", ct)
	}
}
