package mkmtrees

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

func TestPortfolioAdminFlow(t *testing.T) {
	a, s, _ := newTestApp(t)
	cookies := login(t, a, s)
	ctx := context.Background()

	rec := request(a, http.MethodPost, "/api/admin/portfolio/categories", `{"name":"Tree Surgery"}`, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	cat := decode[PortfolioCategory](t, rec)
	if cat.Slug != "tree-surgery" {
		t.Errorf("expected slug tree-surgery, got %q", cat.Slug)
	}

	rec = request(a, http.MethodPost, "/api/admin/portfolio/categories", `{"name":"Tree surgery"}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate category: expected 400, got %d", rec.Code)
	}
	if e := decode[apiError](t, rec); e.Error != "Slug already exists" {
		t.Errorf("unexpected error %+v", e)
	}

	rec = request(a, http.MethodPost, "/api/admin/portfolio/projects", `{"title":"Lost","category_id":999}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown category: expected 400, got %d", rec.Code)
	}

	body := `{"title":"Big Oak","category_id":` + itoa(cat.ID) + `,"published":true,"location":"Leeds"}`
	rec = request(a, http.MethodPost, "/api/admin/portfolio/projects", body, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	project := decode[PortfolioProject](t, rec)
	if project.Slug != "big-oak" || project.CategorySlug == nil || *project.CategorySlug != "tree-surgery" {
		t.Errorf("unexpected project %+v", project)
	}

	ts := timestamp(now())
	mediaID, err := s.CreateMedia(ctx, Media{Filename: "oak.jpg", MimeType: "image/jpeg", URL: "/media/oak.jpg",
		R2Key: "media/oak.jpg", AltText: "The oak", CreatedAt: ts, UpdatedAt: ts})
	if err != nil {
		t.Fatalf("CreateMedia failed: %v", err)
	}

	imagesPath := "/api/admin/portfolio/projects/" + itoa(project.ID) + "/images"
	rec = request(a, http.MethodPost, imagesPath, `{"media_id":`+itoa(mediaID)+`,"image_category":"sideways"}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad image category: expected 400, got %d", rec.Code)
	}
	rec = request(a, http.MethodPost, imagesPath, `{"media_id":`+itoa(mediaID)+`,"image_category":"before","caption":"Overgrown"}`, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add image: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	img := decode[ProjectImage](t, rec)
	if img.URL != "/media/oak.jpg" || img.AltText != "The oak" || img.ImageCategory != ImageBefore {
		t.Errorf("unexpected image %+v", img)
	}

	rec = request(a, http.MethodGet, "/api/portfolio/projects/big-oak", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public project: expected 200, got %d", rec.Code)
	}
	if got := decode[PortfolioProject](t, rec); len(got.Images) != 1 || got.Images[0].Caption != "Overgrown" {
		t.Errorf("expected gallery with one image, got %+v", got.Images)
	}

	rec = request(a, http.MethodGet, "/api/portfolio/categories", "", nil)
	cats := decode[paging.Result[PortfolioCategory]](t, rec)
	if len(cats.Items) != 1 || cats.Items[0].ProjectCount != 1 {
		t.Errorf("expected one category with one project, got %+v", cats.Items)
	}

	catPath := "/api/admin/portfolio/categories/" + itoa(cat.ID)
	rec = request(a, http.MethodDelete, catPath, "", cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("category in use: expected 400, got %d", rec.Code)
	}

	rec = request(a, http.MethodDelete, "/api/admin/media/"+itoa(mediaID), "", cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("gallery media: expected 400, got %d", rec.Code)
	}
	if e := decode[apiError](t, rec); !strings.Contains(e.Message, "1 gallery image(s)") {
		t.Errorf("unexpected error %+v", e)
	}

	rec = request(a, http.MethodDelete, imagesPath+"/"+itoa(img.ID), "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove image: expected 200, got %d", rec.Code)
	}
	rec = request(a, http.MethodDelete, "/api/admin/portfolio/projects/"+itoa(project.ID), "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete project: expected 200, got %d", rec.Code)
	}
	rec = request(a, http.MethodDelete, catPath, "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete category: expected 200, got %d", rec.Code)
	}
	if _, err := s.GetMedia(ctx, mediaID); err != nil {
		t.Errorf("media must survive project deletion: %v", err)
	}
}

func TestDraftProjectHiddenPublicly(t *testing.T) {
	a, s, _ := newTestApp(t)
	cookies := login(t, a, s)

	rec := request(a, http.MethodPost, "/api/admin/portfolio/projects", `{"title":"Hedge Job"}`, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	rec = request(a, http.MethodGet, "/api/portfolio/projects/hedge-job", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("draft project: expected 404, got %d", rec.Code)
	}
	rec = request(a, http.MethodGet, "/api/portfolio/projects", "", nil)
	if res := decode[paging.Result[PortfolioProject]](t, rec); res.Pagination.Total != 0 {
		t.Errorf("expected no public projects, got %d", res.Pagination.Total)
	}
}

func TestReviewAdminAndPublic(t *testing.T) {
	a, s, _ := newTestApp(t)
	cookies := login(t, a, s)

	rec := request(a, http.MethodPost, "/api/admin/reviews", `{"reviewer_name":"Pat","rating":6,"content":"Great"}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("rating 6: expected 400, got %d", rec.Code)
	}
	rec = request(a, http.MethodPost, "/api/admin/reviews", `{"reviewer_name":"Pat","content":"Great"}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing rating: expected 400, got %d", rec.Code)
	}
	if e := decode[apiError](t, rec); e.Error != "Missing required fields: rating" {
		t.Errorf("unexpected error %+v", e)
	}

	body := `{"reviewer_name":"Pat","reviewer_email":"pat@example.com","rating":5,"content":"Great","approved":true}`
	rec = request(a, http.MethodPost, "/api/admin/reviews", body, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	request(a, http.MethodPost, "/api/admin/reviews", `{"reviewer_name":"Sam","rating":3,"content":"Fine"}`, cookies)

	rec = request(a, http.MethodGet, "/api/reviews", "", nil)
	res := decode[paging.Result[Review]](t, rec)
	if len(res.Items) != 1 || res.Items[0].ReviewerName != "Pat" {
		t.Fatalf("expected only the approved review, got %+v", res.Items)
	}
	if res.Items[0].ReviewerEmail != "" {
		t.Error("public reviews must not expose reviewer email")
	}

	rec = request(a, http.MethodGet, "/api/admin/reviews?status=pending", "", cookies)
	if res := decode[paging.Result[Review]](t, rec); len(res.Items) != 1 || res.Items[0].ReviewerName != "Sam" {
		t.Errorf("expected one pending review, got %+v", res.Items)
	}
}

func TestProductsPublicListsAvailableOnly(t *testing.T) {
	a, s, _ := newTestApp(t)
	cookies := login(t, a, s)

	for _, body := range []string{
		`{"name":"Seasoned Logs","price":85,"price_unit":"per load","sort_order":1}`,
		`{"name":"Woodchip","available":false}`,
	} {
		if rec := request(a, http.MethodPost, "/api/admin/products", body, cookies); rec.Code != http.StatusCreated {
			t.Fatalf("create %s: expected 201, got %d", body, rec.Code)
		}
	}
	if rec := request(a, http.MethodPost, "/api/admin/products", `{"name":"Bad","price":-1}`, cookies); rec.Code != http.StatusBadRequest {
		t.Errorf("negative price: expected 400, got %d", rec.Code)
	}

	rec := request(a, http.MethodGet, "/api/products", "", nil)
	res := decode[paging.Result[Product]](t, rec)
	if len(res.Items) != 1 || res.Items[0].Slug != "seasoned-logs" {
		t.Fatalf("expected only available products, got %+v", res.Items)
	}
	if res.Items[0].Price == nil || *res.Items[0].Price != 85 {
		t.Errorf("unexpected price %v", res.Items[0].Price)
	}
}

func TestReconcileMediaClearsReferences(t *testing.T) {
	a, s, _ := newTestApp(t)
	cookies := login(t, a, s)
	ctx := context.Background()
	ts := timestamp(now())

	mediaID, err := s.CreateMedia(ctx, Media{Filename: "a.png", R2Key: "media/a.png", CreatedAt: ts, UpdatedAt: ts})
	if err != nil {
		t.Fatalf("CreateMedia failed: %v", err)
	}
	postID, err := s.CreatePost(ctx, Post{Title: "Ash Dieback", Slug: "ash-dieback", FeaturedImageID: &mediaID,
		CreatedAt: ts, UpdatedAt: ts}, nil)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	projectID, err := s.CreateProject(ctx, PortfolioProject{Title: "Ash Removal", Slug: "ash-removal",
		FeaturedImageID: &mediaID, CreatedAt: ts, UpdatedAt: ts})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if _, err := s.AddProjectImage(ctx, ProjectImage{ProjectID: projectID, MediaID: mediaID,
		ImageCategory: ImageGeneral, CreatedAt: ts}); err != nil {
		t.Fatalf("AddProjectImage failed: %v", err)
	}

	rec := request(a, http.MethodPost, "/api/admin/media/reconcile", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rep := decode[ReconcileReport](t, rec); rep.Removed != 1 || rep.Errors != 0 {
		t.Fatalf("expected the missing blob's row removed, got %+v", rep)
	}

	if _, err := s.GetMedia(ctx, mediaID); err != ErrNotFound {
		t.Errorf("expected media row gone, got %v", err)
	}
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if post.FeaturedImageID != nil {
		t.Errorf("expected post featured image cleared, got %d", *post.FeaturedImageID)
	}
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if project.FeaturedImageID != nil || len(project.Images) != 0 {
		t.Errorf("expected project references cleared, got %+v", project)
	}
}
