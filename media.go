package mkmtrees

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	_ "golang.org/x/image/webp"

	"github.com/ejrshadbolt/mkmtrees-sub001/blob"
)

const (
	maxUploadSize     = 5 << 20 // 5MiB
	mediaKeyPrefix    = "media/"
	mediaCacheControl = "public, max-age=31536000, immutable"
)

var allowedMedia = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// mediaType resolves the upload's MIME type from the part header, sniffing
// the bytes when the client sent nothing useful.
func mediaType(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	if declared == "" || declared == "application/octet-stream" {
		return strings.Split(http.DetectContentType(data), ";")[0]
	}
	return declared
}

// mediaFilename builds "<unix-millis>-<uuid><ext>", keeping the original
// extension when it is one of the allowed ones.
func mediaFilename(original, mime string) string {
	ext := strings.ToLower(filepath.Ext(original))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		ext = allowedMedia[mime]
	}
	return fmt.Sprintf("%d-%s%s", now().UnixMilli(), uuid.NewString(), ext)
}

func (a *App) mediaURL(key, filename string) string {
	if base := strings.TrimRight(a.Config.MediaPublicURL, "/"); base != "" {
		return base + "/" + key
	}
	return "/media/" + filename
}

func (a *App) handleAdminMedia(c echo.Context) error {
	res, err := a.Store.ListMedia(c.Request().Context(), c.QueryParam("search"), c.QueryParam("type"), pageParams(c, 24))
	if err != nil {
		return internalError("Failed to fetch media", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleAdminMediaItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	m, err := a.Store.GetMedia(c.Request().Context(), id)
	if err != nil {
		return lookupError("Media", err)
	}
	return c.JSON(http.StatusOK, m)
}

// handleAdminUpload validates the file completely before anything is written.
func (a *App) handleAdminUpload(c echo.Context) error {
	if a.Blob == nil {
		return unavailable("Storage")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest("No file provided")
	}
	if fh.Size > maxUploadSize {
		return badRequest("File too large (max 5MB)")
	}
	src, err := fh.Open()
	if err != nil {
		return internalError("Failed to read upload", err)
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return internalError("Failed to read upload", err)
	}
	if len(data) > maxUploadSize {
		return badRequest("File too large (max 5MB)")
	}
	mime := mediaType(fh.Header.Get(echo.HeaderContentType), data)
	if _, ok := allowedMedia[mime]; !ok {
		return badRequest("Invalid file type. Allowed: JPEG, PNG, GIF, WebP")
	}

	var width, height int
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height = cfg.Width, cfg.Height
	}

	filename := mediaFilename(fh.Filename, mime)
	key := mediaKeyPrefix + filename
	ctx := c.Request().Context()
	if err := a.Blob.Put(ctx, key, data, blob.Metadata{
		ContentType:  mime,
		CacheControl: mediaCacheControl,
		Size:         int64(len(data)),
	}); err != nil {
		return internalError("Failed to store file", err)
	}

	ts := timestamp(now())
	id, err := a.Store.CreateMedia(ctx, Media{
		Filename:         filename,
		OriginalFilename: filepath.Base(fh.Filename),
		MimeType:         mime,
		Size:             int64(len(data)),
		Width:            width,
		Height:           height,
		URL:              a.mediaURL(key, filename),
		R2Key:            key,
		AltText:          strings.TrimSpace(c.FormValue("alt_text")),
		UploadedBy:       currentUserID(c),
		CreatedAt:        ts,
		UpdatedAt:        ts,
	})
	if err != nil {
		if derr := a.Blob.Delete(context.WithoutCancel(ctx), key); derr != nil {
			c.Logger().Warnf("media: orphaned blob %s: %v", key, derr)
		}
		return internalError("Failed to save media", err)
	}
	m, err := a.Store.GetMedia(ctx, id)
	if err != nil {
		return internalError("Failed to fetch media", err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (a *App) handleAdminUpdateMedia(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		AltText *string `json:"alt_text"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.AltText == nil {
		return badRequest("Missing required fields: alt_text")
	}
	ctx := c.Request().Context()
	if err := a.Store.UpdateMediaAlt(ctx, id, strings.TrimSpace(*req.AltText), timestamp(now())); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Media")
		}
		return internalError("Failed to update media", err)
	}
	m, err := a.Store.GetMedia(ctx, id)
	if err != nil {
		return internalError("Failed to fetch media", err)
	}
	return c.JSON(http.StatusOK, m)
}

// handleAdminDeleteMedia removes the row, then the blob. A blob failure is
// logged and does not undo the row delete.
func (a *App) handleAdminDeleteMedia(c echo.Context) error {
	if a.Blob == nil {
		return unavailable("Storage")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	m, err := a.Store.GetMedia(ctx, id)
	if err != nil {
		return lookupError("Media", err)
	}
	usage, err := a.Store.GetMediaUsage(ctx, id)
	if err != nil {
		return internalError("Failed to check media usage", err)
	}
	if usage.InUse() {
		return conflict("Media is in use", fmt.Sprintf(
			"Used as featured image by %d post(s) and %d project(s), and in %d gallery image(s)",
			usage.Posts, usage.Projects, usage.Gallery))
	}
	if err := a.Store.DeleteMedia(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Media")
		}
		return internalError("Failed to delete media", err)
	}
	if m.R2Key != "" {
		if err := a.Blob.Delete(ctx, m.R2Key); err != nil {
			c.Logger().Warnf("media: delete blob %s: %v", m.R2Key, err)
		}
	}
	return c.JSON(http.StatusOK, apiMessage{Message: "Media deleted"})
}

// ReconcileReport summarizes a media reconciliation sweep.
type ReconcileReport struct {
	Checked    int     `json:"checked"`
	Removed    int     `json:"removed"`
	Errors     int     `json:"errors"`
	RemovedIDs []int64 `json:"removed_ids"`
}

// ReconcileMedia deletes media rows whose blob is confirmed absent, clearing
// any post, project or gallery references to them. Rows whose existence
// check fails for any other reason are kept and counted.
func ReconcileMedia(ctx context.Context, store *Store, blobs blob.Store, logf func(string, ...any)) (ReconcileReport, error) {
	rep := ReconcileReport{RemovedIDs: []int64{}}
	rows, err := store.MediaWithKeys(ctx)
	if err != nil {
		return rep, err
	}
	for _, m := range rows {
		rep.Checked++
		_, err := blobs.Head(ctx, m.R2Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, blob.ErrNotFound) {
			rep.Errors++
			logf("reconcile: head %s: %v", m.R2Key, err)
			continue
		}
		if err := store.PurgeMedia(ctx, m.ID); err != nil && !errors.Is(err, ErrNotFound) {
			rep.Errors++
			logf("reconcile: purge media %d: %v", m.ID, err)
			continue
		}
		rep.Removed++
		rep.RemovedIDs = append(rep.RemovedIDs, m.ID)
	}
	return rep, nil
}

func (a *App) handleAdminReconcileMedia(c echo.Context) error {
	if a.Blob == nil {
		return unavailable("Storage")
	}
	rep, err := ReconcileMedia(c.Request().Context(), a.Store, a.Blob, c.Logger().Warnf)
	if err != nil {
		return internalError("Failed to reconcile media", err)
	}
	c.Logger().Infof("media reconcile: checked=%d removed=%d errors=%d", rep.Checked, rep.Removed, rep.Errors)
	return c.JSON(http.StatusOK, rep)
}

// handleMediaFile streams an object from the blob store for sites without a
// public bucket URL.
func (a *App) handleMediaFile(c echo.Context) error {
	if a.Blob == nil {
		return echo.ErrNotFound
	}
	name := c.Param("filename")
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return echo.ErrNotFound
	}
	obj, err := a.Blob.Get(c.Request().Context(), mediaKeyPrefix+name)
	if errors.Is(err, blob.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return internalError("Failed to read media", err)
	}
	defer obj.Body.Close()
	h := c.Response().Header()
	if obj.CacheControl != "" {
		h.Set("Cache-Control", obj.CacheControl)
	} else {
		h.Set("Cache-Control", mediaCacheControl)
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.Stream(http.StatusOK, contentType, obj.Body)
}
