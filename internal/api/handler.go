package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/koustreak/bucketlink/internal/errs"
	"github.com/koustreak/bucketlink/internal/links"
	"github.com/koustreak/bucketlink/internal/logger"
)

// LinkResolver is the part of links.Resolver the handlers use.
type LinkResolver interface {
	Resolve(ctx context.Context, req links.Request) (string, error)
}

// BucketProvisioner is the part of buckets.Provisioner the handlers use.
type BucketProvisioner interface {
	EnsureExists(ctx context.Context, name string) error
}

// Handler serves the /api routes.
type Handler struct {
	resolver    LinkResolver
	provisioner BucketProvisioner
	log         *logger.Logger
}

func NewHandler(resolver LinkResolver, provisioner BucketProvisioner, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{resolver: resolver, provisioner: provisioner, log: log.Component("api")}
}

// CreateBucket handles POST /api/buckets/create.
func (h *Handler) CreateBucket(w http.ResponseWriter, r *http.Request) {
	var req createBucketRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, createBucketResponse{Error: errorText(err)})
		return
	}
	if err := ValidateBucketName(req.BucketName); err != nil {
		writeJSON(w, createBucketResponse{Error: errorText(err)})
		return
	}

	if err := h.provisioner.EnsureExists(r.Context(), req.BucketName); err != nil {
		h.logFailure(r, "create bucket failed", err)
		writeJSON(w, createBucketResponse{Error: errorText(err)})
		return
	}
	writeJSON(w, createBucketResponse{BucketName: req.BucketName})
}

// ImageLink handles POST /api/files/image/link.
func (h *Handler) ImageLink(w http.ResponseWriter, r *http.Request) {
	var req imageLinkRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, linkResponse{Error: errorText(err)})
		return
	}
	if req.ProjectID == "" {
		writeJSON(w, linkResponse{Error: errorText(errs.New(errs.ErrKindInvalidInput, "project_id is required"))})
		return
	}
	if err := ValidateImagePath(req.FilePath); err != nil {
		writeJSON(w, linkResponse{Error: errorText(err)})
		return
	}

	link, err := h.resolver.Resolve(r.Context(), links.Request{
		Bucket:               req.ProjectID,
		Path:                 req.FilePath,
		Category:             links.CategoryImage,
		PlaceholderIfMissing: req.PlaceholderIfNotFound,
	})
	if err != nil {
		h.logFailure(r, "resolve link failed", err)
		writeJSON(w, linkResponse{Error: errorText(err)})
		return
	}
	writeJSON(w, linkResponse{Link: link})
}

// Healthcheck handles GET /api/healthcheck/check.
func (h *Handler) Healthcheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, healthResponse{Status: "OK"})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid JSON body", err)
	}
	return nil
}

// logFailure logs dependency failures at error level and everything else
// (not found, bad input) at debug.
func (h *Handler) logFailure(r *http.Request, msg string, err error) {
	log := h.log.With().
		Str("request_id", RequestIDFromContext(r.Context())).
		Str("kind", errs.KindOf(err).String()).
		Err(err).
		Logger()
	if errs.IsDependencyFailure(err) {
		log.Error(msg)
		return
	}
	log.Debug(msg)
}
