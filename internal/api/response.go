package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/koustreak/bucketlink/internal/errs"
)

type createBucketRequest struct {
	BucketName string `json:"bucket_name"`
}

type createBucketResponse struct {
	BucketName string  `json:"bucket_name"`
	Error      *string `json:"error"`
}

type imageLinkRequest struct {
	ProjectID             string `json:"project_id"`
	FilePath              string `json:"file_path"`
	PlaceholderIfNotFound bool   `json:"placeholder_if_not_found"`
}

type linkResponse struct {
	Link  string  `json:"link"`
	Error *string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// writeJSON always answers 200; failures travel in the envelope.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

// errorText renders err for the envelope. Kind prefixes are internal and
// are left out.
func errorText(err error) *string {
	if err == nil {
		return nil
	}
	msg := err.Error()
	var e *errs.Error
	if errors.As(err, &e) {
		msg = e.Message
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
	}
	return &msg
}
