package api

import (
	"path"
	"strings"

	"github.com/koustreak/bucketlink/internal/errs"
)

// bucketNameForbidden lists characters a bucket name may not contain.
const bucketNameForbidden = `.,!@#$%^&*()_+={}[]|\:;"'<>?/`

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".svg":  true,
}

// ValidateBucketName rejects empty names and names containing any
// forbidden character.
func ValidateBucketName(name string) error {
	if name == "" {
		return errs.New(errs.ErrKindInvalidInput, "bucket_name is required")
	}
	if strings.ContainsAny(name, bucketNameForbidden) {
		return errs.New(errs.ErrKindInvalidInput, "bucket_name cannot contain unprocessable characters")
	}
	return nil
}

// ValidateImagePath accepts paths whose extension is a known image type,
// compared case-insensitively. Leading dots of the file name do not start
// an extension, so ".png" has none.
func ValidateImagePath(p string) error {
	if !imageExtensions[imageExt(p)] {
		return errs.New(errs.ErrKindInvalidInput, "file_path must be an image file")
	}
	return nil
}

func imageExt(p string) string {
	if strings.HasSuffix(p, "/") {
		return ""
	}
	name := strings.TrimLeft(path.Base(p), ".")
	if !strings.Contains(name, ".") {
		return ""
	}
	return strings.ToLower(path.Ext(name))
}
