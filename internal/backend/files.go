package backend

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

// MaxUploadBytes is the hard cap on assignment file size.
const MaxUploadBytes = 10 << 20

var allowedUploadExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".txt": true,
	".ppt": true, ".pptx": true, ".xls": true, ".xlsx": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".zip": true,
}

// ValidateUpload rejects files that are too large or of a type the backend
// will not accept. Called before any bytes go over the wire.
func ValidateUpload(name string, size int64) error {
	if size > MaxUploadBytes {
		return fmt.Errorf("file %q exceeds the %d MB limit", name, MaxUploadBytes>>20)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedUploadExts[ext] {
		return fmt.Errorf("file type %q is not allowed", ext)
	}
	return nil
}

// UploadAssignmentFile attaches a file to an assignment. The multipart field
// names are fixed by the backend contract.
func (c *Client) UploadAssignmentFile(ctx context.Context, assignmentID, courseID, description, name string, size int64, r io.Reader) (*model.FileInfo, error) {
	if err := ValidateUpload(name, size); err != nil {
		return nil, err
	}
	fields := map[string]string{
		"assignmentId": assignmentID,
		"courseId":     courseID,
	}
	if description != "" {
		fields["description"] = description
	}
	var out model.FileInfo
	err := c.api.PostMultipart(ctx, "/assignment-files/upload", fields, "file", name, r, &out)
	if err != nil {
		return nil, fmt.Errorf("upload file %q: %w", name, err)
	}
	return &out, nil
}

// ViewFile streams a file for inline display. The caller closes the reader.
func (c *Client) ViewFile(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return c.api.GetRaw(ctx, "/assignment-files/"+rest.PathEscape(id)+"/view")
}

// DownloadFile streams a file for download. The caller closes the reader.
func (c *Client) DownloadFile(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return c.api.GetRaw(ctx, "/assignment-files/"+rest.PathEscape(id)+"/download")
}

func (c *Client) DeleteFile(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/assignment-files/"+rest.PathEscape(id)); err != nil {
		return fmt.Errorf("delete file %s: %w", id, err)
	}
	return nil
}
