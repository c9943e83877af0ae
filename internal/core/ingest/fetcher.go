package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DavidGir/Camelot/internal/core"
	"github.com/DavidGir/Camelot/internal/core/objectclient"
)

// maxFetchBytes caps how much of a remote file is read into memory.
const maxFetchBytes = 50 << 20 // 50 MB

// FileFetcher retrieves an uploaded file from its fileUrl. URLs pointing at
// the configured bucket are read through the object client (the bucket need
// not be public); anything else is fetched over plain HTTP.
type FileFetcher struct {
	httpClient *http.Client
	obj        core.ObjectClient
	bucket     string
	maxBytes   int64
}

func NewFileFetcher(obj core.ObjectClient, bucket string) *FileFetcher {
	return &FileFetcher{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		obj:        obj,
		bucket:     bucket,
		maxBytes:   maxFetchBytes,
	}
}

// Fetch returns the file content and its content type. Bucket-resident URLs
// are only served for keys under the owner's own prefix; the fileUrl is
// caller data and must not become a read on someone else's object.
func (f *FileFetcher) Fetch(ctx context.Context, fileURL, ownerID string) ([]byte, string, error) {
	if f.obj != nil && f.bucket != "" {
		if bucket, key := objectclient.ParseS3URL(fileURL); bucket == f.bucket && key != "" {
			if !strings.HasPrefix(key, objectclient.UserObjectPrefix(ownerID)) {
				return nil, "", fmt.Errorf("fetch %s: object key not owned by caller", fileURL)
			}
			data, err := f.obj.GetFile(ctx, bucket, key)
			if err != nil {
				return nil, "", fmt.Errorf("fetch %s: %w", fileURL, err)
			}
			return data, contentTypeFromKey(key), nil
		}
	}

	if _, err := url.ParseRequestURI(fileURL); err != nil {
		return nil, "", fmt.Errorf("invalid file url %q: %w", fileURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", fileURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: unexpected status %d", fileURL, resp.StatusCode)
	}

	// Read one byte past the cap so oversized files fail instead of being
	// silently truncated and embedded partially.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: read body: %w", fileURL, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", fmt.Errorf("fetch %s: file exceeds %d bytes", fileURL, f.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mimePDF
	}
	return data, contentType, nil
}

func contentTypeFromKey(key string) string {
	if strings.HasSuffix(strings.ToLower(key), ".pdf") {
		return mimePDF
	}
	return "application/octet-stream"
}
