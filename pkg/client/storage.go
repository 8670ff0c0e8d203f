package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// UploadOptions controls how an object is stored.
type UploadOptions struct {
	ContentType  string
	Upsert       bool // overwrite an existing object at the same path
	CacheControl string
}

// Upload stores data at path inside bucket.
func (c *Client) Upload(ctx context.Context, bucket, path string, data io.Reader, opts UploadOptions) error {
	reqOpts := []requestOption{}
	if opts.ContentType != "" {
		reqOpts = append(reqOpts, withHeader("Content-Type", opts.ContentType))
	}
	if opts.Upsert {
		reqOpts = append(reqOpts, withHeader("x-upsert", "true"))
	}
	cache := opts.CacheControl
	if cache == "" {
		cache = "3600"
	}
	reqOpts = append(reqOpts, withHeader("Cache-Control", "max-age="+cache))

	resp, err := c.send(ctx, http.MethodPost, "/storage/v1/object/"+objectPath(bucket, path), data, reqOpts...)
	if err != nil {
		return fmt.Errorf("client.Upload: %w", err)
	}
	resp.Body.Close() //nolint:errcheck // body is not needed
	return nil
}

// PublicURL returns the public URL of an object in a public bucket.
func (c *Client) PublicURL(bucket, path string) string {
	return c.baseURL + "/storage/v1/object/public/" + objectPath(bucket, path)
}

func objectPath(bucket, path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return url.PathEscape(bucket) + "/" + strings.Join(segs, "/")
}
