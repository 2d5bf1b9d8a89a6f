package gateway

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"aora/schemas"
)

// AssetOpener reads the content of a locally picked asset.
type AssetOpener interface {
	Open(ctx context.Context, asset schemas.Asset) (io.ReadCloser, error)
}

type AssetOpenerFunc func(ctx context.Context, asset schemas.Asset) (io.ReadCloser, error)

func (f AssetOpenerFunc) Open(ctx context.Context, asset schemas.Asset) (io.ReadCloser, error) {
	return f(ctx, asset)
}

// LocalFiles opens file:// URIs and plain paths.
type LocalFiles struct{}

func (LocalFiles) Open(_ context.Context, asset schemas.Asset) (io.ReadCloser, error) {
	path := asset.URI
	if parsed, err := url.Parse(asset.URI); err == nil && parsed.Scheme == "file" {
		path = parsed.Path
	}
	if path == "" {
		return nil, fmt.Errorf("asset %q has no path", asset.Name)
	}
	return os.Open(path)
}
