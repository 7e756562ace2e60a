package source

import (
	"context"
	"errors"
	"fmt"
	"path"

	"cloud.google.com/go/storage"

	"github.com/odyssey-erp/glreport/internal/ledger/tabular"
)

// GCS reads <prefix>/<table>.csv (or .xlsx) objects from a bucket.
type GCS struct {
	client   *storage.Client
	bucket   string
	prefix   string
	encoding tabular.Encoding
}

// NewGCS returns a loader over bucket. The caller owns client.
func NewGCS(client *storage.Client, bucket, prefix string, enc tabular.Encoding) *GCS {
	return &GCS{client: client, bucket: bucket, prefix: prefix, encoding: enc}
}

// Load fetches each table object, skipping the ones that do not exist.
func (g *GCS) Load(ctx context.Context) (tabular.Set, error) {
	bkt := g.client.Bucket(g.bucket)
	set := make(tabular.Set)
	for _, name := range tableNames() {
		t, err := g.readFirst(ctx, bkt, name)
		if err != nil {
			return nil, err
		}
		if t != nil {
			set[name] = t
		}
	}
	return set, nil
}

func (g *GCS) readFirst(ctx context.Context, bkt *storage.BucketHandle, name string) (*tabular.Table, error) {
	for _, ext := range []string{".csv", ".xlsx"} {
		objectName := path.Join(g.prefix, name+ext)
		r, err := bkt.Object(objectName).NewReader(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("source: open gs://%s/%s: %w", g.bucket, objectName, err)
		}
		t, err := tabular.Read(name, objectName, r, g.encoding, "")
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("source: read gs://%s/%s: %w", g.bucket, objectName, err)
		}
		return t, nil
	}
	return nil, nil
}
