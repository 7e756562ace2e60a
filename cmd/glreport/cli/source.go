package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"

	"github.com/odyssey-erp/glreport/internal/ledger/source"
	"github.com/odyssey-erp/glreport/internal/ledger/tabular"
	"github.com/odyssey-erp/glreport/internal/platform/db"
)

// ErrSourceFlags is returned when zero or several sources are selected.
var ErrSourceFlags = errors.New("cli: exactly one of --dir, --pg-dsn, --gcs-bucket or --bq-dataset is required")

// SourceOptions selects where a dataset is read from.
type SourceOptions struct {
	Dir       string
	Encoding  string
	PGDSN     string
	PGSchema  string
	GCSBucket string
	GCSPrefix string
	BQProject string
	BQDataset string
}

// Kind names the selected source, or "" when none or several are set.
func (o SourceOptions) Kind() string {
	var kinds []string
	if o.Dir != "" {
		kinds = append(kinds, "dir")
	}
	if o.PGDSN != "" {
		kinds = append(kinds, "postgres")
	}
	if o.GCSBucket != "" {
		kinds = append(kinds, "gcs")
	}
	if o.BQDataset != "" {
		kinds = append(kinds, "bigquery")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Empty reports whether no source flag was given.
func (o SourceOptions) Empty() bool {
	return o.Dir == "" && o.PGDSN == "" && o.GCSBucket == "" && o.BQDataset == ""
}

// Open builds the loader. The returned close function releases clients and
// is never nil.
func (o SourceOptions) Open(ctx context.Context) (source.Loader, func(), error) {
	noop := func() {}
	enc, err := tabular.ParseEncoding(o.Encoding)
	if err != nil {
		return nil, noop, err
	}
	if strings.TrimSpace(o.Encoding) == "" {
		enc = ""
	}
	switch o.Kind() {
	case "dir":
		d, err := source.NewDir(o.Dir, enc)
		return d, noop, err
	case "postgres":
		pool, err := db.New(ctx, o.PGDSN)
		if err != nil {
			return nil, noop, err
		}
		l, err := source.NewPostgres(pool, o.PGSchema, nil)
		if err != nil {
			pool.Close()
			return nil, noop, err
		}
		return l, pool.Close, nil
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("create storage client: %w", err)
		}
		return source.NewGCS(client, o.GCSBucket, o.GCSPrefix, enc), func() { _ = client.Close() }, nil
	case "bigquery":
		client, err := bigquery.NewClient(ctx, projectOrDetect(o.BQProject))
		if err != nil {
			return nil, noop, fmt.Errorf("create bigquery client: %w", err)
		}
		l, err := source.NewBigQuery(client, o.BQProject, o.BQDataset)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return l, func() { _ = client.Close() }, nil
	}
	return nil, noop, ErrSourceFlags
}

func projectOrDetect(project string) string {
	if project == "" {
		return bigquery.DetectProjectID
	}
	return project
}
