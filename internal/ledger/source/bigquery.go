package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/odyssey-erp/glreport/internal/ledger/tabular"
)

// Project ids may contain dashes, and domain-scoped ones a colon and dots.
var projectPattern = regexp.MustCompile(`^[a-z][a-z0-9.:-]*[a-z0-9]$`)

// BigQuery reads every table of one dataset with SELECT *.
type BigQuery struct {
	client  *bigquery.Client
	project string
	dataset string
}

// NewBigQuery returns a loader over project.dataset. The caller owns client.
func NewBigQuery(client *bigquery.Client, project, dataset string) (*BigQuery, error) {
	if !identPattern.MatchString(dataset) {
		return nil, fmt.Errorf("%w: dataset %q", ErrInvalidIdentifier, dataset)
	}
	if project == "" {
		project = client.Project()
	}
	if !projectPattern.MatchString(project) {
		return nil, fmt.Errorf("%w: project %q", ErrInvalidIdentifier, project)
	}
	return &BigQuery{client: client, project: project, dataset: dataset}, nil
}

// Load reads the tables present in the dataset.
func (b *BigQuery) Load(ctx context.Context) (tabular.Set, error) {
	ds := b.client.DatasetInProject(b.project, b.dataset)
	set := make(tabular.Set)
	for _, name := range tableNames() {
		md, err := ds.Table(name).Metadata(ctx)
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("source: bigquery metadata %s: %w", name, err)
		}
		t, err := b.readTable(ctx, name, md.Schema)
		if err != nil {
			return nil, err
		}
		set[name] = t
	}
	return set, nil
}

func (b *BigQuery) readTable(ctx context.Context, name string, sch bigquery.Schema) (*tabular.Table, error) {
	query := fmt.Sprintf("SELECT * FROM `%s.%s.%s`", b.project, b.dataset, name)
	it, err := b.client.Query(query).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("source: bigquery query %s: %w", name, err)
	}
	t := &tabular.Table{Name: name, Columns: make([]string, len(sch))}
	for i, f := range sch {
		t.Columns[i] = tabular.CleanHeader(f.Name)
	}
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source: bigquery iterate %s: %w", name, err)
		}
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = cellString(v)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
