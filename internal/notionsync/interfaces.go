package notionsync

import (
	"context"

	"github.com/jomei/notionapi"
)

// PageStore is the transactions database as the Syncer sees it: pages
// tagged with a report id.
type PageStore interface {
	// ReportPages returns every page tagged with reportID.
	ReportPages(ctx context.Context, reportID string) ([]notionapi.Page, error)

	// CreatePage adds a page and returns its id.
	CreatePage(ctx context.Context, properties notionapi.Properties) (string, error)

	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) error

	// ArchivePage moves a page to the trash.
	ArchivePage(ctx context.Context, pageID string) error
}

// queryer and pageWriter are the parts of the Notion SDK DatabaseClient
// uses. *notionapi.Client's Database and Page services satisfy them.
type queryer interface {
	Query(ctx context.Context, id notionapi.DatabaseID, request *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

type pageWriter interface {
	Create(ctx context.Context, request *notionapi.PageCreateRequest) (*notionapi.Page, error)
	Update(ctx context.Context, id notionapi.PageID, request *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}
