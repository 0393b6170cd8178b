package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// pageSize is the largest page the Notion API returns.
const pageSize = 100

// DatabaseClient reads and writes the transaction pages of one Notion
// database.
type DatabaseClient struct {
	databaseID notionapi.DatabaseID
	db         queryer
	pages      pageWriter
}

// NewDatabaseClient returns a client for databaseID authenticated with an
// integration token.
func NewDatabaseClient(token, databaseID string) *DatabaseClient {
	c := notionapi.NewClient(notionapi.Token(token))
	return newDatabaseClient(c.Database, c.Page, databaseID)
}

func newDatabaseClient(db queryer, pages pageWriter, databaseID string) *DatabaseClient {
	return &DatabaseClient{databaseID: notionapi.DatabaseID(databaseID), db: db, pages: pages}
}

// ReportPages filters the database on the report id property and follows
// pagination cursors until the last page.
func (c *DatabaseClient) ReportPages(ctx context.Context, reportID string) ([]notionapi.Page, error) {
	req := &notionapi.DatabaseQueryRequest{
		Filter: &notionapi.PropertyFilter{
			Property: PropReportID,
			RichText: &notionapi.TextFilterCondition{Equals: reportID},
		},
		PageSize: pageSize,
	}

	var all []notionapi.Page
	for {
		resp, err := c.db.Query(ctx, c.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("ReportPages: query %s: %w", reportID, err)
		}
		all = append(all, resp.Results...)
		if !resp.HasMore {
			return all, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

func (c *DatabaseClient) CreatePage(ctx context.Context, properties notionapi.Properties) (string, error) {
	page, err := c.pages.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: c.databaseID,
		},
		Properties: properties,
	})
	if err != nil {
		return "", fmt.Errorf("CreatePage: %w", err)
	}
	return string(page.ID), nil
}

// UpdatePage replaces the given properties; others are left alone.
func (c *DatabaseClient) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) error {
	if _, err := c.pages.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: properties,
	}); err != nil {
		return fmt.Errorf("UpdatePage %s: %w", pageID, err)
	}
	return nil
}

func (c *DatabaseClient) ArchivePage(ctx context.Context, pageID string) error {
	if _, err := c.pages.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Archived: true,
	}); err != nil {
		return fmt.Errorf("ArchivePage %s: %w", pageID, err)
	}
	return nil
}

var _ PageStore = (*DatabaseClient)(nil)
