// Package notionsync mirrors a user's accounts and transactions into Notion
// databases.
package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/logger"
	"github.com/jomei/notionapi"
)

// queryPageSize is the Notion maximum.
const queryPageSize = 100

// SyncResult counts what a sync did, or would do in a dry run.
type SyncResult struct {
	Created int `json:"created"`
	Deleted int `json:"deleted"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// record is one item to mirror, keyed by its ID.
type record struct {
	id    string
	props func() notionapi.Properties
}

// SyncTransactions mirrors txs into the Notion database dbID. Pages whose
// Transaction ID is not among txs are archived and missing transactions get
// a new page. Existing pages are left as they are. Failures on single pages
// are logged and counted, not returned.
func SyncTransactions(ctx context.Context, svc NotionService, dbID, userID string, txs []domain.Transaction, accounts []domain.Account, dryRun bool) (SyncResult, error) {
	records := make([]record, 0, len(txs))
	for _, tx := range txs {
		tx := tx
		records = append(records, record{
			id: tx.ID,
			props: func() notionapi.Properties {
				return TransactionToNotionProperties(tx, domain.AccountLabel(accounts, tx.AccountID))
			},
		})
	}

	result, err := syncRecords(ctx, svc, dbID, "transaction", records, extractTransactionID, dryRun)
	if err != nil {
		return result, fmt.Errorf("SyncTransactions: user %s: %w", userID, err)
	}
	return result, nil
}

// SyncAccounts mirrors accounts into the Notion database dbID, the same way
// SyncTransactions does.
func SyncAccounts(ctx context.Context, svc NotionService, dbID, userID string, accounts []domain.Account, dryRun bool) (SyncResult, error) {
	records := make([]record, 0, len(accounts))
	for _, acc := range accounts {
		acc := acc
		records = append(records, record{
			id:    acc.ID,
			props: func() notionapi.Properties { return AccountToNotionProperties(acc) },
		})
	}

	result, err := syncRecords(ctx, svc, dbID, "account", records, extractAccountID, dryRun)
	if err != nil {
		return result, fmt.Errorf("SyncAccounts: user %s: %w", userID, err)
	}
	return result, nil
}

func syncRecords(ctx context.Context, svc NotionService, dbID, kind string, records []record, extractID func(notionapi.Page) string, dryRun bool) (SyncResult, error) {
	log := logger.FromContext(ctx).With().Str("kind", kind).Bool("dry_run", dryRun).Logger()
	var result SyncResult

	log.Info().Int("record_count", len(records)).Msg("Starting sync to Notion")

	valid := make(map[string]bool, len(records))
	for _, r := range records {
		valid[r.id] = true
	}

	pages, err := queryAllNotionPages(ctx, svc, dbID)
	if err != nil {
		return result, fmt.Errorf("failed to query Notion pages: %w", err)
	}
	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	existing := make(map[string]bool, len(pages))
	for _, page := range pages {
		id := extractID(page)

		// Pages without an ID or for records that no longer exist are stale.
		if id != "" && valid[id] && !existing[id] {
			existing[id] = true
			continue
		}

		if dryRun {
			log.Info().Str("record_id", id).Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive stale Notion page")
			result.Deleted++
			continue
		}
		if err := svc.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("record_id", id).Str("page_id", string(page.ID)).Msg("Failed to archive stale Notion page")
			result.Failed++
			continue
		}
		result.Deleted++
	}

	for _, r := range records {
		if existing[r.id] {
			result.Skipped++
			continue
		}

		if dryRun {
			log.Info().Str("record_id", r.id).Msg("[DRY RUN] Would create Notion page")
			result.Created++
			continue
		}

		page, err := svc.CreatePage(ctx, dbID, r.props())
		if err != nil {
			log.Warn().Err(err).Str("record_id", r.id).Msg("Failed to create Notion page")
			result.Failed++
			continue
		}
		log.Debug().Str("record_id", r.id).Str("page_id", string(page.ID)).Msg("Created Notion page")
		result.Created++
	}

	log.Info().
		Int("created", result.Created).
		Int("deleted", result.Deleted).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Sync completed")

	return result, nil
}

// queryAllNotionPages follows the query cursor until every page of the
// database has been read.
func queryAllNotionPages(ctx context.Context, svc NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: queryPageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := svc.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
