package index

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/confluence"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/docs"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/storage"
)

// syncWorkers bounds the number of concurrent document conversions. Each
// conversion owns its rendering state, so workers share nothing but the
// read-only title index and the database handle.
const syncWorkers = 4

// OutputPath maps a source document path to its generated page path.
func OutputPath(rel string) string {
	return strings.TrimSuffix(rel, storage.MarkdownExt) + ".html"
}

// Sync brings the page index and the output tree up to date with a scanned
// documentation tree:
//   - new/changed documents are converted and upserted
//   - documents removed from the tree are deleted from the index and output
//
// Conversions run in parallel on a bounded worker pool. Per-document
// conversion failures are logged and skipped; they do not abort the batch.
func Sync(ctx context.Context, db *DB, tree *docs.Tree, conv *confluence.Converter, out *storage.FS, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	scanned := make(map[string]struct{}, tree.Len())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(syncWorkers)

	for _, doc := range tree.Documents() {
		scanned[doc.Path] = struct{}{}

		if checksums[doc.Path] == doc.Checksum {
			continue
		}

		doc := doc
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := convertDocument(db, conv, out, doc); err != nil {
				logger.Warn("sync: convert failed", slog.String("path", doc.Path), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: converted", slog.String("path", doc.Path))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := scanned[p]; ok {
			continue
		}
		if err := db.DeletePage(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		if out != nil {
			_ = out.Delete(OutputPath(p))
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	return nil
}

// convertDocument runs one document through the converter, records the
// result in the index, and writes the generated page to the output tree.
func convertDocument(db *DB, conv *confluence.Converter, out *storage.FS, doc *docs.Document) error {
	fm := doc.FrontMatter()
	html, attachments, err := conv.Convert([]byte(doc.Markdown), fm)
	if err != nil {
		return err
	}

	row := PageRow{
		Path:        doc.Path,
		Title:       doc.Title,
		Checksum:    doc.Checksum,
		Attachments: attachments,
		ConvertedAt: time.Now().UTC(),
	}
	if err := db.UpsertPage(row, html); err != nil {
		return err
	}
	if out != nil {
		return out.Write(OutputPath(doc.Path), []byte(html))
	}
	return nil
}

// convertFile parses raw source bytes and converts them; used by the
// watcher for single-file updates.
func convertFile(db *DB, conv *confluence.Converter, out *storage.FS, path string, data []byte) error {
	doc, err := docs.NewDocument(path, data)
	if err != nil {
		return err
	}
	return convertDocument(db, conv, out, doc)
}
