// Package convert turns skeleton JSON mods into binary skeletons in bulk.
package convert

import (
	"context"
	"log/slog"
	"strings"

	"redust/internal/logging"
	"redust/internal/services"
	"redust/internal/spine"
)

// Report is the outcome of a batch.
type Report struct {
	Converted []string
	Failed    services.ItemErrors
	// Skipped lists, per output file, the JSON content that had no binary
	// representation and was left out.
	Skipped map[string][]string
}

// Progress is called after each file.
type Progress func(done, total int)

// OutputPath returns the binary skeleton path for a JSON file.
func OutputPath(jsonPath string) string {
	return strings.TrimSuffix(jsonPath, ".json") + ".skel"
}

// Converter runs conversions sequentially.
type Converter struct {
	logger   *slog.Logger
	progress Progress
}

// New returns a converter. progress may be nil.
func New(logger *slog.Logger, progress Progress) *Converter {
	return &Converter{logger: logging.NewComponentLogger(logger, "convert"), progress: progress}
}

// Run converts every file, collecting failures and continuing. Only a
// cancelled context stops the batch early.
func (c *Converter) Run(ctx context.Context, files []string) Report {
	ctx = services.WithStage(ctx, "convert")
	report := Report{Skipped: make(map[string][]string)}
	for i, src := range files {
		if err := ctx.Err(); err != nil {
			report.Failed.Add(src, err)
			break
		}
		logger := logging.WithContext(services.WithItem(ctx, src), c.logger)
		dst := OutputPath(src)
		doc, err := spine.ConvertFile(ctx, src, dst)
		if err != nil {
			report.Failed.Add(src, services.Wrap(services.ErrItemFailure, "convert", "convert skeleton", "", err))
			logging.WarnWithContext(logger, "skeleton conversion failed", "convert_failed",
				logging.String("source", src),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "ask the mod author for a binary .skel"),
				logging.String(logging.FieldImpact, "mod will not be repacked"),
			)
		} else {
			report.Converted = append(report.Converted, dst)
			if len(doc.Skipped) > 0 {
				report.Skipped[dst] = doc.Skipped
				logger.Info("skeleton converted with omissions",
					logging.String("output", dst),
					logging.Int("skipped", len(doc.Skipped)),
					logging.Any("items", doc.Skipped),
				)
			} else {
				logger.Info("skeleton converted", logging.String("output", dst))
			}
		}
		if c.progress != nil {
			c.progress(i+1, len(files))
		}
	}
	return report
}
