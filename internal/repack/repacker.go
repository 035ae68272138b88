package repack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"redust/internal/bundle"
	"redust/internal/bundlestore"
	"redust/internal/config"
	"redust/internal/fileutil"
	"redust/internal/ledger"
	"redust/internal/logging"
	"redust/internal/services"
	"redust/internal/texture"
)

const stage = "repack"

// Output describes one written modded bundle.
type Output struct {
	Bundle   string
	Path     string
	Digest   string
	Size     int64
	Replaced int
	LedgerID int64
}

// Report summarises a repack run.
type Report struct {
	Outputs []Output
	// Failed holds per-mod failures such as unreadable images.
	Failed services.ItemErrors
}

// Progress is called after each mod is applied or fails.
type Progress func(done, total int)

// Repacker applies matched mods to bundles.
type Repacker struct {
	moddedDir     string
	opener        bundle.Opener
	store         *bundlestore.Store
	ledger        *ledger.Store
	compressor    *texture.Compressor
	textureFormat string
	logger        *slog.Logger
}

// New constructs a repacker. ledgerStore may be nil.
func New(cfg *config.Config, opener bundle.Opener, store *bundlestore.Store, ledgerStore *ledger.Store, logger *slog.Logger) *Repacker {
	return &Repacker{
		moddedDir:     cfg.Paths.ModdedDir,
		opener:        opener,
		store:         store,
		ledger:        ledgerStore,
		compressor:    texture.NewCompressor(cfg.Tools.TextureCompressor),
		textureFormat: cfg.Tools.TextureFormat,
		logger:        logging.NewComponentLogger(logger, "repack"),
	}
}

// OutputPath maps a cached bundle path to its place in the modded folder.
func (r *Repacker) OutputPath(bundlePath string) (string, error) {
	rel, err := r.store.RelPath(bundlePath)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.moddedDir, rel), nil
}

// ClearOutput empties the modded folder.
func (r *Repacker) ClearOutput() error {
	if err := os.RemoveAll(r.moddedDir); err != nil {
		return fmt.Errorf("clear modded folder: %w", err)
	}
	if err := os.MkdirAll(r.moddedDir, 0o755); err != nil {
		return fmt.Errorf("create modded folder: %w", err)
	}
	return nil
}

// Run clears the modded folder and writes one modded bundle per entry in
// assoc. An image that cannot be read fails only that mod. Any other error
// stops the run; bundles already written stay in place.
func (r *Repacker) Run(ctx context.Context, assoc Association, progress Progress) (Report, error) {
	ctx = services.WithStage(ctx, stage)
	logger := logging.WithContext(ctx, r.logger)
	var report Report

	if err := r.ClearOutput(); err != nil {
		return report, services.Wrap(services.ErrFatalInput, stage, "prepare output", "", err)
	}

	total := assoc.ModCount()
	done := 0
	step := func() {
		done++
		if progress != nil {
			progress(done, total)
		}
	}

	for _, group := range assoc.Bundles {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out, err := r.repackBundle(ctx, logger, group, &report.Failed, step)
		if err != nil {
			logging.ErrorWithContext(logger, "bundle repack failed", "repack_failed",
				logging.String("bundle", group.Bundle),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the mod files listed above and the bundle tool"),
			)
			return report, err
		}
		if out != nil {
			report.Outputs = append(report.Outputs, *out)
		}
	}

	logger.Info("repack completed",
		logging.Int("bundles", len(report.Outputs)),
		logging.Int("mods", total),
		logging.Int("failed", len(report.Failed)),
		logging.String(logging.FieldEventType, "repack_complete"),
	)
	return report, nil
}

func (r *Repacker) repackBundle(ctx context.Context, logger *slog.Logger, group BundleMatches, failed *services.ItemErrors, step func()) (*Output, error) {
	outPath, err := r.OutputPath(group.Bundle)
	if err != nil {
		return nil, services.Wrap(services.ErrFatalInput, stage, "output path", group.Bundle, err)
	}
	archive, err := r.opener.Open(ctx, group.Bundle)
	if err != nil {
		if services.HasMarker(err) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrExternalTool, stage, "open bundle", group.Bundle, err)
	}
	defer archive.Close()

	replaced := 0
	for _, mod := range group.Mods {
		err := r.apply(ctx, archive, mod)
		step()
		var item itemError
		switch {
		case err == nil:
			replaced++
		case errors.As(err, &item):
			failed.Add(mod.Source, services.Wrap(services.ErrItemFailure, stage, "apply mod", mod.Entry, item.err))
			logging.WarnWithContext(logger, "mod skipped", "mod_skipped",
				logging.String("mod", mod.Source),
				logging.String("entry", mod.Entry),
				logging.Error(item.err),
				logging.String(logging.FieldImpact, "bundle keeps the original asset"),
			)
		default:
			return nil, services.Wrap(services.ErrFatalInput, stage, "apply mod", mod.Source, err)
		}
	}
	if replaced == 0 {
		logger.Info("bundle left unmodified", logging.String("bundle", group.Bundle))
		return nil, nil
	}

	err = fileutil.WriteAtomic(outPath, 0o644, func(w io.Writer) error {
		return archive.Save(ctx, w)
	})
	if err != nil {
		if services.HasMarker(err) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrFatalInput, stage, "write bundle", outPath, err)
	}

	digest, size, err := fileutil.Digest(outPath)
	if err != nil {
		return nil, services.Wrap(services.ErrFatalInput, stage, "digest bundle", outPath, err)
	}
	out := &Output{Bundle: group.Bundle, Path: outPath, Digest: digest, Size: size, Replaced: replaced}
	if r.ledger != nil {
		id, err := r.ledger.RecordOutput(ctx, ledger.OutputRecord{BundlePath: outPath, Digest: digest, ModCount: replaced})
		if err != nil {
			logging.WarnWithContext(logger, "failed to record output in ledger", "ledger_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "status history incomplete"),
			)
		}
		out.LedgerID = id
	}
	logger.Info("modded bundle written",
		logging.String("path", outPath),
		logging.Int("replaced", replaced),
		logging.String("digest", digest),
		logging.String(logging.FieldEventType, "bundle_written"),
	)
	return out, nil
}

// itemError marks a failure confined to one mod.
type itemError struct{ err error }

func (e itemError) Error() string { return e.err.Error() }
func (e itemError) Unwrap() error { return e.err }

func (r *Repacker) apply(ctx context.Context, archive bundle.Archive, mod Match) error {
	switch mod.Type {
	case bundle.TypeTexture2D:
		img, err := texture.Load(mod.Source)
		if err != nil {
			return itemError{err}
		}
		img, err = r.compressor.Compress(ctx, img, r.textureFormat)
		if err != nil {
			return itemError{err}
		}
		return archive.ReplaceImage(mod.Entry, img)
	case bundle.TypeTextAsset:
		data, err := os.ReadFile(mod.Source)
		if err != nil {
			return fmt.Errorf("read mod: %w", err)
		}
		return archive.ReplaceBytes(mod.Entry, data)
	default:
		return itemError{fmt.Errorf("%w: %s", bundle.ErrWrongType, mod.Type)}
	}
}
