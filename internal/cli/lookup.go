package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tbckr/domainintel/internal/domain"
	"github.com/tbckr/domainintel/internal/input"
	"github.com/tbckr/domainintel/internal/store"
)

// enricher is satisfied by *enrich.Enricher.
type enricher interface {
	Enrich(ctx context.Context, raw string, known *domain.NetworkAddress) (*domain.Domain, error)
}

// resolveInput returns the positional domain, or reads it from stdin: an
// interactive terminal gets a prompt, piped input must hold exactly one
// non-blank line.
func resolveInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	r := cmd.InOrStdin()
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // uintptr→int is safe for file descriptors
		return input.Prompt(r, cmd.ErrOrStderr(), input.DomainPrompt)
	}
	lines, err := input.Read(r)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	switch len(lines) {
	case 0:
		return "", input.ErrNoInput
	case 1:
		return lines[0], nil
	default:
		return "", fmt.Errorf("expected one domain on stdin, got %d", len(lines))
	}
}

// runLookup enriches raw, prints it and records it in both spreadsheets.
func runLookup(ctx context.Context, stdout io.Writer, d *deps, raw string, known *domain.NetworkAddress) error {
	e, release, err := d.newEnricher()
	if err != nil {
		return err
	}
	defer release()

	dom, err := e.Enrich(ctx, raw, known)
	if err != nil {
		return err
	}
	// An interrupted run would persist half-empty rows over good ones.
	if err := ctx.Err(); err != nil {
		return err
	}

	if dom.IsEmpty() {
		d.logger.Warn("no lookup returned data", "domain", dom.FQDN)
	}
	if err := writeResult(stdout, d, dom); err != nil {
		return err
	}

	if d.cfg.NoSave {
		d.logger.Debug("skipping spreadsheets", "reason", "no_save")
		return nil
	}
	return persist(d, dom)
}

// persist writes both stores independently; a failure in one does not
// prevent the other.
func persist(d *deps, dom *domain.Domain) error {
	now := d.now()
	var errs []error

	domains := store.NewDomainStore(d.cfg.DomainsFile, d.logger)
	if err := domains.Merge(dom.SummaryRow(now)); err != nil {
		d.logger.Error("saving domain summary failed", "path", domains.Path(), "error", err)
		errs = append(errs, err)
	} else {
		d.logger.Debug("domain summary saved", "path", domains.Path())
	}

	records := store.NewRecordStore(d.cfg.RecordsFile, d.logger)
	if err := records.Append(dom.RecordRows(now)); err != nil {
		d.logger.Error("saving DNS records failed", "path", records.Path(), "error", err)
		errs = append(errs, err)
	} else {
		d.logger.Debug("DNS records saved", "path", records.Path(), "rows", dom.RecordCount())
	}

	return errors.Join(errs...)
}
