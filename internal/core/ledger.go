package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"orthoinfer/internal/blob"
	"orthoinfer/pkg/domain"
)

// recordEligible writes a reaction onto the eligible ledger. Everything the
// protein-evidence test admits lands here, inferred or not.
func (r *Run) recordEligible(source *domain.Instance) {
	r.eligibleLines = append(r.eligibleLines, ledgerLine(source))
	r.eligibleCount++
}

// recordInferred writes a reaction onto the inferred ledger.
func (r *Run) recordInferred(source *domain.Instance) {
	r.inferredLines = append(r.inferredLines, ledgerLine(source))
	r.inferredCount++
}

func ledgerLine(in *domain.Instance) string {
	return fmt.Sprintf("%d\t%s\n", in.ID, sourceName(in))
}

func stringsReader(lines []string) io.Reader {
	return strings.NewReader(strings.Join(lines, ""))
}

// appendLine appends one line to a blob, creating it when absent. Blob
// stores have no append primitive, so the existing content is read back and
// rewritten.
func appendLine(ctx context.Context, sink blob.Store, key, line string, opts blob.PutOptions) error {
	var existing []byte
	if _, rc, err := sink.Get(ctx, key); err == nil {
		existing, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return err
		}
	} else if isFatalGet(err) {
		return err
	}
	content := append(existing, []byte(line)...)
	_, err := sink.Put(ctx, key, strings.NewReader(string(content)), opts)
	return err
}

// isFatalGet distinguishes a missing blob from a broken backend. Backends
// report absence with their own error types, so anything cancellable is
// treated as fatal and the rest as absence.
func isFatalGet(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
