package export

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cognicore/deriv/pkg/deriv/logic"
	"github.com/cognicore/deriv/pkg/deriv/search"
)

// RuleWriter persists exported rules to a destination (file, DB, etc.).
type RuleWriter interface {
	WriteRules(ctx context.Context, content string) error
}

// ProofExporter renders a derivation as deterministic rules in the text rule
// format: every step becomes "premises -> chosen branch". The output parses
// with logic.ParseRules and replays the proof without disjunctions.
type ProofExporter struct {
	Writer RuleWriter
}

func (e *ProofExporter) Export(ctx context.Context, name string, res *search.Result) error {
	if e.Writer == nil {
		return fmt.Errorf("proof exporter: nil writer")
	}
	if res == nil || res.Status != search.StatusSucceeded {
		return fmt.Errorf("proof exporter: no proof to export")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# proof %s: %d steps\n", name, len(res.Steps))
	for i, step := range res.Steps {
		r, err := logic.NewRule(fmt.Sprintf("s%d", i+1), step.Rule.Premises(), logic.Single(step.Added))
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "# via %s\n%s\n", step.Rule, r)
	}
	fmt.Fprintf(&b, "# final %s\n", res.Final)
	return e.Writer.WriteRules(ctx, b.String())
}

// FileWriter writes exported rules to a file, replacing its contents.
type FileWriter struct {
	Path string
}

func (w FileWriter) WriteRules(_ context.Context, content string) error {
	if w.Path == "" {
		return fmt.Errorf("file writer: empty path")
	}
	return os.WriteFile(w.Path, []byte(content), 0o644)
}
