package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rushteam/placekit/core"
)

func newArtifactsCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts",
		Short: "Load the model artifacts and print a summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := o.setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.artifactsError(); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), a)
			return nil
		},
	}
}

func printSummary(w io.Writer, a *app) {
	b, _ := a.artifacts.Bundle()
	meta := b.Metadata

	fmt.Fprintf(w, "source:      %s\n", artifactSource(a.cfg.Artifacts).Name())
	fmt.Fprintf(w, "classifier:  %s (%d features)\n", b.Classifier.Name(), b.Classifier.NumFeatures())
	fmt.Fprintf(w, "features:    %s\n", strings.Join(meta.Features, ", "))
	fmt.Fprintf(w, "target:      %s\n", meta.Target)
	if meta.Accuracy != nil {
		fmt.Fprintf(w, "accuracy:    %.2f%%\n", *meta.Accuracy)
	} else {
		fmt.Fprintf(w, "accuracy:    n/a\n")
	}
	if meta.CVAccuracy != nil {
		fmt.Fprintf(w, "cv accuracy: %.2f%%\n", *meta.CVAccuracy)
	}
	fmt.Fprintf(w, "samples:     %d\n", meta.NSamples)
	fmt.Fprintf(w, "branches:    %s\n", strings.Join(meta.BranchList(), ", "))
	fmt.Fprintf(w, "encoded:     Branch=[%s] Gender=[%s]\n",
		strings.Join(b.Encoder.Classes(core.FieldBranch), ", "),
		strings.Join(b.Encoder.Classes(core.FieldGender), ", "))
}
