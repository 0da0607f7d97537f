package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rushteam/placekit/core"
)

func newPredictCommand(o *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a single profile read from a JSON file (or stdin with --file -)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := o.setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			raw, err := readProfile(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.artifactsError(); err != nil {
				return err
			}

			result, err := a.svc.Predict(cmd.Context(), raw)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "profile JSON file, - for stdin")
	return cmd
}

// readProfile 读取 JSON 对象形式的画像
func readProfile(stdin io.Reader, file string) (core.RawProfile, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" || file == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("profile must be a JSON object")
	}
	return core.RawProfile(obj), nil
}
