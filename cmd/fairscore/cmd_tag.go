package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spboyer/fairscore/internal/dataset"
	"github.com/spboyer/fairscore/internal/projectconfig"
	"github.com/spf13/cobra"
)

func newTagCommand(root *rootOptions) *cobra.Command {
	var df dataFlags
	var output string

	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Add subgroup columns tagged from identity terms",
		Long: `Read identity terms (--terms or dataset.terms_file), mark every row whose
text contains a term as a whole word, ignoring case, and write the dataset
back out as CSV with one boolean column per term. Score columns of the
configured model families are carried through.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := root.configure(cmd,
				func(cfg *projectconfig.ProjectConfig) error { return df.apply(cmd, cfg) },
			)
			if err != nil {
				return err
			}
			if cfg.Dataset.TermsFile == "" {
				return fmt.Errorf("no terms file: use --terms or dataset.terms_file")
			}
			s, err := openSession(cfg, "", false)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close() //nolint:errcheck
				w = f
			}
			return runTag(cmd.ErrOrStderr(), w, s)
		},
	}

	df.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the tagged CSV here instead of stdout")
	return cmd
}

func runTag(status, w io.Writer, s *session) error {
	for _, name := range s.subgroups {
		members, ok := s.data.Subgroup(name)
		if !ok {
			continue
		}
		fmt.Fprintf(status, "%-20s %d rows\n", name, len(dataset.Indices(members, true))) //nolint:errcheck
	}
	return dataset.WriteCSV(w, s.data, s.schema)
}
