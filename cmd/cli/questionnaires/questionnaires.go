package questionnaires

import (
	"fmt"
	"github.com/badgerinator/businessProcessAnalysis/cmd/cli/storage"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"github.com/spf13/cobra"
	"os"
	"text/tabwriter"
)

var Group = &cobra.Group{
	ID:    "questionnaire",
	Title: "Questionnaire operations",
}

func init() {
	Build.Flags().String("name", "", "questionnaire name")
	Build.Flags().String("version", "1.0.0", "questionnaire version")
	Build.Flags().String("library", "", "questionnaire file that + lines copy questions from")
	Build.Flags().String("out", "", "path to write the questionnaire to, stdout when empty")
	_ = Build.MarkFlagRequired("name")
}

// readDocument reads a JSON or YAML questionnaire file and returns it as JSON.
func readDocument(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read questionnaire file")
	}
	return questionnaire.Parse(raw)
}

// printValidationError lists schema violations one per line.
func printValidationError(cmd *cobra.Command, err error) error {
	var ve *questionnaire.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for _, fe := range ve.Errors {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", fe.Field, fe.Message)
	}
	return err
}

var Validate = &cobra.Command{
	Use:     "validate [file]",
	GroupID: "questionnaire",
	Short:   "Validate a questionnaire",
	Long:    `Checks a JSON or YAML questionnaire against the questionnaire schema and prints its content hash`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		if err = questionnaire.Validate(doc); err != nil {
			return printValidationError(cmd, err)
		}
		hash, err := questionnaire.Hash(doc)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var Import = &cobra.Command{
	Use:     "import [file]",
	GroupID: "questionnaire",
	Short:   "Import a questionnaire",
	Long: `Validates a JSON or YAML questionnaire and adds it to the store. Stop the web server first, ` +
		`it overwrites the store with its own state on the next change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "read questionnaire file")
		}
		ctx := cmd.Context()
		store, closeStore, err := storage.Open(ctx, storage.Logger(cmd.ErrOrStderr()), os.LookupEnv)
		if err != nil {
			return err
		}
		defer closeStore()
		q, err := store.AddQuestionnaire(ctx, raw)
		if err != nil {
			return printValidationError(cmd, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", q.Hash, q.Name, q.Version)
		return nil
	},
}

var List = &cobra.Command{
	Use:     "questionnaires",
	GroupID: "questionnaire",
	Short:   "List questionnaires",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		store, closeStore, err := storage.Open(ctx, storage.Logger(cmd.ErrOrStderr()), os.LookupEnv)
		if err != nil {
			return err
		}
		defer closeStore()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding
		_, _ = fmt.Fprintln(w, "HASH\tNAME\tVERSION\tSESSIONS\tQUESTIONS\tMINUTES\tCREATED")
		for _, q := range store.Questionnaires() {
			doc, decodeErr := questionnaire.Decode(q.Document)
			if decodeErr != nil {
				return decodeErr
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%g\t%s\n", shortHash(q.Hash), q.Name, q.Version,
				len(doc.Sessions), doc.QuestionCount(), doc.TotalDuration(), q.CreatedAt.Format("2006-01-02 15:04"))
		}
		return errors.Wrap(w.Flush(), "flush table")
	},
}

// shortHash abbreviates a hash for display. Hashes from hand edited snapshots may be shorter.
func shortHash(hash string) string {
	return hash[:min(len(hash), 12)] //nolint:mnd // display width
}

var Build = &cobra.Command{
	Use:     "build [outline]",
	GroupID: "questionnaire",
	Short:   "Build a questionnaire from an outline",
	Long: `Builds a questionnaire from a plain text outline:

  # Introduction | 10
  - Walk me through your background. | 5
  - Why this role?
  + exp-conflict

# opens a session, - adds a question and + copies a question from --library by its id.
Durations after | are in minutes and optional.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		version, _ := cmd.Flags().GetString("version")
		libraryPath, _ := cmd.Flags().GetString("library")
		outPath, _ := cmd.Flags().GetString("out")

		var library questionnaire.Document
		if libraryPath != "" {
			raw, err := readDocument(libraryPath)
			if err != nil {
				return err
			}
			if library, err = questionnaire.Decode(raw); err != nil {
				return err
			}
		}

		outline, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "open outline")
		}
		defer func() {
			_ = outline.Close()
		}()

		b := questionnaire.NewBuilder(name, version)
		if err = parseOutline(outline, b, library); err != nil {
			return err
		}
		doc, err := b.Build()
		if err != nil {
			return printValidationError(cmd, err)
		}
		if outPath == "" {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(doc))
			return nil
		}
		return errors.Wrap(os.WriteFile(outPath, append(doc, '\n'), 0o644), "write questionnaire") //nolint:gosec,mnd // shared document
	},
}
