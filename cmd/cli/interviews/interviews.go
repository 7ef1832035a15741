package interviews

import (
	"fmt"
	"github.com/badgerinator/businessProcessAnalysis/cmd/cli/storage"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/progress"
	"github.com/badgerinator/businessProcessAnalysis/internal/state"
	"github.com/badgerinator/businessProcessAnalysis/internal/transcript"
	"github.com/spf13/cobra"
	"os"
	"text/tabwriter"
	"time"
)

var Group = &cobra.Group{
	ID:    "interview",
	Title: "Interview operations",
}

func init() {
	List.Flags().String("q", "", "only list interviews matching the candidate or questionnaire")
	List.Flags().String("status", "", "only list open or finished interviews")
	Export.Flags().String("out", ".", "directory to write the transcript to")
}

var List = &cobra.Command{
	Use:     "interviews",
	GroupID: "interview",
	Short:   "List interviews",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		query, _ := cmd.Flags().GetString("q")
		status, _ := cmd.Flags().GetString("status")
		filter := state.Filter{Query: query, Status: state.Status(status)}
		switch filter.Status {
		case state.StatusAll, state.StatusOpen, state.StatusFinished:
		default:
			return errors.New("status must be one of open, finished")
		}

		ctx := cmd.Context()
		store, closeStore, err := storage.Open(ctx, storage.Logger(cmd.ErrOrStderr()), os.LookupEnv)
		if err != nil {
			return err
		}
		defer closeStore()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding
		_, _ = fmt.Fprintln(w, "ID\tCANDIDATE\tSTARTED\tSTATUS\tPROGRESS")
		for _, iv := range store.Interviews(filter) {
			ivStatus := "open"
			if iv.Finished() {
				ivStatus = "finished"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\n", iv.ID, iv.Candidate.Name,
				iv.StartedAt.Local().Format("2006-01-02 15:04"), ivStatus, progress.Percent(iv))
		}
		return errors.Wrap(w.Flush(), "flush table")
	},
}

var Export = &cobra.Command{
	Use:     "export [interview id]",
	GroupID: "interview",
	Short:   "Export an interview transcript",
	Long:    `Writes the interview's questionnaire, responses and review as a JSON transcript`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("out")

		ctx := cmd.Context()
		store, closeStore, err := storage.Open(ctx, storage.Logger(cmd.ErrOrStderr()), os.LookupEnv)
		if err != nil {
			return err
		}
		defer closeStore()

		iv, q, err := store.InterviewWithQuestionnaire(args[0])
		if err != nil {
			return err
		}
		name, data, err := transcript.Export(q, iv, time.Now())
		if err != nil {
			return err
		}
		path, err := transcript.Write(dir, name, data)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}
