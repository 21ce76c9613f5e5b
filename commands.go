package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/vocablab/internal/service"
)

var (
	exportFormat string
	assumeYes    bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json backup or xlsx sheet")
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "replace the words without asking")
	resetCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "reset without asking")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show word and quiz statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			s := a.svc.Dashboard()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total words:   %d\n", s.TotalWords)
			fmt.Fprintf(out, "Learned:       %d\n", s.LearnedWords)
			fmt.Fprintf(out, "Due now:       %d\n", s.DueNow)
			fmt.Fprintf(out, "Average score: %d%%\n", s.AverageScore)
			fmt.Fprintf(out, "Quizzes taken: %d\n", s.QuizzesTaken)
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write all words to a JSON backup or an xlsx sheet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			name := a.svc.ExportFileName()
			sheet := strings.EqualFold(exportFormat, "xlsx")
			if sheet {
				name = strings.TrimSuffix(name, ".json") + ".xlsx"
			} else if !strings.EqualFold(exportFormat, "json") {
				return fmt.Errorf("unknown export format %q", exportFormat)
			}
			if len(args) == 1 {
				name = args[0]
			}

			f, err := os.Create(name)
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}
			defer f.Close()

			if sheet {
				err = a.svc.ExportSheet(f)
			} else {
				err = a.svc.Export(f)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Exported %d words to %s\n", len(a.svc.Words()), name)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <backup.json>",
	Short: "Replace all words with the ones in a JSON backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			n, err := a.svc.Import(ctx, data, assumeYes)
			if errors.Is(err, service.ErrConfirmationRequired) {
				fmt.Fprintf(cmd.OutOrStdout(), "⚠️ This replaces your %d words with %d words from %s. Run again with --yes to continue.\n",
					len(a.svc.Words()), n, filepath.Base(args[0]))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d words\n", n)
			return nil
		})
	},
}

var importSheetCmd = &cobra.Command{
	Use:   "import-sheet <words.xlsx|words.csv>",
	Short: "Add the words of an xlsx or csv sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		return withApp(cmd, func(ctx context.Context, a *app) error {
			res, added, err := a.svc.ImportSheet(ctx, f, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ Words processed:\n- Total: %d\n- Added: %d\n- Skipped: %d\n", res.TotalProcessed, added, res.Skipped)
			if len(res.Errors) > 0 {
				fmt.Fprintf(out, "\n❌ Errors (%d):\n", len(res.Errors))
				for _, e := range res.Errors {
					fmt.Fprintf(out, "- %s\n", e)
				}
			}
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all words and scores and restore the sample words",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			err := a.svc.Reset(ctx, assumeYes)
			if errors.Is(err, service.ErrConfirmationRequired) {
				fmt.Fprintln(cmd.OutOrStdout(), "⚠️ This deletes all words and quiz scores. Run again with --yes to continue.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "♻️ All data was reset to the sample words.")
			return nil
		})
	},
}

var remindCmd = &cobra.Command{
	Use:       "remind [on|off]",
	Short:     "Show or switch the due-word reminders",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if len(args) == 1 {
				if err := a.svc.SetRemindersEnabled(ctx, args[0] == "on"); err != nil {
					return err
				}
			}
			enabled, err := a.svc.RemindersEnabled(ctx)
			if err != nil {
				return err
			}
			state := "off"
			if enabled {
				state = "on"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "⏰ Reminders are %s, %d words due now\n", state, a.svc.Dashboard().DueNow)
			return nil
		})
	},
}
