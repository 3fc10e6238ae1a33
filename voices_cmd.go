package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/piper"
	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

var voicesCmd = &cobra.Command{
	Use:     "voices [QUERY]",
	Short:   "List the installed piper voices",
	Long:    paragraph(fmt.Sprintf("\n%s the piper voice models installed in the data directory, optionally fuzzy-matched against a query.", keyword("List"))),
	Example: paragraph("readaloud voices\nreadaloud voices lessac"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := tts.LoadConfigFromViper()
		if err != nil {
			return err
		}
		dir, err := homedir.Expand(cfg.Piper.DataDir)
		if err != nil {
			return fmt.Errorf("unable to expand path %q: %w", cfg.Piper.DataDir, err)
		}

		models, err := piper.ListModels(dir)
		if err != nil {
			return fmt.Errorf("unable to list voices: %w", err)
		}
		if len(args) == 1 {
			models = filterModels(models, args[0])
		}
		if len(models) == 0 {
			fmt.Fprintf(os.Stderr, "No voices found in %s\n", dir)
			return nil
		}
		return printModels(os.Stdout, models)
	},
}

type modelNames []piper.Model

func (m modelNames) String(i int) string { return m[i].Name }
func (m modelNames) Len() int            { return len(m) }

// filterModels returns the models matching query, best match first.
func filterModels(models []piper.Model, query string) []piper.Model {
	matches := fuzzy.FindFrom(query, modelNames(models))
	out := make([]piper.Model, 0, len(matches))
	for _, m := range matches {
		out = append(out, models[m.Index])
	}
	return out
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func printModels(w io.Writer, models []piper.Model) error {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("NAME", "LANGUAGE", "QUALITY", "SIZE", "INSTALLED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, m := range models {
		t.Row(
			m.Name,
			m.Language.String(),
			m.Quality,
			humanize.Bytes(uint64(m.Size)), //nolint:gosec
			humanize.Time(m.ModTime),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
