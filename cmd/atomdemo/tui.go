package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vango-dev/atom/internal/tui"
	"github.com/vango-dev/atom/pkg/atom"
	"github.com/vango-dev/atom/pkg/form"
)

func tuiCmd(flags *globalFlags) *cobra.Command {
	var fields int

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit the form in the terminal",
		Long: `Edit the paired-field form in the terminal.

Only visible fields are subscribed; scrolling releases the rest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if fields <= 0 {
				fields = cfg.Form.Fields
			}

			store := form.NewStore(fields, atom.WithName("fields"))
			m := tui.New(store)
			defer m.Close()

			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().IntVarP(&fields, "fields", "n", 0, "Number of field pairs (default from config)")

	return cmd
}
