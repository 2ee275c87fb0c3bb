package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zpdzap/chainbox/internal/config"
	"github.com/zpdzap/chainbox/internal/sandbox"
	"github.com/zpdzap/chainbox/internal/ui"
)

func main() {
	root := &cobra.Command{
		Use:           "chainbox",
		Short:         "Chainbox — run a sandboxed blockchain node in docker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		upCmd(),
		downCmd(),
		restartCmd(),
		cleanCmd(),
		enterCmd(),
		logsCmd(),
		statusCmd(),
		goalCmd(),
		dryrunCmd(),
	)

	if err := root.Execute(); err != nil {
		if errors.Is(err, sandbox.ErrDeclined) {
			ui.Warnf("%v", err)
		} else {
			ui.Errorf("%v", err)
		}
		os.Exit(1)
	}
}

// manager loads config from the chainbox home dir and wires the real
// collaborators.
func manager() (*sandbox.Manager, error) {
	root, err := config.Root()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	return sandbox.NewManager(root, cfg), nil
}

func upCmd() *cobra.Command {
	var skipCatchup bool

	cmd := &cobra.Command{
		Use:   "up [network]",
		Short: "Start the sandbox, building it first if needed (default network: testnet)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			network := ""
			if len(args) == 1 {
				network = args[0]
			}
			return m.Up(network, skipCatchup)
		},
	}
	cmd.Flags().BoolVar(&skipCatchup, "skip-fast-catchup", false, "skip fast catchup after a fresh initialization")
	return cmd
}

func downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Stop the sandbox container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			return m.Down()
		},
	}
}

func restartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Stop and start the sandbox container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			return m.Restart()
		},
	}
}

func cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the sandbox container, image, volume, and data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			return m.Clean()
		},
	}
}

func enterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enter",
		Short: "Open a shell inside the sandbox container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			return m.Enter()
		},
	}
}

func logsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs [raw]",
		Short: "Tail the node log (pass `raw` for the unprocessed file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := len(args) == 1 && args[0] == "raw"
			if len(args) == 1 && !raw {
				return fmt.Errorf("unknown logs mode %q (only `raw` is supported)", args[0])
			}
			m, err := manager()
			if err != nil {
				return err
			}
			return m.Logs(raw)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the node's status report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			return m.Status()
		},
	}
}

func goalCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "goal [args...]",
		Short:              "Run a goal command against the sandboxed node",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}
			return m.Goal(args)
		},
	}
}

func dryrunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dryrun <file>",
		Short: "Evaluate a signed transaction file against the node without submitting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("reading transaction file: %w", err)
			}
			m, err := manager()
			if err != nil {
				return err
			}
			return m.DryRun(args[0])
		},
	}
}
