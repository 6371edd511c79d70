package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brettbedarf/vtree/adapters"
	"github.com/brettbedarf/vtree/internal/shell"
	"github.com/brettbedarf/vtree/internal/util"
	"github.com/brettbedarf/vtree/server"
)

// app carries state shared by the subcommands of one invocation
type app struct {
	v    *viper.Viper
	sess *server.Session
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "vtree",
		Short:         "Manage a virtual file tree stored in a single document",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}
	bindFlags(a.v, root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "tree",
			Short: "Print the tree",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.sess.WriteTree(cmd.OutOrStdout(), 0)
			},
		},
		&cobra.Command{
			Use:   "mkdir PARENT NAME",
			Short: "Create a folder under PARENT",
			Args:  cobra.ExactArgs(2),
			RunE: a.mutate(func(cmd *cobra.Command, args []string) error {
				n, err := a.sess.CreateFolder(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.sess.Path(n))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "touch PARENT NAME",
			Short: "Create a file under PARENT",
			Args:  cobra.ExactArgs(2),
			RunE: a.mutate(func(cmd *cobra.Command, args []string) error {
				n, err := a.sess.CreateFile(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.sess.Path(n))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rm PATH",
			Short: "Delete a node and its subtree",
			Args:  cobra.ExactArgs(1),
			RunE: a.mutate(func(cmd *cobra.Command, args []string) error {
				return a.sess.Delete(args[0])
			}),
		},
		&cobra.Command{
			Use:   "rename PATH NAME",
			Short: "Rename a node",
			Args:  cobra.ExactArgs(2),
			RunE: a.mutate(func(cmd *cobra.Command, args []string) error {
				return a.sess.Rename(args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "cp SOURCE TARGET",
			Short: "Copy a node into the TARGET folder",
			Args:  cobra.ExactArgs(2),
			RunE: a.mutate(func(cmd *cobra.Command, args []string) error {
				if err := a.sess.Copy(args[0]); err != nil {
					return err
				}
				n, err := a.sess.Paste(args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.sess.Path(n))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "drop SOURCE TARGET",
			Short: "Drag a node onto the TARGET folder",
			Long:  "Drag a node onto the TARGET folder. With --drop-mode=move the source is detached, otherwise a copy is dropped.",
			Args:  cobra.ExactArgs(2),
			RunE: a.mutate(func(cmd *cobra.Command, args []string) error {
				if err := a.sess.Drag(args[0]); err != nil {
					return err
				}
				n, err := a.sess.Drop(args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.sess.Path(n))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "search KEYWORD",
			Short: "List nodes whose name contains KEYWORD",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				matches, err := a.sess.Search(args[0])
				if err != nil {
					return err
				}
				for _, n := range matches {
					fmt.Fprintln(cmd.OutOrStdout(), a.sess.Path(n))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "open PATH",
			Short: "Open a file's backing file with the default handler",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.sess.Open(args[0])
			},
		},
		&cobra.Command{
			Use:   "query EXPR",
			Short: "Evaluate a JSONPath expression against the tree document",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				results, err := a.sess.Query(args[0])
				if err != nil {
					return err
				}
				for _, r := range results {
					fmt.Fprintln(cmd.OutOrStdout(), oj.JSON(r))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "shell",
			Short: "Interactive shell; the tree is saved on exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				r := shell.New(a.sess, cmd.InOrStdin(), cmd.OutOrStdout(), adapters.SystemClipboard{})
				if err := r.Run(); err != nil {
					return err
				}
				return a.sess.Save()
			},
		},
		newMountCmd(a),
	)
	return root
}

// open builds the config, logger and session and loads the document
func (a *app) open() error {
	cfg, err := loadConfig(a.v)
	if err != nil {
		return err
	}
	util.InitializeLogger(cfg.LogLvl)

	sess, err := server.New(cfg, server.WithFuzzySearch(a.v.GetBool(keyFuzzy)))
	if err != nil {
		return err
	}
	if _, err := sess.Load(); err != nil {
		return err
	}
	a.sess = sess
	return nil
}

// mutate saves the document after fn succeeds
func (a *app) mutate(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return err
		}
		return a.sess.Save()
	}
}

func newMountCmd(a *app) *cobra.Command {
	var umount bool

	cmd := &cobra.Command{
		Use:   "mount MOUNTPOINT",
		Short: "Mount a read-only view of the tree until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := util.GetLogger("main")
			mnt := args[0]

			// Try unmount if requested
			if umount {
				// we ignore error here if not already mounted
				exec.Command("fusermount", "-u", mnt).Run() // nolint:errcheck
			}

			if err := a.sess.Serve(mnt); err != nil {
				return fmt.Errorf("failed to mount filesystem: %w", err)
			}

			// Setup signal handling for graceful shutdown
			signalChan := make(chan os.Signal, 1)
			signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

			logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")

			sig := <-signalChan
			logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")

			if err := a.sess.Unmount(); err != nil {
				logger.Error().Err(err).Msg("Failed to unmount filesystem")
				return err
			}
			logger.Info().Msg("Filesystem unmounted successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&umount, "umount", "u", false,
		"Unmount the mountpoint first if needed. Useful for debuggers that don't exit properly.")
	return cmd
}
