package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/variantdev/docship/pkg/buildkite"
	"github.com/variantdev/docship/pkg/config"
	"github.com/variantdev/docship/pkg/loginfra"
	"github.com/variantdev/docship/pkg/pipeline"
	"k8s.io/klog/klogr"
)

type rootOptions struct {
	configPath string
	workDir    string
}

func Execute() {
	log := klogr.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("signal.received", "action", "cancelling")
		cancel()
	}()

	cmd := newRootCommand(ctx, log)

	cmd.SilenceErrors = true

	fs := loginfra.Init()

	// Hand parsing of remaining flags to pflags and cobra
	pflag.CommandLine.AddGoFlagSet(fs)

	if err := cmd.Execute(); err != nil {
		log.Error(err, err.Error())
		os.Exit(1)
	}
}

func newRootCommand(ctx context.Context, log logr.Logger) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "docship",
		Short:        "Plans and runs the docs build and deploy pipeline",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.workDir == "" {
				return nil
			}
			return os.Chdir(opts.workDir)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to the pipeline config")
	cmd.PersistentFlags().StringVar(&opts.workDir, "workdir", "", "Repository checkout to run in. Defaults to the current directory")

	appFor := func() (*app, error) {
		return newApp(opts.configPath, log)
	}

	cmd.AddCommand(
		newStepsCommand(ctx, appFor),
		newRunCommand(ctx, appFor),
		newLocalCommand(ctx, appFor),
		newVersionNameCommand(ctx, appFor),
	)

	return cmd
}

func newStepsCommand(ctx context.Context, appFor func() (*app, error)) *cobra.Command {
	co := &contextOptions{}
	var upload bool

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Print the Buildkite steps for the build, or upload them with --upload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}

			bc, err := a.buildContext(ctx, co, cmd.Flags())
			if err != nil {
				return err
			}

			steps := a.conf.Planner().Plan(bc)

			a.log.V(1).Info("steps.planned", "context", bc.String(), "steps", len(steps))

			if upload {
				return a.uploader().UploadSteps(ctx, steps)
			}

			bs, err := (&buildkite.Renderer{Command: a.command}).Render(steps)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(bs)
			return err
		},
	}

	co.addFlags(cmd.Flags())
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the steps with buildkite-agent instead of printing them")

	return cmd
}

func newRunCommand(ctx context.Context, appFor func() (*app, error)) *cobra.Command {
	co := &contextOptions{}

	cmd := &cobra.Command{
		Use:   "run ACTION",
		Short: "Run one action of the pipeline: build, deploy, update-search-index or tag-release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			action, err := pipeline.ParseAction(args[0])
			if err != nil {
				return err
			}
			if action.IsControl() {
				return fmt.Errorf("%s steps are handled by the pipeline engine and cannot be run", action)
			}

			a, err := appFor()
			if err != nil {
				return err
			}

			start := time.Now()
			defer func() { a.observe(start, err) }()

			bc, err := a.buildContext(ctx, co, cmd.Flags())
			if err != nil {
				return err
			}

			actions, err := a.actions(ctx, a.uploader())
			if err != nil {
				return err
			}

			res, err := actions.Run(ctx, pipeline.Step{Name: string(action), Action: action, Context: bc})
			if err != nil {
				return err
			}

			if res.Outcome == pipeline.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s: %s\n", action, res.Reason)
			}

			return nil
		},
	}

	co.addFlags(cmd.Flags())

	return cmd
}

func newLocalCommand(ctx context.Context, appFor func() (*app, error)) *cobra.Command {
	co := &contextOptions{}
	var approve bool

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Run the whole pipeline in this process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := appFor()
			if err != nil {
				return err
			}

			start := time.Now()
			defer func() { a.observe(start, err) }()

			bc, err := a.buildContext(ctx, co, cmd.Flags())
			if err != nil {
				return err
			}

			var approver pipeline.Approver = &promptApprover{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
			if approve {
				approver = autoApprover{}
			}

			executor := &pipeline.Executor{Approver: approver, Logger: a.log}

			actions, err := a.actions(ctx, executor)
			if err != nil {
				return err
			}
			executor.Runner = actions

			results, err := executor.Execute(ctx, a.conf.Planner().Plan(bc))
			for _, r := range results {
				if r.Outcome == pipeline.Skipped {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", r.Step, r.Outcome, r.Reason)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Step, r.Outcome)
				}
			}

			return err
		},
	}

	co.addFlags(cmd.Flags())
	cmd.Flags().BoolVar(&approve, "approve", false, "Approve block steps without asking")

	return cmd
}

func newVersionNameCommand(ctx context.Context, appFor func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "version-name",
		Short: "Print the release version name of the current commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}

			namer, err := a.versionNamer(ctx)
			if err != nil {
				return err
			}

			name, err := namer.Name(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), name)

			return nil
		},
	}
}
