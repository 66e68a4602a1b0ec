package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"codeberg.org/snonux/coltrans/internal/archive"
	"codeberg.org/snonux/coltrans/internal/cli"
	"codeberg.org/snonux/coltrans/internal/models"
	"codeberg.org/snonux/coltrans/internal/processor"
	"codeberg.org/snonux/coltrans/internal/translation"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		flags.ApplyConfig()
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}
	rootCmd.SilenceUsage = true

	// Stop dispatching chunks on Ctrl-C; finished chunks stay checkpointed
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	if err := cli.SetupLogging(flags.LogLevel); err != nil {
		return err
	}
	ctx := cmd.Context()

	// Handle --archive flag
	if flags.Archive {
		if flags.Checkpoint == "" {
			return errors.New("--archive needs the checkpoint database given with --checkpoint")
		}
		archivedPath, err := archive.ArchiveCheckpoint(flags.Checkpoint)
		if err != nil {
			return fmt.Errorf("failed to archive checkpoint: %w", err)
		}
		fmt.Printf("Checkpoint database archived to: %s\n", archivedPath)
		return nil
	}

	// Handle --list-models flag
	if flags.ListModels {
		current := flags.Model
		if current == "" {
			current = translation.DefaultOpenAIModel
		}
		lister := models.NewLister(cli.GetOpenAIKey())
		return lister.ListAvailableModels(ctx, os.Stdout, current)
	}

	if flags.BatchFile == "" && len(args) == 0 {
		return cmd.Help()
	}
	if flags.BatchFile != "" && flags.OutputFile != "" {
		return errors.New("--output cannot be combined with --batch, give outputs in the batch file")
	}

	// Create processor
	proc, err := processor.NewFromFlags(ctx, flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	// Handle batch processing
	if flags.BatchFile != "" {
		return proc.ProcessBatch(ctx)
	}

	report, err := proc.ProcessFile(ctx, args[0], flags.OutputFile)
	if err != nil {
		var failed *processor.FailedChunksError
		if errors.As(err, &failed) && flags.Checkpoint != "" {
			log.Info().Str("checkpoint", flags.Checkpoint).
				Msg("Completed chunks are checkpointed, rerun the same command to retry the failed ones")
		}
		return err
	}

	fmt.Printf("\nDone! Translation saved to: %s\n", report.Output)
	return nil
}
