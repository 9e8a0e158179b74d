package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/MimeLyc/transcribe-videos/internal/config"
	"github.com/MimeLyc/transcribe-videos/internal/history"
	"github.com/MimeLyc/transcribe-videos/internal/pipeline"
	"github.com/MimeLyc/transcribe-videos/internal/source"
	"github.com/MimeLyc/transcribe-videos/pkg/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile   string
	workDir   string
	ffmpeg    string
	historyDB string
	logLevel  string
	asJSON    bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "transcribe-videos",
		Short:         "Transcribe local, remote or YouTube videos with Deepgram",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flags.StringVar(&opts.workDir, "work-dir", "", "directory downloads are written to (WORK_DIR)")
	flags.StringVar(&opts.ffmpeg, "ffmpeg", "", "ffmpeg binary (FFMPEG_PATH)")
	flags.StringVar(&opts.historyDB, "history-db", "", "sqlite file recording runs (HISTORY_DB)")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")

	root.AddCommand(
		newKindCmd(opts, source.KindLocal, "local <path>", "Transcribe a video file on disk"),
		newKindCmd(opts, source.KindRemote, "remote <url>", "Download a video over HTTP(S) and transcribe it"),
		newKindCmd(opts, source.KindYouTube, "youtube <url>", "Download the audio of a YouTube video and transcribe it"),
		newRunCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

func (o *rootOptions) load() error {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return err
	}
	cfg, err := config.NewFromEnv(
		config.WithWorkDir(o.workDir),
		config.WithFFmpegPath(o.ffmpeg),
		config.WithHistoryDB(o.historyDB),
		config.WithLogLevel(o.logLevel),
	)
	if err != nil {
		return err
	}
	log.GetLogger().SetLevel(log.ParseLevel(cfg.System.LogLevel))
	o.cfg = cfg
	return nil
}

func newKindCmd(opts *rootOptions, kind source.Kind, use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.New(kind, args[0])
			if err != nil {
				return err
			}
			return runPipeline(cmd, opts, src)
		},
	}
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the run result as JSON")
	return cmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "run <source>",
		Short: "Transcribe a source, detecting its kind unless --kind is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := resolveSource(kind, args[0])
			if err != nil {
				return err
			}
			return runPipeline(cmd, opts, src)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "auto", "auto or one of: "+source.KindNames())
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the run result as JSON")
	return cmd
}

func resolveSource(kind, value string) (source.VideoSource, error) {
	if strings.EqualFold(strings.TrimSpace(kind), "auto") {
		detected := source.Detect(value)
		return source.New(detected.Kind, detected.Value)
	}
	k, err := source.ParseKind(kind)
	if err != nil {
		return source.VideoSource{}, err
	}
	return source.New(k, value)
}

// loggedError wraps a failure the pipeline has already logged.
type loggedError struct{ error }

func (e loggedError) Unwrap() error { return e.error }

// reportError logs err unless the pipeline already did.
func reportError(err error) {
	var logged loggedError
	if errors.As(err, &logged) {
		return
	}
	log.Error("%v", err)
}

func runPipeline(cmd *cobra.Command, opts *rootOptions, src source.VideoSource) error {
	p, err := pipeline.NewFromConfig(opts.cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := p.Run(cmd.Context(), src)
	if err != nil {
		return loggedError{err}
	}
	return printResult(cmd.OutOrStdout(), res, opts.asJSON)
}

func printResult(w io.Writer, res *pipeline.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintf(w, "Transcript: %s\n", res.TranscriptPath)
	fmt.Fprintf(w, "Audio:      %s\n", res.AudioPath)
	if res.Language != "" {
		fmt.Fprintf(w, "Language:   %s\n", res.Language)
	}
	if res.Transcript != "" {
		fmt.Fprintf(w, "\n%s\n", res.Transcript)
	}
	return nil
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.System.HistoryDB == "" {
				return fmt.Errorf("run history is disabled; set HISTORY_DB or --history-db")
			}
			store, err := history.NewSQLiteStore(opts.cfg.System.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.LoadRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show, 0 for all")
	return cmd
}

func printRuns(w io.Writer, runs []*history.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tKIND\tSTATUS\tSTAGE\tSOURCE\tTRANSCRIPT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Kind,
			r.Status,
			r.Stage,
			r.Source,
			r.TranscriptPath,
		)
	}
	return tw.Flush()
}
