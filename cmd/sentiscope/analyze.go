package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sentiscope/internal/domain"
	"github.com/pscheid92/sentiscope/internal/export"
	"github.com/pscheid92/sentiscope/internal/sentiment"
	"github.com/pscheid92/sentiscope/internal/upload"
	"github.com/spf13/cobra"
)

const formatText = "text"

type analyzeOptions struct {
	file    string
	scorer  string
	lexicon string
	format  string
	output  string
	clock   clockwork.Clock
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{clock: clockwork.NewRealClock()}

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Score text given as arguments or read from a .txt file",
		Example: `  sentiscope analyze "what a great day"
  sentiscope analyze --file review.txt --format pdf --output reports/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "read input from a text file")
	flags.StringVar(&opts.scorer, "scorer", sentiment.ScorerLexicon, "scorer to use (lexicon|vader)")
	flags.StringVar(&opts.lexicon, "lexicon", "", "path to a YAML lexicon (default: built-in)")
	flags.StringVar(&opts.format, "format", formatText, "output format (text|json|csv|pdf)")
	flags.StringVarP(&opts.output, "output", "o", "", "write to file or directory instead of stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *analyzeOptions) error {
	text, err := readInput(args, opts.file)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyText
	}

	lex, err := sentiment.LoadLexicon(opts.lexicon)
	if err != nil {
		return err
	}
	analyzer, err := sentiment.NewAnalyzer(opts.scorer, lex, opts.clock)
	if err != nil {
		return err
	}
	result := analyzer.Analyze(strings.TrimSpace(text))

	if strings.EqualFold(opts.format, formatText) {
		return writeTo(cmd.OutOrStdout(), opts.output, "", func(w io.Writer) error {
			return printSummary(w, analyzer.Name(), result)
		})
	}

	format, err := domain.ParseExportFormat(opts.format)
	if err != nil {
		return err
	}
	artifact, err := export.Render(format, []domain.AnalysisResult{result}, opts.clock.Now())
	if err != nil {
		return err
	}
	return writeTo(cmd.OutOrStdout(), opts.output, artifact.Filename, func(w io.Writer) error {
		_, err := w.Write(artifact.Data)
		return err
	})
}

func readInput(args []string, file string) (string, error) {
	if file == "" {
		if len(args) == 0 {
			return "", errors.New("provide text arguments or --file")
		}
		return strings.Join(args, " "), nil
	}
	if len(args) > 0 {
		return "", errors.New("text arguments and --file are mutually exclusive")
	}

	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	return upload.Read(filepath.Base(file), "", f, upload.DefaultMaxBytes)
}

// writeTo writes to stdout when output is empty. A directory output receives defaultName.
func writeTo(stdout io.Writer, output, defaultName string, write func(io.Writer) error) error {
	if output == "" {
		return write(stdout)
	}

	if info, err := os.Stat(output); err == nil && info.IsDir() {
		if defaultName == "" {
			return fmt.Errorf("%s is a directory", output)
		}
		output = filepath.Join(output, defaultName)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(stdout, "Wrote %s\n", output)
	return nil
}

func printSummary(w io.Writer, scorer string, r domain.AnalysisResult) error {
	primary := r.Primary()
	fmt.Fprintf(w, "Sentiment:  %s (%.1f%%)\n", primary.Label, primary.Score*100)
	fmt.Fprintf(w, "Confidence: %.1f%%\n", r.Confidence*100)
	fmt.Fprintf(w, "Scorer:     %s\n", scorer)
	for _, s := range r.Sentiment {
		fmt.Fprintf(w, "  %-9s %5.1f%%\n", s.Label, s.Score*100)
	}
	_, err := fmt.Fprintf(w, "Keywords:   %s\n", strings.Join(r.Keywords, ", "))
	return err
}
