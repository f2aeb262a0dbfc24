// Package main provides the ftsquery CLI entry point.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/orneryd/nornicdb/internal/engine"
	"github.com/orneryd/nornicdb/internal/ftsconfig"
	"github.com/orneryd/nornicdb/internal/qnode"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ftsquery",
		Short: "ftsquery - full-text search engine over a boolean/ranked query tree",
		Long: `ftsquery indexes documents into a BadgerDB-backed inverted file and
evaluates boolean and ranked queries through an eight-pass validation and
rewrite pipeline before execution.`,
	}
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().String("data-dir", "", "override the configured data directory")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ftsquery v%s (%s)\n", version, commit)
		},
	})

	indexCmd := &cobra.Command{
		Use:   "index [file...]",
		Short: "Index one or more text files, or stdin if none are given",
		RunE:  runIndex,
	}
	indexCmd.Flags().Uint32("start-id", 1, "document id assigned to the first indexed document")
	rootCmd.AddCommand(indexCmd)

	queryCmd := &cobra.Command{
		Use:   "query <terms...>",
		Short: "Run a ranked AND query over the given terms and print matching documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQuery,
	}
	queryCmd.Flags().Int("limit", 10, "maximum number of results to print")
	rootCmd.AddCommand(queryCmd)

	explainCmd := &cobra.Command{
		Use:   "explain <terms...>",
		Short: "Print the canonical query string of the validated plan for the given terms",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runExplain,
	}
	rootCmd.AddCommand(explainCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print inverted file and plan-cache statistics",
		RunE:  runStats,
	}
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) *ftsconfig.Config {
	configPath, _ := cmd.Flags().GetString("config")
	dataDir, _ := cmd.Flags().GetString("data-dir")

	var cfg *ftsconfig.Config
	if configPath != "" {
		cfg = ftsconfig.LoadOrDefault(configPath)
	} else {
		cfg = ftsconfig.Default()
	}
	cfg.ApplyEnv()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg
}

func openEngine(cmd *cobra.Command) (*engine.Engine, error) {
	cfg := loadConfig(cmd)
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return engine.Open(cfg)
}

func runIndex(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.Close()

	startID, _ := cmd.Flags().GetUint32("start-id")
	ctx := context.Background()
	doc := qnode.DocumentID(startID)

	if len(args) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := eng.Index(ctx, doc, line); err != nil {
				return fmt.Errorf("indexing document %d: %w", doc, err)
			}
			fmt.Printf("indexed document %d (%d bytes)\n", doc, len(line))
			doc++
		}
		return scanner.Err()
	}

	for _, path := range args {
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := eng.Index(ctx, doc, string(text)); err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
		fmt.Printf("indexed document %d from %s (%d bytes)\n", doc, filepath.Base(path), len(text))
		doc++
	}
	return nil
}

// andOfTerms builds #and(#term(t1), #term(t2), ...) for the given words,
// the tree shape an unvalidated query plan starts from before Validate
// expands each TermLeaf against the inverted file.
func andOfTerms(terms []string) qnode.Node {
	children := make([]qnode.Node, 0, len(terms))
	for _, t := range terms {
		children = append(children, qnode.NewTermLeaf(t, nil, qnode.StringMode))
	}
	if len(children) == 1 {
		return children[0]
	}
	return qnode.NewAnd(children...)
}

func runQuery(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx := context.Background()
	plan, err := eng.Validate(ctx, andOfTerms(args))
	if err != nil {
		return fmt.Errorf("validating query: %w", err)
	}

	results, err := eng.Retrieve(ctx, plan)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	if len(results) > limit {
		results = results[:limit]
	}
	for _, r := range results {
		fmt.Printf("doc=%d score=%.4f tf=%d\n", r.Doc, r.Score, r.TF)
	}
	fmt.Println(strconv.Itoa(len(results)) + " result(s)")
	return nil
}

func runExplain(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx := context.Background()
	plan, err := eng.Validate(ctx, andOfTerms(args))
	if err != nil {
		return fmt.Errorf("validating query: %w", err)
	}
	fmt.Println(plan.CanonicalString())
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx := context.Background()
	totalDF, err := eng.File.GetTotalDocumentFrequency(ctx)
	if err != nil {
		return err
	}
	maxDoc, err := eng.File.GetMaxDocumentID(ctx)
	if err != nil {
		return err
	}
	avgLen, err := eng.Lengths.AverageLength(ctx)
	if err != nil {
		return err
	}
	stats := eng.Cache.Stats()

	fmt.Printf("total document frequency: %s\n", humanize.Comma(int64(totalDF)))
	fmt.Printf("max document id:          %s\n", humanize.Comma(int64(maxDoc)))
	fmt.Printf("average document length:  %.2f\n", avgLen)
	fmt.Printf("plan cache:                %d/%d entries, %.1f%% hit rate\n",
		stats.Size, stats.MaxSize, stats.HitRate)
	return nil
}
