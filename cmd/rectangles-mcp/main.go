package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ironsheep/rectangles-mcp/internal/config"
	"github.com/ironsheep/rectangles-mcp/internal/dataset"
	"github.com/ironsheep/rectangles-mcp/internal/imaging"
	"github.com/ironsheep/rectangles-mcp/internal/model"
	"github.com/ironsheep/rectangles-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rectangles-mcp",
		Short: "MCP server for the synthetic rectangles dataset",
		Long: `rectangles-mcp generates binary images containing one rectangle outline,
labelled tall or wide, and exposes generation, rendering and evaluation tools.

Without a command the server communicates via MCP protocol over stdin/stdout.
Configure it in your MCP client (e.g., Claude Desktop).

Environment variables:
  RECTANGLES_MCP_LOG_LEVEL=debug    Enable debug logging`,
		Version:       Version,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          runServer,
	}
	root.SetVersionTemplate(fmt.Sprintf("rectangles-mcp %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))

	root.AddCommand(newGenerateCmd(), newEvaluateCmd())
	return root
}

func runServer(cmd *cobra.Command, args []string) error {
	srv := server.New()

	if os.Getenv("RECTANGLES_MCP_LOG_LEVEL") == "debug" {
		log.Printf("Rectangles MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	} else {
		srv.SetLogger(nil)
	}

	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// labelsFile is written next to the generated images.
type labelsFile struct {
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	Seed    uint64        `json:"seed"`
	Samples []labelRecord `json:"samples"`
}

type labelRecord struct {
	File      string            `json:"file"`
	Label     float64           `json:"label"`
	Rectangle dataset.Rectangle `json:"rectangle"`
}

type generateFlags struct {
	num         int
	width       int
	height      int
	seed        uint64
	maxAttempts int
	parallel    bool
	scale       int
	out         string
	montage     bool
}

func newGenerateCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a dataset as PNG files, labels.json and a montage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(f, cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&f.num, "num", "n", 16, "number of samples")
	flags.IntVar(&f.width, "width", 14, "image width in cells")
	flags.IntVar(&f.height, "height", 14, "image height in cells")
	flags.Uint64Var(&f.seed, "seed", 0, "random seed")
	flags.IntVar(&f.maxAttempts, "max-attempts", dataset.DefaultMaxAttempts, "attempts per sample before giving up")
	flags.BoolVar(&f.parallel, "parallel", false, "generate with one random stream per sample on all CPUs")
	flags.IntVar(&f.scale, "scale", 1, "integer enlargement of each written PNG")
	flags.StringVarP(&f.out, "out", "o", "rectangles", "output directory")
	flags.BoolVar(&f.montage, "montage", true, "also write montage.png")
	return cmd
}

func runGenerate(f generateFlags, stdout io.Writer) error {
	opts := dataset.Options{Num: f.num, Width: f.width, Height: f.height, MaxAttempts: f.maxAttempts}
	var (
		ds  *dataset.Dataset
		err error
	)
	if f.parallel {
		ds, err = dataset.BuildDatasetParallel(context.Background(), opts, f.seed, runtime.NumCPU())
	} else {
		ds, err = dataset.BuildDatasetWithOptions(opts, dataset.NewSource(f.seed))
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(f.out, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	labels := labelsFile{Width: ds.Width, Height: ds.Height, Seed: f.seed}
	for i, img := range ds.Images {
		name := fmt.Sprintf("sample_%04d.png", i)
		if err := imaging.SavePNG(filepath.Join(f.out, name), img, f.scale); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		labels.Samples = append(labels.Samples, labelRecord{File: name, Label: ds.Labels[i], Rectangle: ds.Rectangles[i]})
	}

	data, err := json.MarshalIndent(labels, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(f.out, "labels.json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write labels: %w", err)
	}

	if f.montage {
		if err := imaging.SaveMontage(filepath.Join(f.out, "montage.png"), ds, imaging.MontageOptions{ShowIndices: true}); err != nil {
			return err
		}
	}

	tall, wide := ds.ClassCounts()
	fmt.Fprintf(stdout, "wrote %d samples (%d tall, %d wide) to %s\n", ds.Len(), tall, wide, f.out)
	return nil
}

type evaluateFlags struct {
	profile       string
	seed          uint64
	train         bool
	maxIterations int
	float32       bool
}

func newEvaluateCmd() *cobra.Command {
	var f evaluateFlags
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the outline classifier experiment and print its report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(f, cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.profile, "profile", "p", "fast", "run profile: full or fast")
	flags.Uint64Var(&f.seed, "seed", 0, "seed of the training split; the test split uses seed+1")
	flags.BoolVar(&f.train, "train", true, "optimize the classifier before scoring")
	flags.IntVar(&f.maxIterations, "max-iterations", 0, "override the profile's iteration limit")
	flags.BoolVar(&f.float32, "float32", false, "round features through float32")
	return cmd
}

func runEvaluate(f evaluateFlags, stdout io.Writer) error {
	profile, err := config.ParseProfile(f.profile)
	if err != nil {
		return err
	}
	cfg := config.ForProfile(profile)
	cfg.Seed = f.seed
	if f.maxIterations != 0 {
		cfg.MaxIterations = f.maxIterations
	}
	if f.float32 {
		cfg.FloatPrecision = config.Float32
	}

	classifier, err := model.NewOutlineClassifier(cfg.Jitter)
	if err != nil {
		return err
	}
	exp := model.NewExperiment(cfg)
	exp.Logger = log.Default()

	report, err := exp.Run(context.Background(), classifier, f.train)
	if err != nil {
		return err
	}
	report.Profile = profile.String()

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
