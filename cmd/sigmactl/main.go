// sigmactl drives the scattering engine against a local or remote medium.
// It is the caller side of the engine contract: it owns the medium, maps
// coordinates to physical offsets and keeps its own manifest files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sigmavault/internal/keystate"
	"sigmavault/internal/medium"
	"sigmavault/internal/platform"
	"sigmavault/internal/scatter"
)

type config struct {
	MediumPath    string `env:"SIGMAVAULT_MEDIUM" envDefault:"./vault.medium"`
	MediumSize    int64  `env:"SIGMAVAULT_MEDIUM_SIZE" envDefault:"268435456"`
	KeyFile       string `env:"SIGMAVAULT_KEYFILE" envDefault:"./sigmavault.key"`
	Passphrase    string `env:"SIGMAVAULT_PASSPHRASE"`
	Shards        int    `env:"SIGMAVAULT_SHARDS" envDefault:"8"`
	LossTolerance int    `env:"SIGMAVAULT_LOSS_TOLERANCE" envDefault:"2"`
	MongoURI      string `env:"SIGMAVAULT_MONGO_URI"`
	MongoDB       string `env:"SIGMAVAULT_MONGO_DB" envDefault:"sigmavault"`
	Verbose       bool   `env:"SIGMAVAULT_VERBOSE"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sigmactl:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	_ = platform.DisableCoreDumps()

	log := zap.NewNop()
	if cfg.Verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		log = l
		defer func() { _ = log.Sync() }()
	}

	root := &cobra.Command{
		Use:           "sigmactl",
		Short:         "Scatter and gather files through the dimensional vault medium",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.MediumPath, "medium", cfg.MediumPath, "path to the medium file")
	root.PersistentFlags().StringVar(&cfg.KeyFile, "keyfile", cfg.KeyFile, "path to the sealed key file")
	root.PersistentFlags().StringVar(&cfg.Passphrase, "passphrase", cfg.Passphrase, "unlock passphrase (prefer SIGMAVAULT_PASSPHRASE)")

	root.AddCommand(initCmd(&cfg, log))
	root.AddCommand(scatterCmd(&cfg, log))
	root.AddCommand(gatherCmd(&cfg, log))
	root.AddCommand(inspectCmd(&cfg))
	return root.Execute()
}

func initCmd(cfg *config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the device key file and the medium",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := createKeyFile(cfg.KeyFile, []byte(cfg.Passphrase)); err != nil {
				return err
			}
			if cfg.MongoURI == "" {
				m, err := medium.NewFileMedium(cfg.MediumPath, cfg.MediumSize)
				if err != nil {
					return fmt.Errorf("create medium: %w", err)
				}
				defer m.Close()
			}
			log.Info("vault initialized",
				zap.String("keyfile", cfg.KeyFile),
				zap.String("medium", cfg.MediumPath),
				zap.Int64("size", cfg.MediumSize))
			fmt.Fprintln(cmd.OutOrStdout(), "initialized", cfg.KeyFile)
			return nil
		},
	}
}

func scatterCmd(cfg *config, log *zap.Logger) *cobra.Command {
	var inPath, manifestPath string
	c := &cobra.Command{
		Use:   "scatter",
		Short: "Scatter a file into the medium",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(cfg, log)
			if err != nil {
				return err
			}
			m, closeMedium, err := openMedium(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeMedium()

			data, err := os.ReadFile(inPath)
			if err != nil {
				return err
			}

			fileID := uuid.New()
			sf, err := eng.Scatter(fileID[:], data)
			if err != nil {
				return fmt.Errorf("scatter: %w", err)
			}

			man, err := placeShards(ctx, m, fileID, sf)
			if err != nil {
				return fmt.Errorf("place shards: %w", err)
			}
			if err := m.Sync(ctx); err != nil {
				return fmt.Errorf("sync medium: %w", err)
			}
			if err := man.save(manifestPath); err != nil {
				return err
			}

			log.Info("file scattered",
				zap.String("file_id", fileID.String()),
				zap.Int("bytes", len(data)),
				zap.Int("shards", eng.NumShards()))
			fmt.Fprintln(cmd.OutOrStdout(), "scattered as", fileID.String())
			return nil
		},
	}
	c.Flags().StringVar(&inPath, "in", "", "input file")
	c.Flags().StringVar(&manifestPath, "manifest", "", "manifest output path")
	_ = c.MarkFlagRequired("in")
	_ = c.MarkFlagRequired("manifest")
	return c
}

func gatherCmd(cfg *config, log *zap.Logger) *cobra.Command {
	var outPath, manifestPath string
	c := &cobra.Command{
		Use:   "gather",
		Short: "Gather a scattered file back from the medium",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(cfg, log)
			if err != nil {
				return err
			}
			m, closeMedium, err := openMedium(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeMedium()

			man, err := loadManifest(manifestPath)
			if err != nil {
				return err
			}
			sf, err := man.collect(ctx, m, log)
			if err != nil {
				return fmt.Errorf("collect shards: %w", err)
			}
			data, err := eng.Gather(sf)
			if err != nil {
				return fmt.Errorf("gather: %w", err)
			}
			if err := os.WriteFile(outPath, data, 0600); err != nil {
				return err
			}

			log.Info("file gathered",
				zap.String("file_id", man.FileID),
				zap.Int("bytes", len(data)))
			fmt.Fprintln(cmd.OutOrStdout(), "gathered", len(data), "bytes")
			return nil
		},
	}
	c.Flags().StringVar(&outPath, "out", "", "output file")
	c.Flags().StringVar(&manifestPath, "manifest", "", "manifest path")
	_ = c.MarkFlagRequired("out")
	_ = c.MarkFlagRequired("manifest")
	return c
}

func inspectCmd(cfg *config) *cobra.Command {
	var manifestPath string
	c := &cobra.Command{
		Use:   "inspect",
		Short: "Describe a manifest without touching the medium",
		RunE: func(cmd *cobra.Command, args []string) error {
			man, err := loadManifest(manifestPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "file id:      ", man.FileID)
			fmt.Fprintln(out, "original size:", man.OriginalSize)
			fmt.Fprintln(out, "shards:       ", len(man.Shards))
			var physical int64
			for _, s := range man.Shards {
				for _, e := range s {
					physical += int64(e.Length)
				}
			}
			fmt.Fprintln(out, "physical size:", physical)
			return nil
		},
	}
	c.Flags().StringVar(&manifestPath, "manifest", "", "manifest path")
	_ = c.MarkFlagRequired("manifest")
	return c
}

func openEngine(cfg *config, log *zap.Logger) (*scatter.Engine, error) {
	master, err := unlockMasterKey(cfg.KeyFile, []byte(cfg.Passphrase))
	if err != nil {
		return nil, err
	}
	defer wipe(master)
	_ = platform.LockMemory(master)

	ks, err := keystate.Derive(master)
	if err != nil {
		return nil, err
	}
	return scatter.New(ks,
		scatter.WithNumShards(cfg.Shards),
		scatter.WithLossTolerance(cfg.LossTolerance),
		scatter.WithLogger(log),
	)
}

func openMedium(ctx context.Context, cfg *config) (medium.Medium, func(), error) {
	if cfg.MongoURI != "" {
		m, err := medium.NewMongoMedium(ctx, cfg.MongoURI, cfg.MongoDB, "blocks", cfg.MediumSize)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo medium: %w", err)
		}
		return m, func() { _ = m.Close(ctx) }, nil
	}
	m, err := medium.NewFileMedium(cfg.MediumPath, cfg.MediumSize)
	if err != nil {
		return nil, nil, fmt.Errorf("open medium: %w", err)
	}
	return m, func() { _ = m.Close() }, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
