package main

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/scribe/internal/config"
	"github.com/newthinker/scribe/internal/storage/archive"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Inspect archived documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived documents",
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print one archived document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	rootCmd.AddCommand(docsCmd)
}

func openArchive() (archive.Storage, error) {
	if cfgFile == "" {
		return nil, fmt.Errorf("--config is required for docs commands")
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	switch cfg.Archive.Type {
	case "localfs":
		return archive.NewLocalFS(cfg.Archive.Path)
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		})
	default:
		return nil, fmt.Errorf("no archive configured")
	}
}

func runDocsList(cmd *cobra.Command, args []string) error {
	storage, err := openArchive()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	paths, err := storage.List(ctx, "documents")
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	storage, err := openArchive()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := storage.Read(ctx, args[0])
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	fmt.Print(string(data))
	return nil
}
