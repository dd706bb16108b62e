package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"arcade-go/internal/errors"
	"arcade-go/internal/infrastructure/aws"
)

var exportCmd = &cobra.Command{
	Use:   "export [file|s3://bucket/key]",
	Short: "Export every game and run as JSON",
	Long: `Writes a JSON snapshot of the stats database to stdout, to a file, or to an
S3 object. "s3://" alone uses EXPORT_BUCKET; a missing key gets a
timestamped name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	ctx := commandContext(cmd)
	target := ""
	if len(args) == 1 {
		target = args[0]
	}

	rt, err := openRuntime(ctx, false)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	snap, err := rt.Store.Snapshot(ctx)
	if err != nil {
		return storageErr("snapshot", err)
	}

	var buf bytes.Buffer
	if err := snap.WriteJSON(&buf); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	switch {
	case target == "" || target == "-":
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err

	case aws.IsS3URL(target):
		loc, err := exportLocation(target)
		if err != nil {
			return err
		}
		awsCfg, err := aws.NewExportConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return errors.ConfigError("failed to load AWS configuration", err)
		}
		if err := awsCfg.Uploader().Upload(ctx, loc, &buf, "application/json"); err != nil {
			return errors.StorageError("upload export", err)
		}
		logSuccess("Exported %d games to %s", len(snap.Games), loc)
		return nil

	default:
		if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		logSuccess("Exported %d games to %s", len(snap.Games), target)
		return nil
	}
}

// exportLocation resolves the bucket and key of an s3 target.
func exportLocation(target string) (aws.Location, error) {
	if target == aws.Scheme+"://" {
		if cfg.ExportBucket == "" {
			return aws.Location{}, errors.New(errors.ExitConfigError, "EXPORT_BUCKET is not set")
		}
		target += cfg.ExportBucket
	}
	loc, err := aws.ParseLocation(target)
	if err != nil {
		return aws.Location{}, errors.Wrap(errors.ExitGeneralError, "invalid export target", err)
	}
	if loc.Key == "" {
		loc.Key = "arcade-export-" + time.Now().UTC().Format("20060102T150405Z") + ".json"
	}
	return loc, nil
}
