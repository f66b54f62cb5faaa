package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/job-geocoder/app/bootstrap"
	"github.com/job-geocoder/app/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Nạp job từ file JSON ({\"jobs\": [...]} hoặc mảng)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readRecordsFile(file)
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container, logger *zap.Logger) error {
				start := time.Now()
				res, err := c.Search.Import(ctx, raw)
				if err != nil {
					return err
				}
				logger.Info("Import hoàn tất",
					zap.String("file", file),
					zap.Int("received", res.Received),
					zap.Int("normalized", res.Normalized),
					zap.Int("unique_locations", res.UniqueLocations),
					zap.Int("with_coordinates", res.WithCoordinates),
					zap.Int64("upserted", res.Upserted),
					zap.Duration("took", time.Since(start)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "file JSON chứa job thô (- để đọc stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readRecordsFile(path string) ([]models.RawJobRecord, error) {
	if path == "-" {
		return decodeRecords(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return decodeRecords(f)
}

// decodeRecords nhận envelope {"jobs": [...]} của provider hoặc một mảng job
func decodeRecords(r io.Reader) ([]models.RawJobRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}

	var list []models.RawJobRecord
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var envelope struct {
		Jobs []models.RawJobRecord `json:"jobs"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	if envelope.Jobs == nil {
		return nil, fmt.Errorf("decode jobs: missing \"jobs\" array")
	}
	return envelope.Jobs, nil
}
