package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/job-geocoder/app/bootstrap"
	"github.com/job-geocoder/app/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGeocodeCmd() *cobra.Command {
	var city, state, country string
	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Resolve một location qua cache nhiều tầng và geocoder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := queryFromFlags(city, state, country)
			if !q.Resolvable() {
				return fmt.Errorf("cần ít nhất --city hoặc --state")
			}
			return withContainer(cmd.Context(), func(ctx context.Context, c *bootstrap.Container, logger *zap.Logger) error {
				coords := c.Geocode.Resolve(ctx, q)
				if coords == nil {
					logger.Warn("Không resolve được location", zap.String("location", q.String()))
					return fmt.Errorf("location not found: %s", q.String())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.6f\t%.6f\n", q.String(), coords.Lat, coords.Lon)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "thành phố")
	cmd.Flags().StringVar(&state, "state", "", "bang")
	cmd.Flags().StringVar(&country, "country", "", "quốc gia (mặc định USA)")
	return cmd
}

func queryFromFlags(city, state, country string) models.LocationQuery {
	return models.NewLocationQuery(optional(city), optional(state), strings.TrimSpace(country))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
