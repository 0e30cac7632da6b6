package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/barribox/barribox-backend/internal/reference"
	"github.com/barribox/barribox-backend/pkg/models"
)

var pointsNeighborhood string

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "List pickup points",
	Args:  cobra.NoArgs,
	RunE:  runPoints,
}

func init() {
	pointsCmd.Flags().StringVar(&pointsNeighborhood, "neighborhood", "", "only points in this neighborhood")
}

func runPoints(cmd *cobra.Command, args []string) error {
	var points []models.PickupPoint
	if pointsNeighborhood != "" {
		if _, ok := reference.FindNeighborhood(pointsNeighborhood); !ok {
			return fmt.Errorf("unknown neighborhood %q", pointsNeighborhood)
		}
		points = reference.PointsForNeighborhood(pointsNeighborhood)
	} else {
		points = reference.PickupPoints()
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tNEIGHBORHOOD\tADDRESS")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Neighborhood, p.Address)
	}
	return tw.Flush()
}
