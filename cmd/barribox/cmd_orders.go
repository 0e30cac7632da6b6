package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/barribox/barribox-backend/internal/orders"
	"github.com/barribox/barribox-backend/pkg/enums"
	"github.com/barribox/barribox-backend/pkg/models"
)

var ordersStatus string

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect delivery orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every order, optionally filtered by status",
	Args:  cobra.NoArgs,
	RunE:  runOrdersList,
}

func init() {
	ordersListCmd.Flags().StringVar(&ordersStatus, "status", "", "only orders in this status (e.g. created, assigned)")
	ordersCmd.AddCommand(ordersListCmd)
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	var filter orders.ListFilter
	if ordersStatus != "" {
		status, err := enums.ParseOrderStatus(ordersStatus)
		if err != nil {
			return err
		}
		filter.Status = &status
	}
	printOrders(cmd.OutOrStdout(), application.Orders.List(filter))
	return nil
}

func printOrders(out io.Writer, list []models.Order) {
	if len(list) == 0 {
		fmt.Fprintln(out, "no orders")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tSTATUS\tSENDER\tCOURIER\tPRICE")
	for _, o := range list {
		courier := o.CourierName
		if courier == "" {
			courier = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s€\n",
			o.ID, o.ItemName, o.Status.Label(), o.SenderName, courier, o.EstimatedPrice.StringFixed(2))
	}
	_ = tw.Flush()
}
