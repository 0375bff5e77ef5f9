package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/unilist-dev/unilist/internal/cli/auth"
	"github.com/unilist-dev/unilist/internal/content"
	"github.com/unilist-dev/unilist/internal/gateway"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var limit, page int
	var status, universityID string

	cmd := &cobra.Command{
		Use:     "ls <kind>",
		Aliases: []string{"list"},
		Short:   "List content of a kind (universities, programs, locations, articles, events, faqs)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args[0], gateway.ListQuery{
				Limit:        limit,
				Page:         page,
				Status:       status,
				UniversityID: universityID,
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of items")
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (e.g. published)")
	cmd.Flags().StringVar(&universityID, "university", "", "Filter by university ID")

	return cmd
}

func runList(kindArg string, query gateway.ListQuery) error {
	kind, err := content.ParseKind(kindArg)
	if err != nil {
		return err
	}

	site, err := getSelectedSite()
	if err != nil {
		return err
	}

	client := newAPIClient(site, auth.Default)

	raw, err := client.FetchListings(context.Background(), kind, query)
	if err != nil {
		return err
	}

	items := gateway.DecodeListingItems(raw)

	if len(items) == 0 {
		fmt.Printf("No %s found.\n", kind)
		return nil
	}

	fmt.Printf("%s on %s (%s):\n\n", kind, site.Alias, site.URL)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSLUG\tSTATUS")
	fmt.Fprintln(w, "──\t────\t────\t──────")

	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			item.ID,
			item.DisplayName(),
			item.Slug,
			item.Status,
		)
	}

	w.Flush()

	return nil
}
