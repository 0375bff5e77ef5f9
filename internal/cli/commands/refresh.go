package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/unilist-dev/unilist/internal/cli/auth"
	"github.com/unilist-dev/unilist/internal/content"
)

// NewRefreshCmd creates the refresh command
func NewRefreshCmd() *cobra.Command {
	var kindArg string
	var showSnapshots bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Trigger a content cache refresh on the gateway (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(kindArg, showSnapshots)
		},
	}

	cmd.Flags().StringVar(&kindArg, "kind", "", "Refresh one kind only (default: all)")
	cmd.Flags().BoolVar(&showSnapshots, "snapshots", false, "Show the current snapshots instead of refreshing")

	return cmd
}

func runRefresh(kindArg string, showSnapshots bool) error {
	if kindArg != "" {
		if _, err := content.ParseKind(kindArg); err != nil {
			return err
		}
	}

	site, err := getSelectedSite()
	if err != nil {
		return err
	}

	client := newAPIClient(site, auth.Default)
	store := newSessionStore(client)
	defer store.Close()

	ctx := context.Background()
	if _, err := requireAdmin(ctx, store); err != nil {
		return err
	}

	if showSnapshots {
		snapshots, err := client.FetchSnapshots(ctx)
		if err != nil {
			return err
		}

		if len(snapshots) == 0 {
			fmt.Println("No snapshots yet. Run 'unilist refresh' to pull content.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tITEMS\tFETCHED AT\tSOURCE")
		fmt.Fprintln(w, "────\t─────\t──────────\t──────")
		for _, snap := range snapshots {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
				snap.Kind,
				snap.ItemCount,
				snap.FetchedAt.Format("2006-01-02 15:04:05"),
				snap.Source,
			)
		}
		w.Flush()
		return nil
	}

	enqueued, err := client.TriggerRefresh(ctx, kindArg)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Refresh enqueued for: %s\n", strings.Join(enqueued, ", "))
	fmt.Println("Run 'unilist refresh --snapshots' to watch the cache fill up.")

	return nil
}
