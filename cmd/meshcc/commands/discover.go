package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshcc/meshcc-go/pkg/discovery"
)

// newBrowser is replaced in tests.
var newBrowser = func(cfg discovery.BrowserConfig) (discovery.Browser, error) {
	return discovery.NewMDNSBrowser(cfg)
}

var (
	discoverTimeout   time.Duration
	discoverHomeID    string
	discoverTransport string
	discoverInterface string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find gateways on the local network",
	Long: `Discover browses mDNS for ` + discovery.ServiceTypeGateway + ` gateways for the
given time and lists every gateway found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var filters []discovery.FilterFunc

		homeID := cfg.Gateway.HomeID
		if discoverHomeID != "" {
			v, err := strconv.ParseUint(strings.TrimPrefix(discoverHomeID, "0x"), 16, 32)
			if err != nil {
				return fmt.Errorf("invalid home id %q: %w", discoverHomeID, err)
			}
			homeID = uint32(v)
		}
		if homeID != 0 {
			filters = append(filters, discovery.FilterByHomeID(homeID))
		}
		if discoverTransport != "" {
			tp := discovery.Transport(strings.ToLower(discoverTransport))
			if !tp.Valid() {
				return fmt.Errorf("%w: %q", discovery.ErrInvalidTransport, discoverTransport)
			}
			filters = append(filters, discovery.FilterByTransport(tp))
		}

		bc := discovery.DefaultBrowserConfig()
		bc.Interface = discoverInterface
		browser, err := newBrowser(bc)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), discoverTimeout)
		defer cancel()

		found, err := discovery.Discover(ctx, browser, allOf(filters))
		if err != nil {
			return err
		}
		printGateways(cmd.OutOrStdout(), found)
		return nil
	},
}

func init() {
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 3*time.Second, "how long to browse")
	discoverCmd.Flags().StringVar(&discoverHomeID, "home-id", "", "only list gateways of this network (hex)")
	discoverCmd.Flags().StringVar(&discoverTransport, "transport", "", "only list gateways speaking tcp or ws")
	discoverCmd.Flags().StringVar(&discoverInterface, "interface", "", "network interface to browse on")
	rootCmd.AddCommand(discoverCmd)
}

// allOf combines filters. No filters accept everything.
func allOf(filters []discovery.FilterFunc) discovery.FilterFunc {
	if len(filters) == 0 {
		return nil
	}
	return func(svc *discovery.GatewayService) bool {
		for _, f := range filters {
			if !f(svc) {
				return false
			}
		}
		return true
	}
}

func printGateways(w io.Writer, gateways []*discovery.GatewayService) {
	if len(gateways) == 0 {
		fmt.Fprintln(w, "No gateways found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INSTANCE\tHOME ID\tVERSION\tTRANSPORT\tADDRESS")
	for _, g := range gateways {
		addr := g.Address()
		if url := g.URL(); url != "" {
			addr = url
		}
		fmt.Fprintf(tw, "%s\t%08x\t%s\t%s\t%s\n", g.InstanceName, g.HomeID, g.Version, g.Transport, addr)
	}
	tw.Flush()
}
