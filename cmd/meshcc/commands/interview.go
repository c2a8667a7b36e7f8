package commands

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/meshcc/meshcc-go/pkg/service"
)

var interviewNode uint16

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Interview nodes and print what they support",
	Long: `Interview runs the discovery sequence of every command class on the
configured nodes, or on one node with --node, and prints the negotiated
versions and the values learned along the way.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := newEnvironment(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer env.Close()

		env.controller.OnEvent(func(e service.Event) {
			switch e.Type {
			case service.EventClassStateChanged:
				logger.Debug("class state", "node", e.NodeID, "endpoint", e.Endpoint, "class", e.ClassID, "state", e.ClassState)
			case service.EventInterviewFailed:
				logger.Warn("interview failed", "node", e.NodeID, "error", e.Error)
			}
		})

		out := cmd.OutOrStdout()

		if interviewNode != 0 {
			n, err := env.controller.Node(interviewNode)
			if err != nil {
				return err
			}
			res, err := env.controller.Interview(ctx, interviewNode)
			formatNode(out, n, res)
			return err
		}

		results, err := env.controller.InterviewAll(ctx)
		ids := make([]uint16, 0, len(results))
		for id := range results {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			n, nerr := env.controller.Node(id)
			if nerr != nil {
				continue
			}
			formatNode(out, n, results[id])
		}
		return err
	},
}

func init() {
	interviewCmd.Flags().Uint16Var(&interviewNode, "node", 0, "interview only this node id")
	rootCmd.AddCommand(interviewCmd)
}
