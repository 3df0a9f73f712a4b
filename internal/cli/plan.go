package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itinera/itinera/model/trip"
)

func init() {
	cmd := &cobra.Command{
		Use:   "plan [request]",
		Short: "Plan a trip interactively",
		Long:  "Starts a planning session from your request, then reads decisions and feedback from stdin until the trip is approved.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runPlan,
	}
	cmd.Flags().StringP("session", "s", "", "Resume an existing session by token")
	RootCmd.AddCommand(cmd)
}

func runPlan(cmd *cobra.Command, args []string) {
	service, err := newService()
	if err != nil {
		exitErr("init service", err)
	}
	runtime := service.Runtime()
	ctx := cmd.Context()
	if err := runtime.Start(ctx); err != nil {
		exitErr("start runtime", err)
	}
	defer runtime.Shutdown(ctx)

	token, _ := cmd.Flags().GetString("session")
	text := strings.Join(args, " ")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		turn, err := runtime.HandleTurn(ctx, token, text)
		if err != nil {
			exitErr("handle turn", err)
		}
		token = turn.SessionID
		fmt.Printf("session: %s\n\n%s\n", turn.SessionID, turn.Reply)
		if turn.Status == trip.StatusFinalized {
			return
		}
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return
		}
		text = strings.TrimSpace(scanner.Text())
		if text == "" || text == "quit" || text == "exit" {
			fmt.Printf("resume later with: itinera plan -s %s <decision>\n", token)
			return
		}
	}
}
