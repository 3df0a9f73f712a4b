package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [query]",
		Short: "Recall remembered trips",
		Long:  "Searches long-term memory for past trips matching the query. Without a query, lists everything.",
		Run:   runRecall,
	}
	cmd.Flags().StringP("owner", "o", "", "Filter by owner")
	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) {
	service, err := newService()
	if err != nil {
		exitErr("init service", err)
	}
	runtime := service.Runtime()
	ctx := cmd.Context()
	defer runtime.Shutdown(ctx)

	owner, _ := cmd.Flags().GetString("owner")
	query := strings.Join(args, " ")
	facts, err := runtime.Recall(ctx, owner, query)
	if err != nil {
		exitErr("recall", err)
	}
	if len(facts) == 0 {
		fmt.Println("no remembered trips")
		return
	}
	for _, fact := range facts {
		fmt.Printf("%s  %s\n  %s\n", fact.CreatedAt.Format("2006-01-02"), fact.SessionID, fact.Summary)
	}
}
