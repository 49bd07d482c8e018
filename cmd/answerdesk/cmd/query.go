package cmd

import (
	"fmt"
	"strings"

	"github.com/habiliai/answerdesk"
	"github.com/habiliai/answerdesk/errors"
	"github.com/spf13/cobra"
)

func newQueryCmd(params *rootParams) *cobra.Command {
	queryParams := &struct {
		category string
		userID   string
		username string
	}{}

	cmd := &cobra.Command{
		Use:   "query <question...>",
		Short: "Ask the knowledge base a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, _, _, err := buildDesk(cmd, params)
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")

			if queryParams.category != "" {
				base, err := desk.Store().Get(cmd.Context())
				if err != nil {
					return err
				}
				matches := desk.Matcher().SearchByCategory(question, base, queryParams.category)
				if len(matches) == 0 {
					fmt.Println("No matches found in category:", queryParams.category)
					return nil
				}
				for i, match := range matches {
					fmt.Printf("%d. [%d%%] %s\n   %s\n", i+1, match.Score, match.Entry.Question, match.Entry.Answer)
				}
				return nil
			}

			result, err := desk.Ask(cmd.Context(), answerdesk.AskRequest{
				Question: question,
				UserID:   queryParams.userID,
				Username: queryParams.username,
			})
			if err != nil {
				return err
			}

			switch result.Outcome {
			case answerdesk.OutcomeMatched:
				fmt.Printf("[%d%%] %s\n%s\n", result.Match.Score, result.Match.Entry.Question, result.Match.Entry.Answer)
				for i, alt := range result.Alternatives {
					fmt.Printf("  alt %d. [%d%%] %s\n", i+1, alt.Score, alt.Entry.Question)
				}
			case answerdesk.OutcomeFallback:
				fmt.Println(result.Answer)
				fmt.Println("(generated answer, added to the knowledge base)")
			case answerdesk.OutcomeNoAnswer:
				fmt.Println("No answer found. Try rephrasing the question.")
			case answerdesk.OutcomeUnavailable:
				fmt.Println("The knowledge base is currently unavailable. Try again later.")
			default:
				return errors.Errorf("unknown outcome: %s", result.Outcome)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&queryParams.category, "category", "c", "", "restrict matching to one category")
	cmd.Flags().StringVar(&queryParams.userID, "user-id", "cli", "user identifier for the unanswered log")
	cmd.Flags().StringVar(&queryParams.username, "username", "cli", "username for the unanswered log")

	return cmd
}
