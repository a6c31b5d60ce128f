package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskmanager/client"
)

func suggestCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest [task-id] [task-title]",
		Short: "Ask the generator for subtasks and optionally save them",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			save, _ := cmd.Flags().GetIntSlice("save")
			saveAll, _ := cmd.Flags().GetBool("all")

			return withSubtasks(opts, args[0], func(a *app, m *client.SubtaskManager) error {
				ctx, cancel := commandContext()
				defer cancel()

				suggestions := client.NewSuggestionClient(a.store, a.session, m, a.logger)
				if err := suggestions.Generate(ctx, args[1]); err != nil {
					return errors.New(suggestions.Err())
				}

				list := suggestions.Suggestions()
				if len(list) == 0 {
					fmt.Println("No suggestions.")
					return nil
				}

				picked := list
				if !saveAll {
					picked = picked[:0:0]
					for _, n := range save {
						if n < 1 || n > len(list) {
							return fmt.Errorf("no suggestion #%d", n)
						}
						picked = append(picked, list[n-1])
					}
				}

				var failed error
				for _, text := range picked {
					if err := suggestions.Commit(ctx, text); err != nil {
						failed = errors.Join(failed, err)
					}
				}

				for i, text := range suggestions.Suggestions() {
					fmt.Printf("%d. %s\n", i+1, text)
				}
				if len(picked) > 0 {
					printSubtasks(m.Subtasks())
				}
				return failed
			})
		},
	}
	cmd.Flags().IntSlice("save", nil, "Save the numbered suggestions (1-based)")
	cmd.Flags().Bool("all", false, "Save every suggestion")
	return cmd
}
