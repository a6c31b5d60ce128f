package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskmanager/client"
	"github.com/fastygo/taskmanager/domain"
)

func subtasksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtasks [task-id]",
		Short: "List and manage the subtasks of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSubtasks(opts, args[0], func(a *app, m *client.SubtaskManager) error {
				printSubtasks(m.Subtasks())
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [task-id] [title]",
		Short: "Append a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSubtasks(opts, args[0], func(a *app, m *client.SubtaskManager) error {
				ctx, cancel := commandContext()
				defer cancel()
				subtask, err := m.Add(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Println(subtask.ID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle [task-id] [subtask-id]",
		Short: "Flip a subtask between done and pending",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSubtasks(opts, args[0], func(a *app, m *client.SubtaskManager) error {
				ctx, cancel := commandContext()
				defer cancel()
				_, err := m.ToggleStatus(ctx, args[1])
				if err != nil {
					return err
				}
				printSubtasks(m.Subtasks())
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename [task-id] [subtask-id] [title]",
		Short: "Change a subtask's title",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSubtasks(opts, args[0], func(a *app, m *client.SubtaskManager) error {
				ctx, cancel := commandContext()
				defer cancel()
				title := args[2]
				_, err := m.Update(ctx, args[1], domain.SubtaskPatch{Title: &title})
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "order [task-id] [subtask-id] [index]",
		Short: "Set one subtask's order index",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[2])
			}
			return withSubtasks(opts, args[0], func(a *app, m *client.SubtaskManager) error {
				ctx, cancel := commandContext()
				defer cancel()
				_, err := m.Reorder(ctx, args[1], index)
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "move [task-id] [subtask-id] [target-subtask-id]",
		Short: "Move a subtask to another subtask's position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSubtasks(opts, args[0], func(a *app, m *client.SubtaskManager) error {
				ctx, cancel := commandContext()
				defer cancel()
				if err := m.Move(ctx, args[1], args[2]); err != nil {
					return err
				}
				printSubtasks(m.Subtasks())
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [task-id] [subtask-id]",
		Short: "Delete a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSubtasks(opts, args[0], func(a *app, m *client.SubtaskManager) error {
				ctx, cancel := commandContext()
				defer cancel()
				return m.Delete(ctx, args[1])
			})
		},
	})

	return cmd
}

// withSubtasks loads the subtasks of parentTaskID before running fn.
func withSubtasks(opts *rootOptions, parentTaskID string, fn func(a *app, m *client.SubtaskManager) error) error {
	return withApp(opts, func(a *app) error {
		ctx, cancel := commandContext()
		defer cancel()

		m := a.subtasks(parentTaskID)
		if err := m.Load(ctx); err != nil {
			return err
		}
		return fn(a, m)
	})
}

func printSubtasks(subtasks []domain.Subtask) {
	if len(subtasks) == 0 {
		fmt.Println("No subtasks.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tSTATUS\tTITLE")
	for _, s := range subtasks {
		mark := " "
		if s.Status == domain.StatusDone {
			mark = "x"
		}
		fmt.Fprintf(w, "%d\t%s\t[%s] %s\t%s\n", s.OrderIndex, s.ID, mark, s.Status, s.Title)
	}
	_ = w.Flush()
}
