package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bananagen/bananagen/internal/types"
)

// Task flag names
const (
	flagTaskID     = "id"
	flagTaskPrompt = "prompt"
	flagTaskModel  = "model"
	flagTaskWidth  = "width"
	flagTaskHeight = "height"
	flagTaskUserID = "user-id"
	flagTaskPage   = "page"
)

func init() {
	tasksCmd.AddCommand(generateTaskCmd)
	tasksCmd.AddCommand(getTaskCmd)
	tasksCmd.AddCommand(listTasksCmd)

	generateTaskCmd.Flags().StringP(flagTaskPrompt, "p", "", "Prompt text")
	generateTaskCmd.Flags().StringP(flagTaskModel, "m", "", "Model name")
	generateTaskCmd.Flags().Int(flagTaskWidth, 0, "Image width in pixels")
	generateTaskCmd.Flags().Int(flagTaskHeight, 0, "Image height in pixels")
	generateTaskCmd.Flags().Uint(flagTaskUserID, 0, "User ID to charge")
	_ = generateTaskCmd.MarkFlagRequired(flagTaskPrompt)

	getTaskCmd.Flags().StringP(flagTaskID, "i", "", "Task ID")
	_ = getTaskCmd.MarkFlagRequired(flagTaskID)

	listTasksCmd.Flags().Uint(flagTaskUserID, 0, "User ID")
	listTasksCmd.Flags().IntP(flagTaskPage, "g", 1, "Page number for pagination")
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Submit and inspect generation tasks",
}

var generateTaskCmd = &cobra.Command{
	Use:   "generate",
	Short: "Submit a new generation task",
	RunE: func(cmd *cobra.Command, _ []string) error {
		prompt, _ := cmd.Flags().GetString(flagTaskPrompt)
		model, _ := cmd.Flags().GetString(flagTaskModel)
		width, _ := cmd.Flags().GetInt(flagTaskWidth)
		height, _ := cmd.Flags().GetInt(flagTaskHeight)
		userID, _ := cmd.Flags().GetUint(flagTaskUserID)

		task, err := apiClient.Generate(context.Background(), types.GenerateRequest{
			Prompt: prompt,
			Model:  model,
			Width:  width,
			Height: height,
			UserID: userID,
		})
		if err != nil {
			return fmt.Errorf("error submitting task: %w", err)
		}
		return printJSON(task)
	},
}

var getTaskCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a task and refresh its status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		taskID, _ := cmd.Flags().GetString(flagTaskID)

		task, err := apiClient.GetTask(context.Background(), taskID)
		if err != nil {
			return fmt.Errorf("error getting task: %w", err)
		}
		return printJSON(task)
	},
}

var listTasksCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, _ := cmd.Flags().GetUint(flagTaskUserID)
		page, _ := cmd.Flags().GetInt(flagTaskPage)

		list, err := apiClient.ListTasks(context.Background(), userID, page)
		if err != nil {
			return fmt.Errorf("error listing tasks: %w", err)
		}
		return printJSON(list)
	},
}

// printJSON prints a value as indented JSON
func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
