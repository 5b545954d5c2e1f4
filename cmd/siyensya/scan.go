package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/FloatingDust36/siyensyago/internal/ai"
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Detect the science in a photo and start a discovery session",
	Long: `Analyze a photo for scientifically interesting objects and create a
discovery session around it. The session lives for 24 hours (configurable);
explore its objects with 'siyensya explore'.

Examples:
  siyensya scan kitchen.jpg
  siyensya scan street.jpg --explore    # jump straight into the shell`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := setupApp(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer teardownApp()

		imagePath := args[0]
		if _, err := os.Stat(imagePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", imagePath, err)
			os.Exit(1)
		}

		client, err := ai.NewClient(&ai.Config{Model: cfg.Model})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Scanning %s...\n", imagePath)
		detection, err := client.DetectObjects(ctx, imagePath, cfg.GradeLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: detection failed: %v\n", err)
			os.Exit(1)
		}

		sessionID, err := sessions.CreateSession(ctx, imagePath, detection.Objects, detection.SceneContext)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create session: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		if len(detection.Objects) == 0 {
			fmt.Printf("\n%s No scientifically interesting objects found in this photo.\n", color.YellowString("!"))
			fmt.Println("Try a photo with more going on: a kitchen, a street, a garden.")
			return
		}

		fmt.Printf("\n%s Found %d objects:\n\n", green("✓"), len(detection.Objects))
		for _, obj := range detection.Objects {
			fmt.Printf("  %-8s %-20s %s (%.0f%%)\n", obj.ID, obj.Name, obj.Category, obj.Confidence)
		}
		if sc := detection.SceneContext; sc != nil && sc.Location != "" {
			fmt.Printf("\nScene: %s", sc.Location)
			if sc.Description != "" {
				fmt.Printf(": %s", sc.Description)
			}
			fmt.Println()
		}
		fmt.Printf("\nSession %s created.\n", cyan(sessionID))

		if launch, _ := cmd.Flags().GetBool("explore"); launch {
			if err := runExplore(ctx, sessionID); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
		fmt.Println("Run 'siyensya explore' to start learning.")
	},
}

func init() {
	scanCmd.Flags().Bool("explore", false, "open the explore shell right after scanning")
	rootCmd.AddCommand(scanCmd)
}
