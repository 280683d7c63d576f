package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildRootCmd constructs the Cobra command tree.
func buildRootCmd() *cobra.Command {
	var server string

	root := &cobra.Command{
		Use:           "paintctl",
		Short:         "Client utilities for a running paintd server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultServer := os.Getenv("PAINTD_SERVER")
	if defaultServer == "" {
		defaultServer = "http://127.0.0.1:8080"
	}
	root.PersistentFlags().StringVar(&server, "server", defaultServer, "Base URL of the paintd server (defaults PAINTD_SERVER)")

	var (
		imagePath string
		outPath   string
		prompt    string
		strength  float64
		steps     int
		guidance  float64
	)
	paintCmd := &cobra.Command{
		Use:   "paint",
		Short: "Send an image through /process and save the PNG result",
		Long: "Sends the given image (or a generated test painting of simple shapes " +
			"when --image is omitted) through POST /process and writes the result.",
		Example: "  paintctl paint --image sketch.png --out result.png --strength 0.8",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				img []byte
				err error
			)
			if imagePath != "" {
				img, err = os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
			} else {
				img, err = testPainting(512)
				if err != nil {
					return fmt.Errorf("generate test painting: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "no --image given; using a generated test painting")
			}
			result, model, err := processImage(server, img, processParams{
				Prompt:   prompt,
				Strength: strength,
				Steps:    steps,
				Guidance: guidance,
			})
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, result, 0o644); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, model %s)\n", outPath, len(result), model)
			return nil
		},
	}
	paintCmd.Flags().StringVar(&imagePath, "image", "", "Input image file (any raster format)")
	paintCmd.Flags().StringVar(&outPath, "out", "result.png", "Output PNG path")
	paintCmd.Flags().StringVar(&prompt, "prompt", "", "Prompt text (server default when empty)")
	paintCmd.Flags().Float64Var(&strength, "strength", 0.75, "Denoising strength")
	paintCmd.Flags().IntVar(&steps, "steps", 30, "Inference steps")
	paintCmd.Flags().Float64Var(&guidance, "guidance", 7.5, "Guidance scale")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print the server /status document",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := fetchStatus(server)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}

	root.AddCommand(paintCmd, statusCmd)
	return root
}
