package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"codeberg.org/recruitportal/server/internal/config"
	"codeberg.org/recruitportal/server/internal/logger"
	"codeberg.org/recruitportal/server/internal/sheets"
	"codeberg.org/recruitportal/server/internal/validator"
	"codeberg.org/recruitportal/server/internal/verification"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// builds a validator from the environment; swapped out in tests
var newValidator = func(ctx context.Context) (*validator.Validator, *config.Config, error) {
	cfg, err := config.LoadValidatorConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	client, err := sheets.NewClient(ctx, cfg.Sheets)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	tokens, err := verification.NewCodec(cfg.VerificationSecret,
		verification.WithWindow(cfg.Token.WindowMinutes),
		verification.WithLookahead(cfg.Token.LookaheadMinutes),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	return validator.New(client, tokens, cfg.Sheets), cfg, nil
}

func newRootCmd() *cobra.Command {
	var format string

	root := &cobra.Command{
		Use:   "validator",
		Short: "Verify submission tokens in the response spreadsheet",
		Long: `Re-derives the verification token of every new response row.

Rows whose token does not match the submitter's email are highlighted,
marked INVALID and recorded in the security log sheet. Valid rows are
moved to "Under Review".`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&format, "format", "text", "output format: text, json or yaml")

	root.AddCommand(
		newWatchCmd(),
		newScanCmd(&format),
		newResetInvalidCmd(&format),
		newCountsCmd(&format),
		newSelfTestCmd(&format),
	)

	return root
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll the sheet and validate new rows until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			v, cfg, err := newValidator(ctx)
			if err != nil {
				return err
			}

			logger.Info("validator watching",
				"sheet", cfg.Sheets.MainSheetName,
				"interval", cfg.ValidatorPollInterval.String(),
			)

			return v.Watch(ctx, cfg.ValidatorPollInterval)
		},
	}
}

func newScanCmd(format *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Validate every unmarked row once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, _, err := newValidator(cmd.Context())
			if err != nil {
				return err
			}

			report, scanErr := v.Scan(cmd.Context())
			if err := render(cmd.OutOrStdout(), *format, report, func(w io.Writer) {
				fmt.Fprintf(w, "processed %d rows: %d valid, %d invalid, %d failed\n",
					report.Processed, report.Valid, report.Invalid, report.Failed)
			}); err != nil {
				return err
			}

			return scanErr
		},
	}
}

func newResetInvalidCmd(format *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-invalid",
		Short: "Return INVALID rows to review and clear their highlight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, _, err := newValidator(cmd.Context())
			if err != nil {
				return err
			}

			count, resetErr := v.ResetInvalid(cmd.Context())
			if err := render(cmd.OutOrStdout(), *format, map[string]int{"reset": count}, func(w io.Writer) {
				fmt.Fprintf(w, "reset %d invalid entries\n", count)
			}); err != nil {
				return err
			}

			return resetErr
		},
	}
}

func newCountsCmd(format *string) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Tally the status column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, _, err := newValidator(cmd.Context())
			if err != nil {
				return err
			}

			counts, err := v.StatusCounts(cmd.Context())
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), *format, counts, func(w io.Writer) {
				fmt.Fprintf(w, "Under Review: %d\nSelected:     %d\nRejected:     %d\nInvalid:      %d\nOther:        %d\n",
					counts.UnderReview, counts.Selected, counts.Rejected, counts.Invalid, counts.Other)
			})
		},
	}
}

func newSelfTestCmd(format *string) *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Mint and check a token, and write a TEST row to the security log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, _, err := newValidator(cmd.Context())
			if err != nil {
				return err
			}

			report, err := v.SelfTest(cmd.Context())
			if err != nil {
				return err
			}

			if err := render(cmd.OutOrStdout(), *format, report, func(w io.Writer) {
				fmt.Fprintf(w, "email: %s\ntoken: %s\nvalid: %t\n", report.Email, report.Token, report.Valid)
			}); err != nil {
				return err
			}

			if !report.Valid {
				return fmt.Errorf("freshly minted token did not verify")
			}

			return nil
		},
	}
}

func render(w io.Writer, format string, value any, text func(io.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
