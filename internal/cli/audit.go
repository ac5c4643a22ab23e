package cli

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/securepipe/securepipe/internal/common/httpclient"
	"github.com/spf13/cobra"
)

const (
	auditTypeGeneral  = "general"
	auditTypeSAM      = "sam"
	defaultAuditLimit = 50
)

// newAuditCmd creates the audit command group.
func newAuditCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit log commands",
		Long: `Read the audit trail of the SecurePipe API.

Available Commands:
  logs    Show recent audit events
  stats   Show audit event totals

Examples:
  # Show the last 20 general audit events
  securepipe audit logs --limit 20

  # Show security access management decisions
  securepipe audit logs --type sam`,
	}
	cmd.AddCommand(newAuditLogsCmd(a), newAuditStatsCmd(a))
	return cmd
}

func newAuditLogsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent audit events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				return ErrValidation.New("Limit must be a positive number")
			}
			kind := stringFlag(cmd.Flags(), "type")
			if err := checkChoice("type", kind, []string{auditTypeGeneral, auditTypeSAM}); err != nil {
				return err
			}
			path := apiPrefix + "audit/logs"
			if kind == auditTypeSAM {
				path = apiPrefix + "audit/sam/logs"
			}

			gw, err := a.gateway()
			if err != nil {
				return err
			}
			raw, err := gw.Request(cmd.Context(), httpclient.RequestOptions{
				Method:      http.MethodGet,
				Path:        path,
				QueryParams: map[string]string{"limit": strconv.Itoa(limit)},
			})
			if err != nil {
				return failed("Failed to get audit logs", err)
			}

			return a.render(raw, func(w io.Writer) error {
				p := newAuditPrinter(w)
				if kind == auditTypeSAM {
					logs, err := decodeList[SAMAuditLog](raw, "logs", "items")
					if err != nil {
						return err
					}
					if len(logs) == 0 {
						fmt.Fprintln(w, "No audit logs found")
						return nil
					}
					headLabel.Fprintf(w, "🛡️  SAM Audit Logs (%d):\n", len(logs))
					for _, l := range logs {
						p.printSAMLog(l)
					}
					return nil
				}

				logs, err := decodeList[AuditLog](raw, "logs", "items")
				if err != nil {
					return err
				}
				if len(logs) == 0 {
					fmt.Fprintln(w, "No audit logs found")
					return nil
				}
				headLabel.Fprintf(w, "📜 Audit Logs (%d):\n", len(logs))
				for _, l := range logs {
					p.printLog(l)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntP("limit", "l", defaultAuditLimit, "Maximum number of events")
	cmd.Flags().StringP("type", "t", auditTypeGeneral, "Audit stream (general|sam)")
	return cmd
}

func newAuditStatsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show audit event totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.gateway()
			if err != nil {
				return err
			}
			raw, err := gw.Request(cmd.Context(), httpclient.RequestOptions{
				Method: http.MethodGet,
				Path:   apiPrefix + "audit/stats",
			})
			if err != nil {
				return failed("Failed to get audit stats", err)
			}
			return a.render(raw, func(w io.Writer) error {
				st, err := decodeRecord[AuditStats](raw)
				if err != nil {
					return err
				}
				headLabel.Fprintln(w, "📊 Audit Statistics:")
				fmt.Fprintf(w, "  Total Events: %d\n", st.TotalEvents)
				fmt.Fprintf(w, "  ✅ Successful: %d (%s)\n", st.SuccessfulEvents, percent(st.SuccessfulEvents, st.TotalEvents))
				fmt.Fprintf(w, "  ❌ Failed: %d (%s)\n", st.FailedEvents, percent(st.FailedEvents, st.TotalEvents))
				fmt.Fprintf(w, "  🛡️  Denied: %d (%s)\n", st.DeniedEvents, percent(st.DeniedEvents, st.TotalEvents))
				return nil
			})
		},
	}
}

// percent formats part/total with one decimal; a zero total is 0.0%.
func percent(part, total int64) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}
