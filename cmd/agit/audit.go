package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agit-dev/agit/pkg/objstore"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the append-only audit log, newest first",
	Long: `Show the append-only audit log, newest first.

--agent, --since and --until are predicates applied to the records the
repository already returns; there is no secondary index over the log,
so a narrow window still costs a scan of --limit records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		agent, _ := cmd.Flags().GetString("agent")
		since, _ := cmd.Flags().GetString("since")
		until, _ := cmd.Flags().GetString("until")

		sinceT, err := parseAuditTime(since)
		if err != nil {
			return fmt.Errorf("--since: %w", err)
		}
		untilT, err := parseAuditTime(until)
		if err != nil {
			return fmt.Errorf("--until: %w", err)
		}

		r, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer r.Close()

		recs, err := r.AuditLog(limit)
		if err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		for _, rec := range recs {
			if !matchesAuditFilter(rec, agent, sinceT, untilT) {
				continue
			}
			fmt.Printf("%s  %-12s agent=%-10s commit=%s  %s\n",
				rec.Timestamp.Format("2006-01-02T15:04:05Z"), rec.Action, rec.AgentID, rec.CommitID, rec.Message)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().Int("limit", 50, "Maximum number of most recent audit records to read before filtering (0 for unlimited)")
	auditCmd.Flags().String("agent", "", "Only show records from this agent")
	auditCmd.Flags().String("since", "", "Only show records at or after this RFC3339 timestamp")
	auditCmd.Flags().String("until", "", "Only show records at or before this RFC3339 timestamp")
}

func parseAuditTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func matchesAuditFilter(rec objstore.AuditRecord, agent string, since, until time.Time) bool {
	if agent != "" && rec.AgentID != agent {
		return false
	}
	if !since.IsZero() && rec.Timestamp.Before(since) {
		return false
	}
	if !until.IsZero() && rec.Timestamp.After(until) {
		return false
	}
	return true
}
