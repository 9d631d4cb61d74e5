package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cascade-ridge/skytrack/internal/cliutil/output"
	"github.com/cascade-ridge/skytrack/internal/host/tracker"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

var (
	statusOutput string
	statusAddr   string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running skytrack-host's /status endpoint",
	Long: `Status calls the HTTP status API of an already-running skytrack-host
process and prints the latest reported telescope snapshot and tracking
state.

Examples:
  skytrack-host status
  skytrack-host status --addr localhost:8080
  skytrack-host status --output json`,
	RunE: runHostStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "localhost:8080", "host HTTP API address")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "output format (table|json|yaml)")
}

// statusPayload mirrors internal/httpapi's unexported statusResponse; the
// API only promises stable JSON, not a shared Go type, so the CLI decodes
// into its own copy.
type statusPayload struct {
	Snapshot           *telescope.Snapshot `json:"snapshot,omitempty"`
	SecondsSinceUpdate float64             `json:"seconds_since_update"`
	Tracking           *tracker.Info       `json:"tracking,omitempty"`
}

// Headers implements output.TableRenderer.
func (statusPayload) Headers() []string { return []string{"Field", "Value"} }

// Rows implements output.TableRenderer.
func (s statusPayload) Rows() [][]string {
	rows := [][]string{
		{"seconds_since_update", strconv.FormatFloat(s.SecondsSinceUpdate, 'f', 2, 64)},
	}
	if s.Snapshot == nil {
		rows = append(rows, []string{"snapshot", "none received yet"})
		return rows
	}
	rows = append(rows,
		[]string{"status", string(s.Snapshot.Status)},
		[]string{"current_alt_deg", strconv.FormatFloat(s.Snapshot.CurrentAltDeg, 'f', 4, 64)},
		[]string{"current_az_deg", strconv.FormatFloat(s.Snapshot.CurrentAzDeg, 'f', 4, 64)},
		[]string{"is_tracking", strconv.FormatBool(s.Snapshot.IsTracking)},
	)
	if s.Snapshot.FocusPosition != nil {
		rows = append(rows, []string{"focus_position", strconv.Itoa(*s.Snapshot.FocusPosition)})
	}
	if s.Tracking != nil && s.Tracking.Tracking {
		rows = append(rows,
			[]string{"tracking_target", s.Tracking.Target},
			[]string{"tracking_error_deg", strconv.FormatFloat(s.Tracking.ErrorDeg, 'f', 4, 64)},
		)
	}
	return rows
}

func runHostStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/status", statusAddr))
	if err != nil {
		return fmt.Errorf("failed to reach skytrack-host at %s: %w", statusAddr, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload statusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode status response: %w", err)
	}

	printer := output.NewPrinter(os.Stdout, format)
	return printer.Print(payload)
}
