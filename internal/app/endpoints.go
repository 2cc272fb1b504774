package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/rbright/overlayctl/internal/discovery"
	"github.com/rbright/overlayctl/internal/ipc"
)

type endpointStatus struct {
	Endpoint discovery.Endpoint
	State    string
	PID      int
}

const (
	stateLive  = "live"
	stateStale = "stale"
)

// endpoints lists every candidate in discovery order with its liveness.
func (s session) endpoints(ctx context.Context) int {
	statuses := []endpointStatus{}
	for endpoint := range s.candidates() {
		statuses = append(statuses, s.inspect(ctx, endpoint))
	}

	if len(statuses) == 0 {
		fmt.Fprintf(s.Stderr, "error: %v (%s in %s)\n", discovery.ErrNoEndpoint,
			discovery.Pattern(s.cfg.Discovery.Prefix), s.cfg.Discovery.Dir)
		return 1
	}

	if isTerminal(s.Stdout) {
		fmt.Fprintln(s.Stdout, renderEndpoints(statuses))
	} else {
		for _, status := range statuses {
			fmt.Fprintf(s.Stdout, "%s\t%s\n", status.Endpoint.Path, status.State)
		}
	}

	for _, status := range statuses {
		if status.State == stateLive {
			return 0
		}
	}
	return 1
}

func (s session) inspect(ctx context.Context, endpoint discovery.Endpoint) endpointStatus {
	status := endpointStatus{Endpoint: endpoint}

	conn, err := ipc.Dial(ctx, endpoint, ipc.Options{DialTimeout: s.options().DialTimeout})
	if err != nil {
		var connErr *ipc.ConnectionError
		if errors.As(err, &connErr) && connErr.Stale() {
			status.State = stateStale
		} else {
			status.State = "error"
		}
		s.logger.Debug("endpoint probe failed", "endpoint", endpoint.Path, "error", err.Error())
		return status
	}
	defer s.closeConn(conn)

	status.State = stateLive
	if peer, err := ipc.PeerCredentials(conn); err == nil {
		status.PID = peer.PID
	}
	return status
}

func renderEndpoints(statuses []endpointStatus) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Socket", "Token", "State", "PID"})

	for _, status := range statuses {
		pid := "-"
		if status.PID > 0 {
			pid = strconv.Itoa(status.PID)
		}
		tw.AppendRow(table.Row{status.Endpoint.Path, status.Endpoint.Token, status.State, pid})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
