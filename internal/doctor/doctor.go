// Package doctor runs readiness diagnostics for config, discovery, the daemon, and images.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rbright/overlayctl/internal/config"
	"github.com/rbright/overlayctl/internal/discovery"
	"github.com/rbright/overlayctl/internal/images"
	"github.com/rbright/overlayctl/internal/ipc"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes discovery/daemon/image checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkDir("discovery.dir", cfg.Config.Discovery.Dir))

	endpoints, err := discovery.Find(cfg.Config.Discovery.Dir, cfg.Config.Discovery.Prefix)
	if err != nil {
		checks = append(checks, Check{Name: "endpoints", Pass: false, Message: err.Error()})
	} else {
		checks = append(checks, Check{
			Name:    "endpoints",
			Pass:    true,
			Message: fmt.Sprintf("%d candidate(s) matching %s", len(endpoints), discovery.Pattern(cfg.Config.Discovery.Prefix)),
		})
		checks = append(checks, checkDaemon(ctx, endpoints, cfg.Config.Timeouts.Connect()))
	}

	checks = append(checks, checkImages(cfg.Config.Images))

	return Report{Checks: checks}
}

// checkDir validates that dir exists and is a directory.
func checkDir(name, dir string) Check {
	info, err := os.Stat(dir)
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	if !info.IsDir() {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s is not a directory", dir)}
	}
	return Check{Name: name, Pass: true, Message: dir}
}

// checkDaemon connects to the first live candidate and reports who owns it.
func checkDaemon(ctx context.Context, endpoints []discovery.Endpoint, timeout time.Duration) Check {
	var failures []string
	for _, endpoint := range endpoints {
		conn, err := ipc.Dial(ctx, endpoint, ipc.Options{DialTimeout: timeout})
		if err != nil {
			var connErr *ipc.ConnectionError
			if errors.As(err, &connErr) && connErr.Stale() {
				failures = append(failures, endpoint.Path+" (stale)")
			} else {
				failures = append(failures, err.Error())
			}
			continue
		}

		peer, peerErr := ipc.PeerCredentials(conn)
		_ = conn.Close()

		if peerErr != nil {
			return Check{Name: "daemon", Pass: true, Message: fmt.Sprintf("accepting connections at %s", endpoint.Path)}
		}
		if peer.UID != os.Getuid() {
			return Check{
				Name:    "daemon",
				Pass:    false,
				Message: fmt.Sprintf("%s is owned by uid %d (pid %d), not the current user", endpoint.Path, peer.UID, peer.PID),
			}
		}
		return Check{Name: "daemon", Pass: true, Message: fmt.Sprintf("pid %d accepting connections at %s", peer.PID, endpoint.Path)}
	}

	return Check{Name: "daemon", Pass: false, Message: "no live daemon: " + strings.Join(failures, "; ")}
}

// checkImages validates the preview image source.
func checkImages(cfg config.ImagesConfig) Check {
	paths, err := images.List(cfg.Dir, cfg.Extensions)
	if err != nil {
		return Check{Name: "images.dir", Pass: false, Message: err.Error()}
	}
	if len(paths) == 0 {
		return Check{
			Name:    "images.dir",
			Pass:    false,
			Message: fmt.Sprintf("no %s files in %s", strings.Join(cfg.Extensions, "/"), cfg.Dir),
		}
	}
	return Check{Name: "images.dir", Pass: true, Message: fmt.Sprintf("%d image(s) in %s", len(paths), cfg.Dir)}
}
