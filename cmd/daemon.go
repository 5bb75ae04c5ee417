package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/theirongolddev/fincast/internal/apiclient"
	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/daemon"
	"github.com/theirongolddev/fincast/internal/pipeline"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	flagDaemonDetach    bool
	flagDaemonPIDFile   string
	flagDaemonLogFile   string
	flagDaemonMaxUpload int64
	flagDaemonChild     bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Serve the forecast HTTP API with an SSE event stream",
	Long: `Serve the ledger upload, forecast and status endpoints. With --interval
the import directory is synced periodically and the models retrained when
new records arrive.`,
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var flagPushMonthly bool

var daemonPushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Upload a ledger file to the running daemon",
	Long: `Upload a CSV or OFX file to the daemon. By default the file is loaded as
historical data and the models retrained. With --monthly the daemon also
forecasts from the latest period in the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runDaemonPush,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	defaultPID := filepath.Join(pipeline.DataDir(), "fincastd.pid")
	defaultLog := filepath.Join(pipeline.DataDir(), "fincastd.log")

	pf := daemonCmd.PersistentFlags()
	pf.String("addr", "", "HTTP listen address (default from config, 127.0.0.1:8787)")
	pf.String("interval", "", "Import directory sync interval, e.g. 1m (empty disables)")
	pf.Int("events-buffer", 0, "Max in-memory events retained (default from config)")
	pf.StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	pf.StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	_ = viper.BindPFlag("server.addr", pf.Lookup("addr"))
	_ = viper.BindPFlag("server.sync_interval", pf.Lookup("interval"))
	_ = viper.BindPFlag("server.events_buffer", pf.Lookup("events-buffer"))

	daemonCmd.Flags().Int64Var(&flagDaemonMaxUpload, "max-upload-mb", 32, "Largest accepted upload in MiB")
	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonPushCmd.Flags().BoolVar(&flagPushMonthly, "monthly", false, "Send as a monthly update and print the forecast")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonPushCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("--detach cannot be combined with --child")
	}
	pf := pidFile(flagDaemonPIDFile)
	if err := pf.claim(); err != nil {
		return err
	}
	if flagDaemonDetach {
		return spawnDaemon()
	}
	return serveDaemon(cmd.Context(), pf)
}

// spawnDaemon re-executes the current command line without --detach,
// sending output to the daemon log file.
func spawnDaemon() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec // path comes from local flags
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, append(withoutDetach(os.Args[1:]), "--child")...) //nolint:gosec // re-exec of self
	child.Stdout, child.Stderr = logf, logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	fmt.Printf("  Daemon started (pid %d)\n", child.Process.Pid)
	fmt.Printf("  API:  http://%s/v1/status\n", appCfg.Server.Addr)
	fmt.Printf("  Log:  %s\n", flagDaemonLogFile)
	fmt.Printf("  PID:  %s\n", flagDaemonPIDFile)
	return nil
}

func serveDaemon(ctx context.Context, pf pidFile) error {
	interval, err := appCfg.SyncEvery()
	if err != nil {
		return err
	}
	if interval > 0 {
		if err := os.MkdirAll(appCfg.General.ImportDir, 0o750); err != nil {
			return fmt.Errorf("create import directory: %w", err)
		}
	}

	st, svc, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	addr := appCfg.Server.Addr
	if err := pf.write(daemonState{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		DBPath:    appCfg.General.DBPath,
		ImportDir: appCfg.General.ImportDir,
	}); err != nil {
		return err
	}
	defer pf.remove()

	srv := daemon.New(daemon.Config{
		Addr:           addr,
		EventsBuffer:   appCfg.Server.EventsBuffer,
		ImportDir:      appCfg.General.ImportDir,
		SyncInterval:   interval,
		MaxUploadBytes: flagDaemonMaxUpload << 20,
	}, svc, st, logger)

	fmt.Printf("  fincast daemon listening on http://%s\n", addr)
	if interval > 0 {
		fmt.Printf("  Watching %s every %s\n", appCfg.General.ImportDir, interval)
	}

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon stopped", zap.Error(err))
		return err
	}
	return nil
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.read()
	if err != nil {
		fmt.Println("  Daemon: not running")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("  Daemon: stale pid file, pid %d is gone\n", pid)
		return nil
	}

	addr := pf.addr(appCfg.Server.Addr)
	client, err := apiclient.New(addr)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()

	rows := [][]string{{"PID", strconv.Itoa(pid)}, {"Address", "http://" + addr}}
	st, err := client.Status(ctx)
	if err != nil {
		rows = append(rows, []string{"API", err.Error()})
		fmt.Print(cli.RenderTable(cli.Table{Title: "Daemon", Rows: rows}))
		return nil
	}

	rows = append(rows, []string{"Up since", st.StartedAt.Local().Format(time.RFC3339)})
	if st.SyncIntervalSec > 0 {
		last := "pending"
		if !st.LastSyncAt.IsZero() {
			last = st.LastSyncAt.Local().Format(time.RFC3339)
		}
		rows = append(rows,
			[]string{"Last sync", last},
			[]string{"Syncs", fmt.Sprintf("%d every %ds", st.SyncCount, st.SyncIntervalSec)})
	}
	engine := "untrained"
	if st.Engine.Trained {
		engine = fmt.Sprintf("trained, %d categories", st.Engine.Categories)
	}
	rows = append(rows, []string{"Engine", engine})
	if l := st.Latest; l != nil {
		rows = append(rows,
			[]string{"Forecast base", fmt.Sprintf("%s (%s records)", l.BasePeriod, formatNumber(int64(l.Records)))},
			[]string{"Revenue 30d", cli.FormatMoney(l.Revenue30d)},
			[]string{"Cost 30d", cli.FormatMoney(l.Cost30d)})
	}
	rows = append(rows, []string{"Events", fmt.Sprintf("%d, %d subscribers", st.EventCount, st.SubscriberCount)})
	if st.LastError != "" {
		rows = append(rows, []string{"Last error", cli.Warn(st.LastError)})
	}
	fmt.Print(cli.RenderTable(cli.Table{Title: "Daemon", Rows: rows}))
	return nil
}

func runDaemonPush(cmd *cobra.Command, args []string) error {
	client, err := apiclient.New(pidFile(flagDaemonPIDFile).addr(appCfg.Server.Addr))
	if err != nil {
		return err
	}

	upload := client.UploadHistorical
	if flagPushMonthly {
		upload = client.UploadMonthly
	}
	res, err := upload(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s: %s processed, %s saved\n", res.Message,
		formatNumber(int64(res.Processed)), formatNumber(int64(res.Saved)))
	if len(res.Accuracy) > 0 {
		printAccuracy(res.Accuracy, nil)
	}
	if res.Predictions != nil {
		printForecast(*res.Predictions)
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.read()
	if err != nil {
		return errors.New("daemon is not running")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon: %w", err)
	}
	if !waitExit(pid, 8*time.Second) {
		return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
	}
	pf.remove()
	fmt.Printf("  Daemon stopped (pid %d)\n", pid)
	return nil
}
