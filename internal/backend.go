package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/clusterhack/argononed/internal/api"
	"github.com/clusterhack/argononed/internal/board"
	"github.com/clusterhack/argononed/internal/configuration"
	"github.com/clusterhack/argononed/internal/daemon"
	"github.com/clusterhack/argononed/internal/persistence"
	"github.com/clusterhack/argononed/internal/sensors"
	"github.com/clusterhack/argononed/internal/statistics"
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RunDaemon() {
	if getProcessOwner() != "root" {
		ui.Fatal("Talking to the board MCU requires root permissions, please run argononed as root")
	}

	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence: %v", err)
	}

	b, err := board.Open(configuration.CurrentConfig.Board)
	if err != nil {
		ui.Fatal("Unable to open board: %v", err)
	}

	sensor, err := sensors.NewSensor(configuration.CurrentConfig.Sensor, configuration.CurrentConfig.TempRollingWindowSize)
	if err != nil {
		ui.Fatal("Unable to process sensor configuration: %v", err)
	}

	d, err := daemon.New(configuration.CurrentConfig, b, sensor, pers)
	if err != nil {
		ui.Fatal("Unable to assemble daemon: %v", err)
	}

	if configuration.CurrentConfig.Statistics.Enabled {
		statistics.Register(statistics.NewDaemonCollector(d))
		notificationCollector := statistics.NewNotificationCollector()
		statistics.Register(notificationCollector)
		d.Hub().Attach("statistics", notificationCollector)
	}

	var g run.Group
	{
		// === the daemon workers
		g.Add(func() error {
			d.Start()
			return d.Wait()
		}, func(err error) {
			d.Stop()
		})
	}
	{
		// === REST api
		if configuration.CurrentConfig.Api.Enabled {
			restService := api.CreateRestService(d)
			addr := fmt.Sprintf("%s:%d", configuration.CurrentConfig.Api.Host, configuration.CurrentConfig.Api.Port)
			g.Add(func() error {
				if err := restService.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					ui.Error("Cannot start REST api endpoint (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				ui.Info("Stopping REST api...")
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				if err := restService.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping REST api: " + err.Error())
				}
			})
		}
	}
	{
		// === Prometheus Exporter
		if configuration.CurrentConfig.Statistics.Enabled {
			port := configuration.CurrentConfig.Statistics.Port
			if port <= 0 || port >= 65535 {
				port = 9878
			}
			server := &http.Server{
				Addr:    fmt.Sprintf(":%d", port),
				Handler: promhttp.Handler(),
			}
			g.Add(func() error {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					ui.Error("Cannot start prometheus metrics endpoint (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				ui.Info("Stopping statistics server...")
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				if err := server.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping statistics server: " + err.Error())
				}
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, os.Kill)

		g.Add(func() error {
			<-sig
			ui.Info("Received SIGTERM signal, exiting...")
			return nil
		}, func(err error) {
			defer close(sig)
		})
	}

	err = g.Run()
	d.Close()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ui.Info("Done.")
}

func getProcessOwner() string {
	stdout, err := exec.Command("ps", "-o", "user=", "-p", strconv.Itoa(os.Getpid())).Output()
	if err != nil {
		ui.Fatal("Error checking process owner: %v", err)
		os.Exit(1)
	}
	return strings.TrimSpace(string(stdout))
}
