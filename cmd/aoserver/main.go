/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command aoserver runs the application server from a configuration file,
// reloading it on SIGHUP or on file change, and driving the timed shutdown
// protocol on SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	libdur "github.com/sabouaram/aoserver/duration"
	libhts "github.com/sabouaram/aoserver/httpserver"
	liblog "github.com/sabouaram/aoserver/logger"
	loglvl "github.com/sabouaram/aoserver/logger/level"
	libsiz "github.com/sabouaram/aoserver/size"
)

var (
	flagConfig  string
	flagLevel   string
	flagMetrics string
)

func main() {
	root := &cobra.Command{
		Use:   "aoserver",
		Short: "multi-threaded http application server",
		RunE:  run,
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "aoserver.yaml", "configuration file")
	root.PersistentFlags().StringVarP(&flagLevel, "log-level", "l", "info", "minimal log level")
	root.PersistentFlags().StringVarP(&flagMetrics, "metrics-listen", "m", "", "expose prometheus metrics on this address")

	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(v *viper.Viper) (libhts.Config, error) {
	var cfg libhts.Config

	if err := v.ReadInConfig(); err != nil {
		return cfg, err
	}

	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			libsiz.ViperDecoderHook(),
			libdur.ViperDecoderHook(),
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})

	return cfg, err
}

func run(cmd *cobra.Command, args []string) error {
	log := liblog.New(cmd.Context())
	log.SetLevel(loglvl.Parse(flagLevel))

	fct := func() liblog.Logger {
		return log
	}

	v := viper.New()
	v.SetConfigFile(flagConfig)
	v.SetEnvPrefix("AOSERVER")
	v.AutomaticEnv()

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	if cfg.Disabled {
		log.Warning("server %s is disabled, exiting", nil, cfg.Name)
		return nil
	}

	srv, e := libhts.New(cfg, fct)
	if e != nil {
		return e
	}

	ctx, cnl := context.WithCancel(cmd.Context())
	defer cnl()

	if err = srv.Start(ctx); err != nil {
		return err
	}

	if flagMetrics != "" {
		prometheus.MustRegister(srv.Metrics())

		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())

			if er := http.ListenAndServe(flagMetrics, mux); er != nil {
				log.Error("metrics listener: %v", nil, er)
			}
		}()
	}

	// a changed config file behaves like a reload signal
	v.OnConfigChange(func(_ fsnotify.Event) {
		log.Info("config file changed, reloading", nil)
		reload(srv, v, fct, log)
	})
	v.WatchConfig()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for s := range sig {
		switch s {
		case syscall.SIGHUP:
			srv.Signal()
			reload(srv, v, fct, log)

		default:
			log.Info("signal %s received, shutting down", nil, s)
			return srv.Stop(ctx)
		}
	}

	return nil
}

// reload applies the on-disk configuration to a running server through a
// restart: it stops the server, sets the new configuration and starts it
// again, whether or not the configuration changed.
func reload(srv libhts.Server, v *viper.Viper, fct liblog.FuncLog, log liblog.Logger) {
	cfg, err := loadConfig(v)
	if err != nil {
		log.Error("reload aborted: %v", nil, err)
		return
	}

	ctx := context.Background()

	if err = srv.Stop(ctx); err != nil {
		log.Error("reload stop: %v", nil, err)
		return
	}

	if e := srv.SetConfig(cfg, fct); e != nil {
		log.Error("reload config rejected: %v", nil, e)
	}

	if err = srv.Start(ctx); err != nil {
		log.Error("reload start: %v", nil, err)
	}
}
