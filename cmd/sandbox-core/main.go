//
// Copyright 2019-2020 Nestybox, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	systemd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/nestybox/sandbox-core/fsfacts"
	"github.com/nestybox/sandbox-core/hookdispatch"
	"github.com/nestybox/sandbox-core/process"
	"github.com/nestybox/sandbox-core/report"
	"github.com/nestybox/sandbox-core/symlink"
)

const (
	runDir string = "/run/sandbox-core"
	usage  string = `sandbox-core access-mediation daemon

sandbox-core mediates a sandboxed build process's filesystem access
against a build-step manifest: every lookup, read, write, create and
rename is checked against the manifest's policy tree before the
underlying OS call is allowed to proceed.
`
)

// Populated at build time via -ldflags.
var (
	version  string
	commitId string
	builtAt  string
	builtBy  string
)

func exitHandler(signalChan chan os.Signal, prof interface{ Stop() }) {
	var printStack bool

	s := <-signalChan
	logrus.Warnf("sandbox-core caught signal: %s", s)
	logrus.Info("Stopping (gracefully) ...")

	systemd.SdNotify(false, systemd.SdNotifyStopping)

	switch s {
	case syscall.SIGABRT, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGSEGV:
		printStack = true
	}

	if printStack {
		stacktrace := make([]byte, 32768)
		length := runtime.Stack(stacktrace, true)
		logrus.Warnf("\n\n%s\n", string(stacktrace[:length]))
	}

	if prof != nil {
		prof.Stop()
	}

	logrus.Info("Exiting ...")
	os.Exit(0)
}

func runProfiler(ctx *cli.Context) (interface{ Stop() }, error) {
	var prof interface{ Stop() }

	cpuProfOn := ctx.Bool("cpu-profiling")
	memProfOn := ctx.Bool("memory-profiling")

	if cpuProfOn && memProfOn {
		return nil, fmt.Errorf("unsupported parameter combination: cpu and memory profiling")
	}
	if !(cpuProfOn || memProfOn) {
		return nil, nil
	}

	// NoShutdownHook: sandbox-core's own signal handler stops profiling,
	// not the profiler's built-in sigterm reaction.
	if cpuProfOn {
		prof = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	}
	if memProfOn {
		prof = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	}
	return prof, nil
}

func setupRunDir() error {
	if err := os.MkdirAll(runDir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %s", runDir, err)
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "sandbox-core"
	app.Usage = usage
	app.Version = version

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "log file path or empty string for stderr output (default: \"\")",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "log categories to include (debug, info, warning, error, fatal)",
		},
		cli.StringFlag{
			Name:  "log-format",
			Value: "text",
			Usage: "log format; must be json or text",
		},
		cli.BoolFlag{
			Name:   "cpu-profiling",
			Usage:  "enable cpu-profiling data collection",
			Hidden: true,
		},
		cli.BoolFlag{
			Name:   "memory-profiling",
			Usage:  "enable memory-profiling data collection",
			Hidden: true,
		},
	}

	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("sandbox-core\n"+
			"\tversion: \t%s\n"+
			"\tcommit: \t%s\n"+
			"\tbuilt at: \t%s\n"+
			"\tbuilt by: \t%s\n",
			c.App.Version, commitId, builtAt, builtBy)
	}

	app.Before = func(ctx *cli.Context) error {
		if path := ctx.GlobalString("log"); path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_SYNC, 0666)
			if err != nil {
				logrus.Fatalf("Error opening log file %v: %v. Exiting ...", path, err)
				return err
			}
			logrus.SetOutput(f)
		} else {
			logrus.SetOutput(os.Stderr)
		}

		if logFormat := ctx.GlobalString("log-format"); logFormat == "json" {
			logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
		} else {
			logrus.SetFormatter(&logrus.TextFormatter{
				TimestampFormat: "2006-01-02 15:04:05",
				FullTimestamp:   true,
			})
		}

		switch logLevel := ctx.GlobalString("log-level"); logLevel {
		case "debug":
			logrus.SetLevel(logrus.DebugLevel)
		case "info":
			logrus.SetLevel(logrus.InfoLevel)
		case "warning":
			logrus.SetLevel(logrus.WarnLevel)
		case "error":
			logrus.SetLevel(logrus.ErrorLevel)
		case "fatal":
			logrus.SetLevel(logrus.FatalLevel)
		default:
			logrus.Fatalf("log-level option '%v' not recognized. Exiting ...", logLevel)
		}

		return nil
	}

	app.Action = func(ctx *cli.Context) error {
		logrus.Info("Initiating sandbox-core ...")

		if err := setupRunDir(); err != nil {
			return fmt.Errorf("failed to setup the sandbox-core run dir: %v", err)
		}

		// Construct sandbox-core's services. Manifest decoding (the wire
		// format a build step's manifest arrives in) and the IPC transport
		// that receives hook events from the sandboxed process are
		// out-of-scope boundaries this core sits behind; a production
		// build wires a transport-specific listener in here that decodes
		// incoming manifests with policy.BuildManifest and feeds hook
		// events to dispatch below.
		reports := report.New()
		registry := process.New(reports)
		facts := fsfacts.NewOS()
		resolver := symlink.New(facts)
		dispatch := hookdispatch.New(registry, resolver, facts, reports)
		_ = dispatch

		profiler, err := runProfiler(ctx)
		if err != nil {
			logrus.Fatal(err)
		}

		exitChan := make(chan os.Signal, 1)
		signal.Notify(exitChan,
			syscall.SIGHUP,
			syscall.SIGINT,
			syscall.SIGTERM,
			syscall.SIGSEGV,
			syscall.SIGQUIT)
		go exitHandler(exitChan, profiler)

		systemd.SdNotify(false, systemd.SdNotifyReady)
		logrus.Info("Ready ...")

		// Block until a termination signal arrives; the transport listener
		// that would otherwise occupy the main goroutine is out of scope.
		select {}
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
