package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waveform/cmd"
	"waveform/internal/analysis"
	"waveform/internal/audio"
	"waveform/internal/config"
	applog "waveform/internal/log"
	"waveform/internal/transport"
	"waveform/internal/transport/udp"
	"waveform/internal/tui"
	"waveform/pkg/bitint"
	"waveform/pkg/build"
)

// main is the entry point for the analyser.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Execute one-off commands if requested
//   - Open the configured transports
//
// 2. Concurrent Phase (Hot Path):
//   - Start capture from the input device or a file
//   - Start recording if enabled
//   - Run the frame loop, publishing every new frame
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals or the monitor exiting
//   - Stop recording if active
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Development builds run without ldflags; keep the defaults.
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build: %v", err)
	}

	options, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if !options.Run {
		return
	}

	if options.Config != nil {
		level, _ := applog.ParseLevel(options.Config.LogLevel)
		applog.SetLevel(level)
	}
	if options.Verbose {
		applog.SetLevel(applog.LevelDebug)
	}

	switch options.Command {
	case cmd.CommandList:
		err = listDevices()
	case cmd.CommandInfo:
		err = printInfo(options.Config)
	default:
		err = run(options)
	}
	if err != nil {
		applog.Fatalf("%v", err)
	}
}

func listDevices() error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()
	return audio.ListDevices(os.Stdout)
}

func printInfo(cfg *config.Config) error {
	settings, err := cfg.AnalysisSettings()
	if err != nil {
		return err
	}
	backend, err := cfg.Backend()
	if err != nil {
		return err
	}

	fmt.Println(build.GetBuildFlags())
	fmt.Printf("Backend:     %s (%s engine)\n", backend, analysis.NewEngine(backend).Name())
	fmt.Printf("Mode:        %s\n", settings.Mode)
	fmt.Printf("Sample rate: %.0f Hz\n", cfg.Audio.SampleRate)
	fmt.Printf("FFT size:    %d (2^%d, %d bins)\n", settings.FFTSize, bitint.Log2(settings.FFTSize), settings.Bins())
	fmt.Printf("Window:      %s\n", settings.Window)
	fmt.Printf("Smoothing:   %s\n", settings.Smoothing)
	fmt.Printf("Channels:    %d captured, %d analysed\n", settings.CaptureChannels, settings.OutputChannels())
	return nil
}

func run(options *cmd.Options) error {
	cfg := options.Config
	live := cfg.Audio.SourceFile == ""

	// PortAudio is only needed for live capture or the device picker.
	if live || options.PickDevice {
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
	}

	if options.PickDevice {
		devices, err := audio.HostDevices()
		if err != nil {
			return err
		}
		id, err := tui.PickDevice(devices)
		if err != nil {
			return err
		}
		cfg.Audio.InputDevice = id
	}

	transports, closeTransports, err := openTransports(cfg, options.Monitor)
	if err != nil {
		return err
	}
	defer closeTransports()

	engine, err := audio.NewEngine(cfg, transports...)
	if err != nil {
		return err
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// CRITICAL: Start of real-time audio processing
	if err := engine.Start(); err != nil {
		return err
	}

	// File playback may change the rate, so the monitor's bands wait for it.
	var monitor *tui.Monitor
	if options.Monitor {
		title := build.GetBuildFlags().Name
		model := tui.NewMonitorModel(title, float64(engine.SampleRate()), float32(cfg.Analysis.Floor))
		monitor = tui.NewMonitor(model)
		engine.AddTransport(monitor)
		defer monitor.Close()
	}

	var recordingFile string
	if cfg.Recording.Enabled {
		recordingFile = audio.RecordingName(cfg.Recording.OutputDir, time.Now())
		if err := engine.StartRecording(recordingFile); err != nil {
			_ = engine.Close()
			return err
		}
	}

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- engine.Run(ctx)
	}()

	if monitor != nil {
		// The monitor owns the terminal until the user quits.
		applog.SetOutput(io.Discard)
		err := monitor.Run()
		applog.SetOutput(os.Stderr)
		if err != nil {
			applog.Errorf("Monitor: %v", err)
		}
		cancel()
	} else {
		applog.Infof("Engine: Running (%s backend), press Ctrl+C to stop", engine.Analyzer().EngineName())
		<-ctx.Done()
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		applog.Errorf("Engine: Frame loop stopped: %v", err)
	}

	if recordingFile != "" {
		if err := engine.StopRecording(); err != nil {
			applog.Errorf("Engine: Error stopping recording: %v", err)
		} else {
			fmt.Printf("\nRecording saved to: %s\n", recordingFile)
		}
	}

	// Clean up audio engine resources
	if err := engine.Close(); err != nil {
		applog.Errorf("Engine: Error closing audio engine: %v", err)
	}
	return nil
}

// openTransports creates the configured network sinks. A logging transport
// is used when nothing else, the monitor included, is enabled so frames are
// still visible at debug level. The returned function closes everything
// that was opened.
func openTransports(cfg *config.Config, withMonitor bool) ([]transport.Transport, func(), error) {
	var (
		transports []transport.Transport
		closers    []func() error
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				applog.Warnf("Transport: Close failed: %v", err)
			}
		}
	}

	if cfg.Transport.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		if err != nil {
			return nil, nil, err
		}
		applog.Infof("WebSocket: Serving frames on ws://%s/ws", ws.Addr())
		transports = append(transports, ws)
		closers = append(closers, ws.Close)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		publisher, err := udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, sender)
		if err != nil {
			_ = sender.Close()
			closeAll()
			return nil, nil, err
		}
		publisher.Start()
		transports = append(transports, publisher)
		closers = append(closers, sender.Close, publisher.Close)
	}

	if len(transports) == 0 && !withMonitor {
		lt := transport.NewLoggingTransport()
		transports = append(transports, lt)
		closers = append(closers, lt.Close)
	}

	return transports, closeAll, nil
}
