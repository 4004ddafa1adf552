package cmd

import (
	"waveform/internal/config"
	"waveform/pkg/build"

	"github.com/spf13/cobra"
)

// Commands that run instead of the engine.
const (
	CommandRun  = ""
	CommandList = "list"
	CommandInfo = "info"
)

// Options is the result of parsing the command line.
type Options struct {
	Command    string
	ConfigPath string
	Config     *config.Config

	Monitor    bool // Show the live terminal monitor
	PickDevice bool // Choose the input device interactively
	Verbose    bool

	// Run is false when cobra handled the invocation itself (help, version).
	Run bool
}

// flagValues holds flag targets until they are applied over the loaded
// configuration.
type flagValues struct {
	device          int
	channels        int
	sampleRate      float64
	framesPerBuffer int
	lowLatency      bool
	file            string
	loop            bool
	fftSize         int
	window          string
	mode            string
	backend         string
	stereo          bool
	frameRate       int
	record          bool
	outputDir       string
	websocket       bool
	websocketAddr   string
	udp             bool
	udpAddr         string
}

func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{}
	var flags flagValues

	load := func(cmd *cobra.Command, command string) error {
		options.Command = command
		options.Run = true

		cfg, err := config.LoadConfig(options.ConfigPath)
		if err != nil {
			return err
		}
		flags.apply(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		options.Config = cfg
		return nil
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, CommandRun)
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandList
			options.Run = true
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show build information and the resolved analysis settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, CommandInfo)
		},
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&options.ConfigPath, "config", "C", "",
		"Path to a YAML config file (default: ./config.yaml or ./waveform.yaml if present)")
	pf.BoolVarP(&options.Verbose, "verbose", "v", false,
		"Show verbose output")

	// Audio Device Configuration
	pf.IntVarP(&flags.device, "device", "d", config.DefaultInputDevice,
		"Specify input device ID. Use 'list' command to see available devices.")
	pf.IntVarP(&flags.channels, "channels", "c", config.DefaultInputChannels,
		"Number of channels to capture (1=mono, 2=stereo)")
	pf.Float64VarP(&flags.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&flags.framesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	pf.BoolVarP(&flags.lowLatency, "low-latency", "l", false,
		"Use low latency mode for real-time processing")
	pf.StringVarP(&flags.file, "file", "f", "",
		"Analyse a wav, mp3 or ogg file instead of an input device")
	pf.BoolVar(&flags.loop, "loop", false,
		"Restart the file when it ends")

	// Analysis Configuration
	pf.IntVar(&flags.fftSize, "fft-size", config.DefaultFFTSize,
		"Samples per analysis frame (power of two)")
	pf.StringVarP(&flags.window, "window", "w", config.DefaultWindow,
		"Window function (none, hann, hamming, blackman, blackmanharris, ...)")
	pf.StringVarP(&flags.mode, "mode", "m", config.DefaultMode,
		"Display mode: spectrum or meter")
	pf.StringVar(&flags.backend, "backend", config.DefaultBackend,
		"Analysis backend: auto, scalar or vector")
	pf.BoolVar(&flags.stereo, "stereo", true,
		"Analyse channels separately instead of a mono downmix")
	pf.IntVar(&flags.frameRate, "frame-rate", config.DefaultFrameRate,
		"Analysis ticks per second")

	// Recording Configuration
	pf.BoolVarP(&flags.record, "record", "r", false,
		"Record the captured stream to a WAV file")
	pf.StringVarP(&flags.outputDir, "output-dir", "o", config.DefaultRecordingDir,
		"Directory for recordings, named recording-DD-MM-YYYY-HHMMSS.wav")

	// Transport Configuration
	pf.BoolVar(&flags.websocket, "websocket", false,
		"Serve JSON frames on ws://<websocket-addr>/ws")
	pf.StringVar(&flags.websocketAddr, "websocket-addr", config.DefaultWebSocketAddress,
		"Listen address for the websocket server")
	pf.BoolVar(&flags.udp, "udp", false,
		"Publish binary frames over UDP")
	pf.StringVar(&flags.udpAddr, "udp-addr", config.DefaultUDPTargetAddress,
		"Target address for UDP frames")

	// Interface
	rootCmd.Flags().BoolVarP(&options.Monitor, "monitor", "M", false,
		"Show a live meter in the terminal")
	rootCmd.Flags().BoolVarP(&options.PickDevice, "pick", "p", false,
		"Choose the input device interactively")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}

// apply copies every flag the user set over cfg. Unset flags leave the
// file and environment values alone.
func (f *flagValues) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string) bool {
		return cmd.Flags().Changed(name)
	}

	if set("device") {
		cfg.Audio.InputDevice = f.device
	}
	if set("channels") {
		cfg.Audio.InputChannels = f.channels
	}
	if set("sample-rate") {
		cfg.Audio.SampleRate = f.sampleRate
	}
	if set("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = f.framesPerBuffer
	}
	if set("low-latency") {
		cfg.Audio.LowLatency = f.lowLatency
	}
	if set("file") {
		cfg.Audio.SourceFile = f.file
	}
	if set("loop") {
		cfg.Audio.Loop = f.loop
	}
	if set("fft-size") {
		cfg.Analysis.FFTSize = f.fftSize
	}
	if set("window") {
		cfg.Analysis.Window = f.window
	}
	if set("mode") {
		cfg.Analysis.Mode = f.mode
	}
	if set("backend") {
		cfg.Analysis.Backend = f.backend
	}
	if set("stereo") {
		cfg.Analysis.Stereo = f.stereo
	}
	if set("frame-rate") {
		cfg.Analysis.FrameRate = f.frameRate
	}
	if set("record") {
		cfg.Recording.Enabled = f.record
	}
	if set("output-dir") {
		cfg.Recording.OutputDir = f.outputDir
	}
	if set("websocket") {
		cfg.Transport.WebSocketEnabled = f.websocket
	}
	if set("websocket-addr") {
		cfg.Transport.WebSocketAddress = f.websocketAddr
	}
	if set("udp") {
		cfg.Transport.UDPEnabled = f.udp
	}
	if set("udp-addr") {
		cfg.Transport.UDPTargetAddress = f.udpAddr
	}
}
