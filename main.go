package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"murmur/audio"
	"murmur/beep"
	"murmur/hotkey"
	"murmur/indicator"
	"murmur/log"
	"murmur/settings"
	"murmur/state"
	"murmur/transcriber"
	"murmur/tray"
)

var version = "dev"

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

// Tray hooks are indirected so headless runs and tests stay away from
// the systray loop.
var (
	setTrayRecording  = func(bool) {}
	setTrayError      = func(string) {}
	setTrayLastResult = func(time.Duration, time.Duration) {}
)

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

func run() {
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	formatFlag := flag.String("format", "flac", "Audio upload format: flac or wav")
	providerFlag := flag.String("provider", "", "Transcription provider: groq or whisper (default: saved setting)")
	langFlag := flag.String("lang", "", "Language code override (e.g., en, es). Empty = saved setting")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	// Consumed in main() before the control plane starts; declared here
	// so flag.Parse accepts it.
	flag.Bool("gui", false, "Run with the floating indicator window (requires -tags gui build)")
	trayFlag := flag.Bool("tray", true, "Show the system tray icon")
	quietFlag := flag.Bool("quiet", false, "Disable audio cues")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	configFlag := flag.String("config", "", "config file path (default: OS-specific location)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	if *quietFlag {
		beep.Disable()
	}

	switch *formatFlag {
	case "flac", "wav":
	default:
		fmt.Printf("Error: unknown format %q (use flac or wav)\n", *formatFlag)
		os.Exit(1)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath, err = settings.DefaultConfigPath()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	store, err := settings.NewStore(settings.NewFileStorage(configPath), 300*time.Millisecond)
	if err != nil {
		fmt.Printf("Error loading settings: %v\n", err)
		os.Exit(1)
	}
	engine := settings.NewEngine(store)
	engine.Start()

	if *providerFlag != "" {
		if err := store.Set(settings.KeyProvider, settings.Enum(*providerFlag)); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *langFlag != "" {
		if err := store.Set(settings.KeyLanguage, settings.String(*langFlag)); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	provider := store.GetString(settings.KeyProvider)
	activeTranscriber, err := transcriber.New(provider)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	jobs := transcriber.NewCoordinator(activeTranscriber)

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var selectedDevice *audio.DeviceInfo
	wantDevice := *deviceFlag
	if wantDevice == "" {
		wantDevice = store.GetString(settings.KeyDevice)
	}
	if *setupFlag {
		selectedDevice, err = audio.SelectDevice(ctx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			selectedDevice = nil
		}
		name := ""
		if selectedDevice != nil {
			name = selectedDevice.Name
		}
		if err := store.Set(settings.KeyDevice, settings.String(name)); err != nil {
			log.Warnf("save device: %v", err)
		}
	} else if wantDevice != "" {
		selectedDevice = audio.FindDevice(ctx, wantDevice)
		if selectedDevice == nil {
			log.Warnf("device %q not found, using system default", wantDevice)
		}
	}

	captureConfig := audio.CaptureConfig{
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
	}
	captureDevice, err := ctx.NewCapture(selectedDevice, captureConfig)
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Printf("Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer captureDevice.Close()

	st := state.New()
	defer st.Close()

	var app *App
	var vis *indicator.Coordinator
	var sinks []DisplaySink
	if *tuiFlag {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram(func() {
			if app != nil {
				app.Toggle()
			}
		}, func() {
			if vis != nil {
				vis.Dismiss()
			}
		})
		tuiMu.Unlock()
		sinks = append(sinks, &tuiSink{prog: tuiProgram})
	}
	if s := guiSinkIfEnabled(); s != nil {
		sinks = append(sinks, s)
	}

	capture := audio.NewController(captureDevice, audio.SampleRate, func(l float64) {
		for _, s := range sinks {
			s.AudioLevel(l)
		}
	})

	vis = indicator.NewCoordinator(st, store, indicatorSurface(store))
	vis.Start()
	defer vis.Close()

	app = NewApp(store, st, capture, jobs, vis, *formatFlag, sinks)

	go fanOut(st.Subscribe(), sinks)

	var trayQuit <-chan struct{}
	if *trayFlag {
		trayQuit = setupTray(app, store, vis, jobs)
	}

	go watchSettings(app, store)

	if *tuiFlag {
		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			app.Quit()
		}()
	}

	go beep.Init()

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering hotkey: %v\n", err)
		os.Exit(1)
	}
	defer hk.Unregister()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
		case <-trayQuit:
		case <-app.quit:
			return
		}
		app.Quit()
	}()

	log.SessionStart(provider, *formatFlag)
	app.pushStatusLine()

	app.Run(hk.Presses())

	log.SessionEnd(app.SessionCount())
	engine.Stop()
	store.Close()
	if *trayFlag {
		tray.Quit()
	}
	tuiMu.Lock()
	if tuiProgram != nil {
		tuiProgram.Quit()
	}
	tuiMu.Unlock()
	log.Close()
}

// setupTray registers the menu callbacks and starts the tray loop.
func setupTray(app *App, store *settings.Store, vis *indicator.Coordinator, jobs *transcriber.Coordinator) <-chan struct{} {
	tray.OnToggleRecord(app.Toggle)
	tray.OnToggleIndicator(vis.Toggle)
	tray.OnCopyLast(app.CopyLast)
	tray.OnStyle(func(style string) {
		if err := store.Set(settings.KeyIndicatorStyle, settings.Enum(style)); err != nil {
			log.Warnf("set indicator style: %v", err)
		}
	})
	tray.OnAutohide(func(on bool) {
		if err := store.Set(settings.KeyAppletAutohide, settings.Bool(on)); err != nil {
			log.Warnf("set autohide: %v", err)
		}
	})
	tray.OnAutoPaste(func(on bool) {
		if err := store.Set(settings.KeyAutoPaste, settings.Bool(on)); err != nil {
			log.Warnf("set autopaste: %v", err)
		}
	})
	tray.OnLanguage(func(code string) {
		if err := store.Set(settings.KeyLanguage, settings.String(code)); err != nil {
			log.Warnf("set language: %v", err)
		}
	})
	tray.OnProvider(func(name string) {
		t, err := transcriber.New(name)
		if err != nil {
			log.Warnf("switch provider: %v", err)
			setTrayError(err.Error())
			return
		}
		if err := jobs.SetTranscriber(t); err != nil {
			log.Warnf("switch provider: %v", err)
			return
		}
		if err := store.Set(settings.KeyProvider, settings.Enum(name)); err != nil {
			log.Warnf("set provider: %v", err)
		}
	})

	groqKey := os.Getenv("GROQ_API_KEY")
	whisperKey := os.Getenv("WHISPER_API_KEY")
	active := store.GetString(settings.KeyProvider)
	quit := tray.Init(tray.Config{
		Style:     store.GetString(settings.KeyIndicatorStyle),
		Autohide:  store.GetBool(settings.KeyAppletAutohide),
		AutoPaste: store.GetBool(settings.KeyAutoPaste),
		Language:  store.GetString(settings.KeyLanguage),
		Providers: []tray.Provider{
			{Name: "groq", Label: "Groq", HasKey: groqKey != "", Active: active == "groq"},
			{Name: "whisper", Label: "Whisper API", HasKey: whisperKey != "", Active: active == "whisper"},
		},
	})

	setTrayRecording = tray.SetRecording
	setTrayError = tray.SetError
	setTrayLastResult = tray.SetLastResult
	return quit
}

// watchSettings mirrors settings changes into the surfaces: the TUI
// status line and the tray's autohide checkbox, which can flip without
// a menu click when dismissing the applet demotes it.
func watchSettings(app *App, store *settings.Store) {
	for chg := range store.Subscribe() {
		switch chg.Key {
		case settings.KeyAppletAutohide:
			tray.SetAutohideChecked(chg.New.Bool())
		case settings.KeyProvider, settings.KeyLanguage:
			app.pushStatusLine()
		}
	}
}
