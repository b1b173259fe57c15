package main

import (
	"flag"
	"os"

	"portalview/internal/config"
	"portalview/internal/convert"
	"portalview/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	scenePath := flag.String("scene", "", "Scene file (.json, .yaml, .toml) or .pkg archive; empty for the built-in scene")
	configPath := flag.String("config", "portalview.toml", "Settings file")
	writeConfig := flag.String("write-config", "", "Write the effective settings to this file and exit")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging and the overlay")
	watch := flag.Bool("watch", false, "Reload the scene file when it changes")
	width := flag.Int("width", 0, "Window width")
	height := flag.Int("height", 0, "Window height")
	fps := flag.Int("fps", 0, "Target frame rate")
	recursion := flag.Int("recursion", 0, "Portal recursion limit")
	x11Mouse := flag.Bool("x11-mouse", false, "Read the mouse from the X server")
	silent := flag.Bool("silent", false, "Disable audio")
	raylibLog := flag.Bool("raylib-log", false, "Show raylib info messages")
	textureCache := flag.String("texture-cache", "", "Directory for converted textures; next to the source when empty")
	maxTexture := flag.Int("max-texture", 2048, "Scale prop textures down to this size; 0 keeps full size")
	convertDir := flag.String("convert", "", "Convert every .tex under this directory to PNG and exit")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}

	// Flags given on the command line win over the settings file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			settings.Window.Width = *width
		case "height":
			settings.Window.Height = *height
		case "fps":
			settings.Window.FPS = int32(*fps)
		case "recursion":
			settings.Portals.RecursionLimit = *recursion
		case "x11-mouse":
			settings.Camera.X11Mouse = *x11Mouse
		case "silent":
			settings.Audio.Enabled = !*silent
		case "raylib-log":
			settings.Log.RaylibInfo = *raylibLog
		case "debug":
			if *debugFlag {
				settings.Log.Level = "debug"
			}
		}
	})

	if err := settings.Validate(); err != nil {
		utils.Error("Invalid settings: %v", err)
		os.Exit(1)
	}
	level, err := utils.ParseLevel(settings.Log.Level)
	if err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}
	utils.CurrentLevel = level
	utils.ShowDebugUI = *debugFlag
	utils.ShowRaylibInfo = settings.Log.RaylibInfo

	if *writeConfig != "" {
		if err := settings.Save(*writeConfig); err != nil {
			utils.Error("Failed to write settings: %v", err)
			os.Exit(1)
		}
		utils.Info("Settings written to %s", *writeConfig)
		return
	}

	textures := convert.Cache{OutDir: *textureCache, MaxSize: *maxTexture}
	if *convertDir != "" {
		n, err := textures.ConvertAll(*convertDir)
		if err != nil {
			utils.Error("Conversion failed: %v", err)
			os.Exit(1)
		}
		utils.Info("Converted %d textures", n)
		return
	}

	utils.Info("--- portalview start ---")

	s, cleanup, err := openScene(*scenePath)
	if err != nil {
		utils.Error("Failed to load scene: %v", err)
		os.Exit(1)
	}
	defer cleanup()

	rl.SetTraceLogCallback(utils.RaylibLogCallback)
	flags := uint32(rl.FlagWindowResizable)
	if settings.Window.MSAA {
		flags |= rl.FlagMsaa4xHint
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(int32(settings.Window.Width), int32(settings.Window.Height), settings.Window.Title)
	defer rl.CloseWindow()
	if settings.Audio.Enabled {
		rl.InitAudioDevice()
		defer rl.CloseAudioDevice()
	}

	window, err := NewWindow(s, settings, textures)
	if err != nil {
		utils.Error("Failed to build scene: %v", err)
		if rl.IsAudioDeviceReady() {
			rl.CloseAudioDevice()
		}
		rl.CloseWindow()
		cleanup()
		os.Exit(1)
	}
	defer window.Close()

	if *watch {
		switch {
		case *scenePath == "":
			utils.Warn("-watch needs -scene")
		case isPkg(*scenePath):
			utils.Warn("-watch is not supported for .pkg archives")
		default:
			if err := window.Watch(*scenePath); err != nil {
				utils.Error("Failed to watch %s: %v", *scenePath, err)
			}
		}
	}

	utils.Info("Starting render loop...")
	window.Run()
}
