package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"mblookup/internal/config"
)

var (
	errHelp      = errors.New("help requested")
	errNoCommand = errors.New("no command given")
)

// invocation is one parsed command line.
type invocation struct {
	Command string
	Args    []string

	Title   string
	Artist  string
	Album   string
	ISRC    string
	Include string
	Best    bool
}

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > environment > config file > defaults
func parseArgs(args []string) (config.Config, invocation, string, error) {
	var inv invocation

	if len(args) == 0 {
		return config.Config{}, inv, "", errNoCommand
	}

	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return config.Config{}, inv, "", errHelp
		}
	}

	var configPath string
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return config.Config{}, inv, "", fmt.Errorf("--config requires a path argument")
			}
			configPath = args[i+1]
			break
		}
	}

	for _, arg := range args {
		if arg == "--init-config" {
			inv.Command = "init-config"
			return config.DefaultConfig(), inv, configPath, nil
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, inv, "", fmt.Errorf("failed to load config: %w", err)
	}
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	value := func(i *int, flag string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		var err error
		switch arg {
		case "--verbose", "-v":
			cfg.Verbose = true
		case "--config", "-c":
			i++
		case "--redis":
			cfg.RedisAddr, err = value(&i, arg)
		case "--user-agent":
			cfg.UserAgent, err = value(&i, arg)
		case "--title", "-t":
			inv.Title, err = value(&i, arg)
		case "--artist", "-a":
			inv.Artist, err = value(&i, arg)
		case "--album":
			inv.Album, err = value(&i, arg)
		case "--isrc":
			inv.ISRC, err = value(&i, arg)
		case "--inc":
			inv.Include, err = value(&i, arg)
		case "--best":
			inv.Best = true
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return config.Config{}, inv, "", fmt.Errorf("unknown flag: %s", arg)
			}
			if inv.Command == "" {
				inv.Command = arg
			} else {
				inv.Args = append(inv.Args, arg)
			}
		}
		if err != nil {
			return config.Config{}, inv, "", err
		}
	}

	if inv.Include == "" {
		inv.Include = cfg.DefaultInclude
	}

	if err := inv.validate(); err != nil {
		return config.Config{}, inv, "", err
	}
	return cfg, inv, configPath, nil
}

func (inv invocation) validate() error {
	switch inv.Command {
	case "":
		return errNoCommand
	case "recordings":
		if inv.Title == "" {
			return fmt.Errorf("recordings requires --title")
		}
		if len(inv.Args) > 0 {
			return fmt.Errorf("recordings takes no positional arguments")
		}
	case "coverart":
		if len(inv.Args) != 2 {
			return fmt.Errorf("usage: mblookup coverart <release|release-group> <mbid>")
		}
		if t := inv.Args[0]; t != "release" && t != "release-group" {
			return fmt.Errorf("unknown cover art type %q, expected release or release-group", t)
		}
	case "file", "scan":
		if len(inv.Args) != 1 {
			return fmt.Errorf("usage: mblookup %s <path>", inv.Command)
		}
	default:
		return fmt.Errorf("unknown command: %s", inv.Command)
	}
	return nil
}

// initConfigFile writes a config file with default values to path, or to
// the default location when path is empty.
func initConfigFile(path string, w io.Writer) error {
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s, delete it first to recreate it", path)
	}

	if err := config.SaveConfigFile(config.DefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(w, "Created default config file at: %s\n", path)
	fmt.Fprintln(w, "\nYou can now edit this file to customize your settings.")
	fmt.Fprintln(w, "Useful options:")
	fmt.Fprintln(w, "  user_agent: <app>/<version> ( contact ) sent to MusicBrainz")
	fmt.Fprintln(w, "  redis_addr: host:port to share locks and cache between processes")
	fmt.Fprintln(w, "  lock_wait_ms: how long to wait for the API lock before giving up")
	fmt.Fprintln(w, "  confidence_threshold: 0.0-1.0 minimum match confidence for cover art")
	return nil
}

// printUsage displays the help message
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "mblookup - Look up recordings and cover art on MusicBrainz")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: mblookup [options] <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  recordings --title <t> [--artist <a>] [--album <b>] [--isrc <i>] [--best]")
	fmt.Fprintln(w, "                             Search recordings")
	fmt.Fprintln(w, "  coverart <release|release-group> <mbid>")
	fmt.Fprintln(w, "                             Print the front cover URL")
	fmt.Fprintln(w, "  file <path>                Look up an audio file by its tags")
	fmt.Fprintln(w, "  scan <dir>                 Look up every audio file below dir")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -t, --title <title>        Recording title")
	fmt.Fprintln(w, "  -a, --artist <artist>      Artist name")
	fmt.Fprintln(w, "      --album <album>        Album (release) title")
	fmt.Fprintln(w, "      --isrc <isrc>          ISRC code")
	fmt.Fprintln(w, "      --inc <list>           MusicBrainz includes (default: releases)")
	fmt.Fprintln(w, "      --best                 Print only the best match with its confidence")
	fmt.Fprintln(w, "      --redis <addr>         Share locks and cache through Redis")
	fmt.Fprintln(w, "      --user-agent <ua>      User-Agent sent to the APIs")
	fmt.Fprintln(w, "  -v, --verbose              Show detailed output")
	fmt.Fprintln(w, "  -c, --config <path>        Path to config file")
	fmt.Fprintln(w, "  -h, --help                 Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  --init-config              Create a default config file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config file locations (checked in order):")
	fmt.Fprintln(w, "  ./mblookup.yaml, ./mblookup.toml")
	fmt.Fprintln(w, "  ~/.config/mblookup/config.yaml")
	fmt.Fprintln(w, "  ~/.mblookup.yaml")
	fmt.Fprintf(w, "Every option can also be set through %s<OPTION> environment variables.\n", config.EnvPrefix)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  mblookup recordings --title \"Hello\" --artist \"Adele\" --best")
	fmt.Fprintln(w, "  mblookup coverart release 76df3287-6cda-33eb-8e9a-044b5e15ffdd")
	fmt.Fprintln(w, "  mblookup --redis localhost:6379 scan ~/Music")
}
