// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/realty-tui/internal/config"
)

const configExample = "realty config set ui.theme dark"

// HandleConfig shows or edits the configuration file.
func HandleConfig(args Args) error {
	return runConfig(os.Stdout, args)
}

func runConfig(w io.Writer, args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(w, config.Global(), args)
	case "path":
		return configPath(w, args)
	case "keys":
		return configKeys(w, args)
	case "get":
		return configGet(w, config.Global(), args)
	case "set":
		return configSet(w, args)
	default:
		return NewValidationErrorWithExample("config subcommand", args.Subcommand,
			"expected show, path, keys, get or set", configExample)
	}
}

func configShow(w io.Writer, cfg *config.Config, args Args) error {
	if args.JSON {
		return NewJSONResponse("config", cfg).Write(w)
	}
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return NewCommandError("config", "show", "", err)
	}
	return nil
}

func configPath(w io.Writer, args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return NewCommandError("config", "path", "", err)
	}
	if args.JSON {
		return NewJSONResponse("config", map[string]string{"path": path}).Write(w)
	}
	fmt.Fprintln(w, path)
	return nil
}

func configKeys(w io.Writer, args Args) error {
	keys := config.GetAllKeys()
	if args.JSON {
		return NewJSONResponse("config", keys).Write(w)
	}
	fmt.Fprintln(w, strings.Join(keys, "\n"))
	return nil
}

func configGet(w io.Writer, cfg *config.Config, args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "realty config get backend.url")
	}
	value, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return NewNotFoundError("config key", args.ConfigKey)
	}
	if args.JSON {
		return NewJSONResponse("config", ConfigValueData{Key: args.ConfigKey, Value: value}).Write(w)
	}
	fmt.Fprintln(w, value)
	return nil
}

// configSet edits the file on disk only. Environment and flag overrides in
// effect for this run are not written back.
func configSet(w io.Writer, args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("key and value", configExample)
	}

	path, err := config.ConfigPathTOML()
	if err != nil {
		return NewCommandError("config", "set", "", err)
	}
	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return NewCommandError("config", "set", "", err)
		}
	}

	if _, err := cfg.Get(args.ConfigKey); err != nil {
		return NewNotFoundError("config key", args.ConfigKey)
	}
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return NewValidationErrorWithExample(args.ConfigKey, args.ConfigVal, err.Error(), configExample)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return NewCommandError("config", "set", "", err)
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return NewCommandError("config", "set", "", err)
	}

	value, _ := cfg.Get(args.ConfigKey)
	if args.JSON {
		return NewJSONResponse("config", ConfigValueData{Key: args.ConfigKey, Value: value}).Write(w)
	}
	if !args.Quiet {
		fmt.Fprintf(w, "%s %s = %v\n", SuccessStyle.Render("Set"), args.ConfigKey, value)
	}
	return nil
}
