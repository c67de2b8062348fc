// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gamearc.
//
// go-gamearc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gamearc is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gamearc.  If not, see <https://www.gnu.org/licenses/>.

// Command gamearc lists, extracts, edits and converts game data archives.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ZaparooProject/go-gamearc"
	"github.com/ZaparooProject/go-gamearc/archive"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app holds the state shared by every subcommand.
type app struct {
	fs     afero.Fs
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger

	format  string
	verbose bool
	noExt   bool
}

func newRootCmd(fs afero.Fs, out, errOut io.Writer) *cobra.Command {
	a := &app{fs: fs, out: out, errOut: errOut, logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "gamearc",
		Short: "Game data archive utility",
		Long: "gamearc lists, extracts, edits and converts the container files of DOS-era games:\n" +
			"PAK, GRP, WAD, MIX, LFD, GOB, HOG and more.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if a.verbose {
				a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.format, "format", "f", "", "archive format ID (detected when omitted)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log detection and save activity to stderr")
	flags.BoolVar(&a.noExt, "no-ext", false, "ignore file extensions when detecting the format")

	root.AddCommand(
		a.listCmd(),
		a.extractCmd(),
		a.addCmd(),
		a.removeCmd(),
		a.convertCmd(),
		a.formatsCmd(),
		a.detectCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) options() []gamearc.Option {
	opts := []gamearc.Option{gamearc.WithFS(a.fs), gamearc.WithLogger(a.logger)}
	if a.noExt {
		opts = append(opts, gamearc.WithoutExtensionPass())
	}
	return opts
}

// open loads path as --format, or detects its format.
func (a *app) open(path string) (*archive.Archive, error) {
	if a.format != "" {
		f, err := gamearc.FormatByID(a.format)
		if err != nil {
			return nil, err
		}
		return gamearc.Load(f, path, a.options()...)
	}
	ar, _, err := gamearc.Open(path, a.options()...)
	if err != nil {
		return nil, err
	}
	a.logger.Info("opened archive", "path", path, "format", ar.Format().ID, "entries", ar.Len())
	return ar, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gamearc version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("gamearc version %s\n", gamearc.Version)
		},
	}
}

func main() {
	if err := newRootCmd(afero.NewOsFs(), os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
