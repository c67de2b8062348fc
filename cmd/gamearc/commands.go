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

package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ZaparooProject/go-gamearc"
	"github.com/ZaparooProject/go-gamearc/archive"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <archive>",
		Short: "List the entries of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ar, err := a.open(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Format: %s (%s)\n", ar.Format().ID, ar.Format().Description)
			if ar.Info != "" {
				fmt.Fprintf(a.out, "Info: %s\n", ar.Info)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tOFFSET\tINFO")
			for _, e := range ar.Entries() {
				if e.IsFolder {
					fmt.Fprintf(tw, "%s/\t-\t-\t\n", e.Name)
					continue
				}
				info := e.Info
				if e.HashKind != archive.HashNone && e.Info == "" {
					info = e.HashKind.String()
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", e.Name, e.Length, e.Offset, info)
			}
			if err := tw.Flush(); err != nil {
				return fmt.Errorf("write listing: %w", err)
			}
			fmt.Fprintf(a.out, "%d entries\n", ar.Len())
			return nil
		},
	}
}

func (a *app) extractCmd() *cobra.Command {
	var dir string
	var unpack bool

	cmd := &cobra.Command{
		Use:   "extract <archive> [name...]",
		Short: "Extract entries to a directory",
		Long:  "Extract the named entries, or every entry when none are named, below the output directory.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ar, err := a.open(args[0])
			if err != nil {
				return err
			}
			if err := a.fs.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}

			if len(args) == 1 && !unpack {
				n, err := ar.ExtractAll(dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Extracted %d files to %s\n", n, dir)
				return nil
			}

			names := args[1:]
			if len(names) == 0 {
				for _, e := range ar.Entries() {
					if !e.IsFolder {
						names = append(names, e.Name)
					}
				}
			}
			for _, name := range names {
				dest := filepath.Join(dir, filepath.Base(strings.ReplaceAll(name, "\\", "/")))
				if err := a.extractOne(ar, name, dest, unpack); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s -> %s\n", name, dest)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "output directory")
	cmd.Flags().BoolVarP(&unpack, "unpack", "u", false, "decode packed entries while extracting")
	return cmd
}

func (a *app) extractOne(ar *archive.Archive, name, dest string, unpack bool) error {
	if !unpack {
		return ar.ExtractFile(name, dest)
	}
	data, err := ar.Unpack(name)
	if errors.Is(err, archive.ErrNoUnpack) {
		return ar.ExtractFile(name, dest)
	}
	if err != nil {
		return err
	}
	if err := afero.WriteFile(a.fs, dest, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

func (a *app) addCmd() *cobra.Command {
	var name string
	var create bool

	cmd := &cobra.Command{
		Use:   "add <archive> <file...>",
		Short: "Add or replace files in an archive",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if name != "" && len(args) > 2 {
				return errors.New("--as needs exactly one file")
			}

			var ar *archive.Archive
			if create {
				f, err := gamearc.FormatByID(a.format)
				if err != nil {
					return fmt.Errorf("--create needs --format: %w", err)
				}
				ar = archive.New(f, args[0], archive.WithFS(a.fs), archive.WithLogger(a.logger))
			} else {
				var err error
				if ar, err = a.open(args[0]); err != nil {
					return err
				}
			}

			for _, path := range args[1:] {
				e, err := ar.InsertFile(path, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "added %s as %s\n", path, e.Name)
			}
			return a.save(ar, ar.Format(), args[0])
		},
	}
	cmd.Flags().StringVar(&name, "as", "", "name to store the file under")
	cmd.Flags().BoolVar(&create, "create", false, "start a new archive of --format")
	return cmd
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <archive> <name...>",
		Short: "Remove entries from an archive",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ar, err := a.open(args[0])
			if err != nil {
				return err
			}
			if err := ar.Remove(args[1:]...); err != nil {
				return err
			}
			return a.save(ar, ar.Format(), args[0])
		},
	}
}

func (a *app) convertCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert <source> <target>",
		Short: "Write the entries of an archive in another format",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			target, err := gamearc.FormatByID(to)
			if err != nil {
				return err
			}
			ar, err := a.open(args[0])
			if err != nil {
				return err
			}
			return a.save(ar, target, args[1])
		},
	}
	cmd.Flags().StringVarP(&to, "to", "t", "", "target format ID")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) save(ar *archive.Archive, target *archive.Format, path string) error {
	saved, err := ar.SaveAs(target, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s (%s, %d entries)\n", path, target.ID, saved.Len())
	return nil
}

func (a *app) formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported archive formats",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEXTENSIONS\tSAVE\tDESCRIPTION")
			for _, f := range gamearc.Formats() {
				save := "no"
				if f.CanSave {
					save = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, strings.Join(f.Extensions, " "), save, f.Description)
			}
			if err := tw.Flush(); err != nil {
				return fmt.Errorf("write format list: %w", err)
			}
			return nil
		},
	}
}

func (a *app) detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Report which format a file is and why others were rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ar, attempts, err := gamearc.Open(args[0], a.options()...)
			for _, pe := range attempts {
				fmt.Fprintf(a.out, "  %-16s %s\n", pe.Format, pe.Reason)
			}
			var de gamearc.DetectError
			if errors.As(err, &de) {
				fmt.Fprintf(a.out, "%s: unknown format, tried %d formats\n", args[0], len(de.Attempts))
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %s (%s), %d entries\n", args[0], ar.Format().ID, ar.Format().Description, ar.Len())
			return nil
		},
	}
}
