// seehuhn.de/go/gifbuilder - assemble animated GIFs from still images
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"seehuhn.de/go/gifbuilder/internal/server"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen on `address`")
	maxMB := fs.Int64("max-mb", server.DefaultMaxBodyBytes>>20, "maximum upload size in MiB")
	attempts := fs.Int("attempts", 3, "maximum number of compression attempts per request")
	verbose := fs.Bool("v", false, "log debug messages")
	fs.Parse(args)

	s := server.New(newLogger(slog.LevelInfo, *verbose))
	s.MaxBodyBytes = *maxMB << 20
	s.MaxAttempts = *attempts

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return s.ListenAndServe(ctx, *addr)
}
