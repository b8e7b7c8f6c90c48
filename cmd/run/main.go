// This file is part of stack-machine - https://github.com/viafanasyev/stack-machine
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command run executes a binary program image against the stack machine
// (§6 "run(inputPath) -> int").
package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/viafanasyev/stack-machine/internal/cliutil"
	"github.com/viafanasyev/stack-machine/internal/diag"
	"github.com/viafanasyev/stack-machine/vm"
)

func main() {
	app := cli.NewApp()
	app.Name = "run"
	app.Usage = "run a stack-machine binary image"
	app.ArgsUsage = "<input.bin>"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "guard", Usage: "use integrity-checked stacks"},
		cli.StringFlag{Name: "log", Usage: "write a fault trace to this file on error"},
	}
	app.Action = run

	os.Exit(cliutil.ExitCode(app.Run(os.Args)))
}

func run(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return errors.New("usage: run <input.bin>")
	}

	img, err := vm.LoadFile(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	defer img.Close()

	opts := []vm.Option{vm.WithInput(os.Stdin), vm.WithOutput(os.Stdout)}
	if ctx.Bool("guard") {
		opts = append(opts, vm.WithGuardedStacks())
	}
	if path := ctx.String("log"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "run")
		}
		defer f.Close()
		opts = append(opts, vm.WithLogger(diag.New(f)))
	}

	m, err := vm.New(img, opts...)
	if err != nil {
		return err
	}
	return m.Run()
}
