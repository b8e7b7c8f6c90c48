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

// Command disasm reconstructs assembly source from a binary program
// image (§6 "disassemble(inputPath, outputPath) -> int").
package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/viafanasyev/stack-machine/asm"
	"github.com/viafanasyev/stack-machine/internal/cliutil"
)

func main() {
	app := cli.NewApp()
	app.Name = "disasm"
	app.Usage = "disassemble a stack-machine binary image into source text"
	app.ArgsUsage = "<input.bin> [output.asm]"
	app.Action = run

	os.Exit(cliutil.ExitCode(app.Run(os.Args)))
}

func run(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return errors.New("usage: disasm <input.bin> [output.asm]")
	}
	input := ctx.Args().Get(0)
	output := ctx.Args().Get(1)
	if output == "" {
		output = cliutil.DefaultOutputPath(input, ".disasm")
	}

	in, err := os.Open(input)
	if err != nil {
		return errors.Wrap(err, "disasm")
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return errors.Wrap(err, "disasm")
	}
	defer out.Close()

	if err := asm.Disassemble(in, out); err != nil {
		os.Remove(output)
		return err
	}
	return nil
}
