// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cor

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// appendCommand appends its suffix to the string flowing through the chain.
type appendCommand struct {
	BaseCommand
	suffix string
	fail   bool
}

func newAppendCommand(name, suffix string, fail bool) *appendCommand {
	return &appendCommand{BaseCommand: *NewBaseCommand(name), suffix: suffix, fail: fail}
}

func (c *appendCommand) Execute(ctx Context) {
	if c.fail {
		ctx.AddError(c.GetName(), errors.New("boom"))
		return
	}
	in := ctx.Get(c.GetInputParam()).(string)
	ctx.Add(c.GetOutputParam(), in+c.suffix)
}

func TestChainPipesOutputToNextInput(t *testing.T) {
	chain := NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("first", "-a", false))
	chain.AddCommand(newAppendCommand("second", "-b", false))

	ctx := NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(CtxIn, "start")

	chain.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	// After the final flip-flop the last output sits in CtxIn.
	assert.Equal(t, "start-a-b", ctx.Get(CtxIn))
}

func TestChainStopsOnFirstError(t *testing.T) {
	chain := NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("first", "-a", true))
	chain.AddCommand(newAppendCommand("second", "-b", false))

	ctx := NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(CtxIn, "start")

	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Contains(t, ctx.GetErrors(), "first")
	// The second command never ran.
	assert.NotContains(t, ctx.GetErrors(), "second")
	assert.Nil(t, ctx.Get(CtxIn))
}

func TestChainContinueOnFailure(t *testing.T) {
	chain := NewBaseChain("test-chain")
	chain.ContinueOnFailure(true)
	chain.AddCommand(newAppendCommand("first", "-a", true))

	// The second command reads a named parameter rather than the piped
	// value, so it can still do its work after the first one failed.
	second := newAppendCommand("second", "-b", false)
	second.InputParamName = "seed"
	second.OutputParamName = "result"
	chain.AddCommand(second)

	ctx := NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(CtxIn, "start")
	ctx.Add("seed", "keep")

	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Equal(t, "keep-b", ctx.Get("result"))
}

func TestCommandNotExecutableWithoutInput(t *testing.T) {
	cmd := newAppendCommand("first", "-a", false)
	ctx := NewBaseContext()
	ctx.SetContext(context.Background())

	assert.False(t, cmd.IsExecutable(ctx))
}

func TestNamedInputOutputParams(t *testing.T) {
	cmd := newAppendCommand("named", "-x", false)
	cmd.InputParamName = "custom.in"
	cmd.OutputParamName = "custom.out"

	ctx := NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add("custom.in", "v")

	assert.True(t, cmd.IsExecutable(ctx))
	cmd.Execute(ctx)
	assert.Equal(t, "v-x", ctx.Get("custom.out"))
}

func TestContextCloseRemovesTempFiles(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "chain-test-")
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	ctx := NewBaseContext()
	ctx.AddTempFile(f.Name())
	ctx.Close()

	_, statErr := os.Stat(f.Name())
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}
