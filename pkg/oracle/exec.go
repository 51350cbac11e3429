// Copyright 2025 walteh LLC
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

package oracle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🐚 ExecRunner shells out to configurable commands to read shell metadata
// fields. The commands receive the query through environment variables:
// SYNCMV_DIR (containing folder), SYNCMV_NAME (item name, value queries
// only) and SYNCMV_FIELD (candidate field index). The first line of stdout
// is the answer.
type ExecRunner struct {
	nameCommand  string
	valueCommand string
}

// 🏭 NewExecRunner creates a runner around the two query commands
func NewExecRunner(nameCommand, valueCommand string) (*ExecRunner, error) {
	if nameCommand == "" {
		return nil, errors.Errorf("field name command is required")
	}
	if valueCommand == "" {
		return nil, errors.Errorf("status command is required")
	}
	return &ExecRunner{
		nameCommand:  nameCommand,
		valueCommand: valueCommand,
	}, nil
}

// FieldName implements Runner
func (r *ExecRunner) FieldName(ctx context.Context, dir string, field int) (string, error) {
	return r.run(ctx, r.nameCommand, dir, "", field)
}

// FieldValue implements Runner
func (r *ExecRunner) FieldValue(ctx context.Context, dir, name string, field int) (string, error) {
	return r.run(ctx, r.valueCommand, dir, name, field)
}

// 🏃 run executes one query command and returns the first line of output
func (r *ExecRunner) run(ctx context.Context, command, dir, name string, field int) (string, error) {
	if _, err := os.Stat(dir); err != nil {
		return "", errors.Errorf("resolving containing folder %s: %w", dir, err)
	}

	cmd := exec.CommandContext(ctx, shellName(), shellFlag(), command)
	cmd.Env = append(os.Environ(),
		"SYNCMV_DIR="+dir,
		"SYNCMV_NAME="+name,
		fmt.Sprintf("SYNCMV_FIELD=%d", field),
	)

	out, err := cmd.Output()
	if err != nil {
		return "", errors.Errorf("running status query: %w", err)
	}

	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}
