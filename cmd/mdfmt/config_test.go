// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/mdfmt/format"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	const content = "max_width: 80\nreflow_text: true\nunordered_list_marker: \"-\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o666))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, &config{MaxWidth: 80, ReflowText: true, UnorderedListMarker: "-"}, cfg)

	opts, err := cfg.options()
	require.NoError(t, err)
	assert.Equal(t, 80, opts.MaxWidth)
	assert.True(t, opts.ReflowText)
	assert.Equal(t, format.ListMarker{Delim: '-'}, opts.UnorderedListMarker)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o666))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, new(config), cfg)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err, "an explicit config path must exist")
}

func TestLoadConfigUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_widht: 80\n"), 0o666))

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestConfigOptionsErrors(t *testing.T) {
	_, err := (&config{UnorderedListMarker: "x"}).options()
	assert.EqualError(t, err, "x is not a valid list marker. select one of *, +, or -")

	_, err = (&config{MaxWidth: -1}).options()
	assert.Error(t, err)
}
