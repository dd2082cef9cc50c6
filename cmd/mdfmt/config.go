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
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
	"zombiezen.com/go/mdfmt/format"
)

const defaultConfigPath = "mdfmt.yaml"

// config is the content of a configuration file.
type config struct {
	MaxWidth            int    `yaml:"max_width"`
	ReflowText          bool   `yaml:"reflow_text"`
	UnorderedListMarker string `yaml:"unordered_list_marker"`
}

// loadConfig reads the configuration file at path.
// If path is empty, mdfmt.yaml is read if it exists.
func loadConfig(path string) (*config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return new(config), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := new(config)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *config) options() (*format.Options, error) {
	if cfg.MaxWidth < 0 {
		return nil, fmt.Errorf("max width %d is negative", cfg.MaxWidth)
	}
	opts := &format.Options{
		MaxWidth:   cfg.MaxWidth,
		ReflowText: cfg.ReflowText,
	}
	if cfg.UnorderedListMarker != "" {
		var err error
		opts.UnorderedListMarker, err = format.ParseUnorderedListMarker(cfg.UnorderedListMarker)
		if err != nil {
			return nil, err
		}
	}
	return opts, nil
}
