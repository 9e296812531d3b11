// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

// Package config loads the harness test configuration: which GitLab
// instance to drive, what data to generate on it, and which archive to
// import. The loaded Config is immutable from the caller's point of view
// and is passed explicitly into every step.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the configuration file location.
const EnvConfigPath = "UPGRADE_CONFIG"

// EnvUpgradeVersion carries the target version for the upgrade step.
const EnvUpgradeVersion = "UPGRADE_VERSION"

// DefaultPath is used when neither flag nor environment provide one.
const DefaultPath = "./config.yaml"

// Config is the root of the test configuration file.
type Config struct {
	GitLab          GitLab          `yaml:"gitlab" validate:"required"`
	ImportProject   ImportProject   `yaml:"import_project" validate:"required"`
	VersionGroup    VersionGroup    `yaml:"version_group" validate:"required"`
	GenerationRules GenerationRules `yaml:"generation_rules" validate:"required"`
}

// GitLab locates the instance custom resource and how to authenticate
// against the running instance.
type GitLab struct {
	Namespace string `yaml:"namespace" validate:"required"`
	Name      string `yaml:"name" validate:"required"`

	// ValuesFile is the manifest template rendered into the custom
	// resource on creation.
	ValuesFile string `yaml:"values_file"`

	// RootPassword seeds the gitlab-root-password Secret and signs in as
	// root when no Token is supplied.
	RootPassword string `yaml:"gitlab_root_password"`

	// Token is an optional pre-provisioned personal access token. When
	// empty the harness mints one through the web sign-in flow.
	Token string `yaml:"token,omitempty"`
}

// ImportProject describes the archive imported into the version group.
type ImportProject struct {
	FilePath    string `yaml:"file_path" validate:"required"`
	ProjectName string `yaml:"project_name" validate:"required"`
	Description string `yaml:"description,omitempty"`
}

// VersionGroup is the top-level group all generated data lives under.
type VersionGroup struct {
	Name        string `yaml:"name" validate:"required"`
	Path        string `yaml:"path" validate:"required"`
	Description string `yaml:"description,omitempty"`
}

// GenerationRules controls how many sub-groups and projects are generated.
type GenerationRules struct {
	SubGroupsCount      int    `yaml:"sub_groups_count" validate:"gt=0"`
	ProjectsPerSubGroup int    `yaml:"projects_per_sub_group" validate:"gt=0"`
	SubGroupPrefix      string `yaml:"sub_group_prefix" validate:"required"`
	ProjectPrefix       string `yaml:"project_prefix" validate:"required"`
}

// Load reads the configuration from path. When the file does not exist a
// default configuration is synthesized, written to path and returned, so a
// fresh checkout runs without any manual setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "reading configuration file %s", path)
		}

		cfg := Default()
		if err = Write(cfg, path); err != nil {
			return nil, err
		}

		return cfg, nil
	}

	cfg := &Config{}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing configuration file %s", path)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the structural requirements of the configuration.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid test configuration")
	}

	return nil
}

// Write serializes the configuration to path.
func Write(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "serializing configuration")
	}

	if err = os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing configuration file %s", path)
	}

	return nil
}
