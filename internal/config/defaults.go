// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

package config

// Default returns the configuration used when no file is present, matching
// the data set the stock test archive was exported with.
func Default() *Config {
	return &Config{
		GitLab: GitLab{
			Namespace:  "testing-gitlab-upgrade",
			Name:       "upgrade-test-gitlab",
			ValuesFile: "testdata/gitlab-values.yaml",
		},
		ImportProject: ImportProject{
			FilePath:    "testdata/repo/test-upgrade-repo_export.tar.gz",
			ProjectName: "test-upgrade-repo",
			Description: "Test repository for upgrade validation",
		},
		VersionGroup: VersionGroup{
			Name:        "v17.4.2",
			Path:        "v17.4.2",
			Description: "Test data for GitLab version 17.4.2 upgrade testing",
		},
		GenerationRules: GenerationRules{
			SubGroupsCount:      3,
			ProjectsPerSubGroup: 3,
			SubGroupPrefix:      "group",
			ProjectPrefix:       "project",
		},
	}
}
