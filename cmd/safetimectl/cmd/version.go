/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"

	version "github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
)

// Version is the build version, overridable at link time with
// -ldflags "-X .../cmd.Version=x.y.z".
var Version = "1.0.0"

var versionMinFlag string

func init() {
	RootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringVar(&versionMinFlag, "min-version", "", "fail unless the build satisfies this version constraint, e.g. \">= 1.2.0\"")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	RunE: func(c *cobra.Command, args []string) error {
		v, err := version.NewVersion(Version)
		if err != nil {
			return fmt.Errorf("parsing build version %q: %w", Version, err)
		}
		fmt.Println(v)

		if versionMinFlag == "" {
			return nil
		}
		constraint, err := version.NewConstraint(versionMinFlag)
		if err != nil {
			return fmt.Errorf("parsing constraint %q: %w", versionMinFlag, err)
		}
		if !constraint.Check(v) {
			return fmt.Errorf("version %s does not satisfy %q", v, versionMinFlag)
		}
		return nil
	},
}
