/*
   Copyright 2026 The Flagforge Authors.

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

// Command eventctl runs an eventpipe pipeline from a YAML config file. It is
// a thin demonstration harness: real deployments embed runtime/pipeline
// directly and feed it from their own ingestion surface (HTTP handler, SDK
// call, queue consumer, ...).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()
	if err := Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Execute builds and runs the eventctl root command.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "eventctl",
		Short: "Run and inspect an eventpipe pipeline",
	}
	root.AddCommand(runCmd())
	root.AddCommand(demoCmd())
	return root.ExecuteContext(ctx)
}
