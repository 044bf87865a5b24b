// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/yosr-maker/swift/cmd/accessstorage/annotate"
	"github.com/yosr-maker/swift/cmd/accessstorage/conflicts"
	"github.com/yosr-maker/swift/cmd/accessstorage/stats"
	"github.com/yosr-maker/swift/cmd/accessstorage/summaries"
	"github.com/yosr-maker/swift/cmd/accessstorage/tools"
)

const usage = `accessstorage: interprocedural analysis of the storages accessed by Go functions
Usage:
  accessstorage [tool] [options] <Go file path(s) or packages>
Tools:
  - summaries: prints the storages accessed by each function
  - conflicts: reports the call sites that may conflict with the accesses of their caller, and redundant loads
  - annotate: writes the summaries as comments above the function declarations
  - stats: prints statistics about the summaries and the recursive functions
Examples:
  Print the summaries: accessstorage summaries -config=config.yaml ./...
  Annotate the sources: accessstorage annotate -write ./...`

// version can be set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "summaries":
		flags, err := tools.NewCommonFlags("summaries", args, summaries.Usage)
		if err != nil {
			errExit(err)
		}
		if err := summaries.Run(flags); err != nil {
			errExit(err)
		}
	case "conflicts":
		flags, err := tools.NewCommonFlags("conflicts", args, conflicts.Usage)
		if err != nil {
			errExit(err)
		}
		if err := conflicts.Run(flags); err != nil {
			errExit(err)
		}
	case "annotate":
		flags, err := annotate.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := annotate.Run(flags); err != nil {
			errExit(err)
		}
	case "stats":
		flags, err := stats.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := stats.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
