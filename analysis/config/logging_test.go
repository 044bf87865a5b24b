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

package config

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogGroupLevels(t *testing.T) {
	c := NewDefault()
	c.LogLevel = int(InfoLevel)
	l := NewLogGroup(c)
	var buf bytes.Buffer
	l.SetAllOutput(&buf)
	l.SetAllFlags(0)

	l.Errorf("e%d\n", 1)
	l.Warnf("w%d\n", 2)
	l.Infof("i%d\n", 3)
	l.Debugf("d%d\n", 4)
	l.Tracef("t%d\n", 5)

	expected := "[ERROR] e1\n[WARN] w2\n[INFO] i3\n"
	if buf.String() != expected {
		t.Errorf("expected log %q, got %q", expected, buf.String())
	}
	if l.LogsTrace() {
		t.Errorf("info level should not log traces")
	}
}

func TestLogGroupSilenceWarn(t *testing.T) {
	c := NewDefault()
	c.LogLevel = int(TraceLevel)
	c.SilenceWarn = true
	l := NewLogGroup(c)
	var buf bytes.Buffer
	l.SetAllOutput(&buf)

	l.Warnf("hidden\n")
	l.Tracef("shown\n")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("warnings should be silenced, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[TRACE]") || !l.LogsTrace() {
		t.Errorf("trace level should log traces, got %q", buf.String())
	}
}
