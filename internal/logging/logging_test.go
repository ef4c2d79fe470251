package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestLoggerLevels(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name       string
		logger     Logger
		wantInfo   bool
		wantDebug  bool
		wantWarn   bool
		wantErrorf bool
	}{
		{"quiet", Logger{}, false, false, false, false},
		{"verbose", Logger{Verbose: true}, true, false, true, false},
		{"debug", Logger{Debug: true}, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			l := tt.logger
			l.Out = &out
			l.Err = &errOut

			l.Infof("info %d", 1)
			l.Debugf("debug %d", 2)
			l.Warnf("warn %d", 3)
			l.Errorf("error %d", 4)

			if got := strings.Contains(out.String(), "[info] info 1"); got != tt.wantInfo {
				t.Errorf("info shown = %t, want %t", got, tt.wantInfo)
			}
			if got := strings.Contains(out.String(), "[debug] debug 2"); got != tt.wantDebug {
				t.Errorf("debug shown = %t, want %t", got, tt.wantDebug)
			}
			if got := strings.Contains(errOut.String(), "[warn] warn 3"); got != tt.wantWarn {
				t.Errorf("warn shown = %t, want %t", got, tt.wantWarn)
			}
			if got := strings.Contains(errOut.String(), "[error] error 4"); got != tt.wantErrorf {
				t.Errorf("error shown = %t, want %t", got, tt.wantErrorf)
			}
		})
	}
}

func TestWarnfAlways(t *testing.T) {
	color.NoColor = true
	var errOut bytes.Buffer
	l := Logger{Err: &errOut}

	l.WarnfAlways("vault at %s is world readable", "/tmp/v.db")

	if !strings.Contains(errOut.String(), "[warn] vault at /tmp/v.db is world readable") {
		t.Errorf("expected warning, got %q", errOut.String())
	}
}
